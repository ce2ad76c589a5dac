// Package access derives the data-visibility scope every list and aggregate
// query must apply before touching the database. Omitting the scope on a
// list endpoint is a data leak, not a design choice.
package access

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of user roles. Route handlers and the approval
// engine dispatch on this type, never on raw strings.
type Role int

const (
	RoleEmployee Role = iota
	RoleManager
	RoleGeneralManager
	RoleAdmin
)

const (
	roleEmployeeName       = "EMPLOYEE"
	roleManagerName        = "MANAGER"
	roleGeneralManagerName = "GENERAL_MANAGER"
	roleAdminName          = "ADMIN"
)

// ParseRole converts the persisted role string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleEmployeeName:
		return RoleEmployee, nil
	case roleManagerName:
		return RoleManager, nil
	case roleGeneralManagerName:
		return RoleGeneralManager, nil
	case roleAdminName:
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return roleEmployeeName
	case RoleManager:
		return roleManagerName
	case RoleGeneralManager:
		return roleGeneralManagerName
	case RoleAdmin:
		return roleAdminName
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// CanDecide reports whether the role may record approval decisions,
// including claiming an unassigned pending slot.
func (r Role) CanDecide() bool {
	switch r {
	case RoleManager, RoleGeneralManager, RoleAdmin:
		return true
	case RoleEmployee:
		return false
	default:
		return false
	}
}

// Kind classifies how far a scope reaches.
type Kind int

const (
	// KindAll grants global visibility.
	KindAll Kind = iota
	// KindDepartment narrows rows to the caller's department.
	KindDepartment
	// KindPersonal narrows rows to those the caller created.
	KindPersonal
)

// Scope is the resolved filter for one caller. Exactly one scope applies
// to every list or aggregate query.
type Scope struct {
	Kind       Kind
	Department string
	UserID     uuid.UUID
}

// ScopeFor resolves the visibility scope for a caller. The switch is
// exhaustive over the closed Role set: admins and general managers see
// everything (the general manager approves and reports across departments),
// managers see their department, employees only their own rows.
func ScopeFor(role Role, department string, userID uuid.UUID) Scope {
	switch role {
	case RoleAdmin, RoleGeneralManager:
		return Scope{Kind: KindAll}
	case RoleManager:
		return Scope{Kind: KindDepartment, Department: department, UserID: userID}
	case RoleEmployee:
		return Scope{Kind: KindPersonal, UserID: userID}
	default:
		// Unknown roles get the narrowest scope.
		return Scope{Kind: KindPersonal, UserID: userID}
	}
}

// ApplyRequests narrows a requests query to the scope.
func (s Scope) ApplyRequests(q *gorm.DB) *gorm.DB {
	switch s.Kind {
	case KindDepartment:
		return q.Where("requests.department = ?", s.Department)
	case KindPersonal:
		return q.Where("requests.requester_id = ?", s.UserID)
	default:
		return q
	}
}

// ApplyPurchaseOrders narrows a purchase-orders query to the scope. Orders
// carry no department column, so department scoping goes through the
// creating user.
func (s Scope) ApplyPurchaseOrders(q *gorm.DB) *gorm.DB {
	switch s.Kind {
	case KindDepartment:
		return q.Where("purchase_orders.created_by_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).Table("users").Select("id").Where("department = ?", s.Department))
	case KindPersonal:
		return q.Where("purchase_orders.created_by_id = ?", s.UserID)
	default:
		return q
	}
}

// Allows reports whether a single request row owned by (requesterID,
// department) is visible under the scope. Used for get/update/delete on a
// row already fetched.
func (s Scope) Allows(requesterID uuid.UUID, department string) bool {
	switch s.Kind {
	case KindAll:
		return true
	case KindDepartment:
		return department == s.Department
	case KindPersonal:
		return requesterID == s.UserID
	default:
		return false
	}
}
