package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type requestTestEnv struct {
	store   *fakeStore
	service RequestService
}

func newRequestTestEnv() *requestTestEnv {
	store := newFakeStore()
	return &requestTestEnv{
		store: store,
		service: NewRequestService(
			&fakeRequestRepo{store: store},
			&fakeApprovalRepo{store: store},
			&fakeUserRepo{store: store},
			fakeTxManager{},
			newTestEmitter(store),
		),
	}
}

func actorFor(user *model.User, role access.Role) Actor {
	return Actor{ID: user.ID, Role: role, Department: user.Department}
}

func twoItemRequest() CreateRequestDTO {
	return CreateRequestDTO{
		Title:    "Quarterly restock",
		Priority: model.PriorityHigh,
		Items: []RequestItemPayload{
			{ItemID: newItemID(), Quantity: 3, UnitPrice: 10},
			{ItemID: newItemID(), Quantity: 1, UnitPrice: 25},
		},
	}
}

func TestSubmitComputesTotalAndAssignsApprover(t *testing.T) {
	env := newRequestTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	resp, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusPending, resp.Status)
	assert.Equal(t, 55.0, resp.TotalAmount)
	assert.Equal(t, "IT", resp.Department)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 30.0, resp.Items[0].TotalPrice)
	assert.Equal(t, 25.0, resp.Items[1].TotalPrice)

	require.Len(t, resp.Approvals, 1)
	assert.Equal(t, manager.ID.String(), resp.Approvals[0].ApproverID)
	assert.Equal(t, 1, resp.Approvals[0].Level)
	assert.Equal(t, model.ApprovalPending, resp.Approvals[0].Status)

	// The assigned approver is notified and the creation is audited.
	require.Len(t, env.store.notifications, 1)
	assert.Equal(t, manager.ID, env.store.notifications[0].UserID)
	require.Len(t, env.store.audits, 1)
	assert.Equal(t, model.ActionCreateRequest, env.store.audits[0].Action)
}

func TestSubmitFallsBackToAdminApprover(t *testing.T) {
	env := newRequestTestEnv()
	admin := env.store.addUser("ada", access.RoleAdmin.String(), "HQ")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	resp, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)
	require.Len(t, resp.Approvals, 1)
	assert.Equal(t, admin.ID.String(), resp.Approvals[0].ApproverID)
}

func TestSubmitValidation(t *testing.T) {
	env := newRequestTestEnv()
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")
	actor := actorFor(employee, access.RoleEmployee)

	tests := []struct {
		name string
		req  CreateRequestDTO
	}{
		{
			name: "missing title",
			req:  CreateRequestDTO{Items: []RequestItemPayload{{ItemID: newItemID(), Quantity: 1, UnitPrice: 5}}},
		},
		{
			name: "no items",
			req:  CreateRequestDTO{Title: "Pens"},
		},
		{
			name: "unknown priority",
			req: CreateRequestDTO{
				Title:    "Pens",
				Priority: "EXTREME",
				Items:    []RequestItemPayload{{ItemID: newItemID(), Quantity: 1, UnitPrice: 5}},
			},
		},
		{
			name: "zero quantity line",
			req: CreateRequestDTO{
				Title: "Pens",
				Items: []RequestItemPayload{{ItemID: newItemID(), Quantity: 0, UnitPrice: 5}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.service.Submit(context.Background(), actor, tc.req)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestDecideApproveFinalizesSingleLevel(t *testing.T) {
	env := newRequestTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	resp, err := env.service.Decide(context.Background(), actorFor(manager, access.RoleManager), created.ID,
		DecisionDTO{Status: model.ApprovalApproved, Comments: "looks fine"})
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusApproved, resp.Status)
	require.Len(t, resp.Approvals, 1)
	assert.Equal(t, model.ApprovalApproved, resp.Approvals[0].Status)
	assert.Equal(t, "looks fine", resp.Approvals[0].Comments)

	// The requester hears about the outcome.
	var requesterNotified bool
	for _, n := range env.store.notifications {
		if n.UserID == employee.ID && n.Type == model.NotifyRequestApproved {
			requesterNotified = true
		}
	}
	assert.True(t, requesterNotified)
}

func TestDecideRejectRequiresComments(t *testing.T) {
	env := newRequestTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	_, err = env.service.Decide(context.Background(), actorFor(manager, access.RoleManager), created.ID,
		DecisionDTO{Status: model.ApprovalRejected})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	// With comments the rejection lands and is terminal.
	resp, err := env.service.Decide(context.Background(), actorFor(manager, access.RoleManager), created.ID,
		DecisionDTO{Status: model.ApprovalRejected, Comments: "over budget"})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, resp.Status)
	require.Len(t, resp.Approvals, 1)
	assert.Equal(t, "over budget", resp.Approvals[0].Comments)
}

func TestDecideOnFinalizedRequestFails(t *testing.T) {
	env := newRequestTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	_, err = env.service.Decide(context.Background(), actorFor(manager, access.RoleManager), created.ID,
		DecisionDTO{Status: model.ApprovalApproved})
	require.NoError(t, err)

	_, err = env.service.Decide(context.Background(), actorFor(manager, access.RoleManager), created.ID,
		DecisionDTO{Status: model.ApprovalRejected, Comments: "changed my mind"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindAlreadyFinalized, apperror.KindOf(err))
}

func TestDecideEmployeeWithoutSlotIsForbidden(t *testing.T) {
	env := newRequestTestEnv()
	env.store.addUser("maria", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")
	other := env.store.addUser("olive", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	_, err = env.service.Decide(context.Background(), actorFor(other, access.RoleEmployee), created.ID,
		DecisionDTO{Status: model.ApprovalApproved})
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestDecideManagerClaimsUnassignedSlot(t *testing.T) {
	env := newRequestTestEnv()
	env.store.addUser("maria", access.RoleManager.String(), "IT")
	second := env.store.addUser("marco", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	// The slot was seeded to maria, but any manager may take the decision.
	resp, err := env.service.Decide(context.Background(), actorFor(second, access.RoleManager), created.ID,
		DecisionDTO{Status: model.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, resp.Status)

	var decidedBySecond bool
	for _, a := range resp.Approvals {
		if a.ApproverID == second.ID.String() && a.Status == model.ApprovalApproved {
			decidedBySecond = true
		}
	}
	assert.True(t, decidedBySecond)
}

func TestDecideClaimsLowestPendingLevel(t *testing.T) {
	env := newRequestTestEnv()
	env.store.addUser("maria", access.RoleManager.String(), "IT")
	gm := env.store.addUser("grace", access.RoleGeneralManager.String(), "HQ")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	ctx := context.Background()
	created, err := env.service.Submit(ctx, actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	// Second sign-off level, assigned to the general manager.
	approvals := &fakeApprovalRepo{store: env.store}
	require.NoError(t, approvals.Create(ctx, &model.Approval{
		RequestID:  uuid.MustParse(created.ID),
		ApproverID: gm.ID,
		Level:      2,
		Status:     model.ApprovalPending,
	}))

	// An admin with no slot of their own must claim level 1, not level 2.
	admin := env.store.addUser("ada", access.RoleAdmin.String(), "HQ")
	resp, err := env.service.Decide(ctx, actorFor(admin, access.RoleAdmin), created.ID,
		DecisionDTO{Status: model.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusInProgress, resp.Status)

	adminLevel := 0
	for _, a := range resp.Approvals {
		if a.ApproverID == admin.ID.String() {
			adminLevel = a.Level
		}
	}
	assert.Equal(t, 1, adminLevel)
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	env := newRequestTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	title := "Quarterly restock (revised)"
	updated, err := env.service.Update(context.Background(), actorFor(employee, access.RoleEmployee), created.ID,
		UpdateRequestDTO{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	_, err = env.service.Decide(context.Background(), actorFor(manager, access.RoleManager), created.ID,
		DecisionDTO{Status: model.ApprovalApproved})
	require.NoError(t, err)

	_, err = env.service.Update(context.Background(), actorFor(employee, access.RoleEmployee), created.ID,
		UpdateRequestDTO{Title: &title})
	require.Error(t, err)
	assert.Equal(t, apperror.KindAlreadyFinalized, apperror.KindOf(err))
}

func TestUpdateReplacingItemsRecomputesTotal(t *testing.T) {
	env := newRequestTestEnv()
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)
	require.Equal(t, 55.0, created.TotalAmount)

	items := []RequestItemPayload{{ItemID: newItemID(), Quantity: 2, UnitPrice: 7.5}}
	updated, err := env.service.Update(context.Background(), actorFor(employee, access.RoleEmployee), created.ID,
		UpdateRequestDTO{Items: &items})
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.TotalAmount)
	require.Len(t, updated.Items, 1)
}

func TestUpdateByUnrelatedEmployeeIsForbidden(t *testing.T) {
	env := newRequestTestEnv()
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")
	other := env.store.addUser("olive", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	title := "hijacked"
	_, err = env.service.Update(context.Background(), actorFor(other, access.RoleEmployee), created.ID,
		UpdateRequestDTO{Title: &title})
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestDeleteScopedToRole(t *testing.T) {
	env := newRequestTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	err = env.service.Delete(context.Background(), actorFor(employee, access.RoleEmployee), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	require.NoError(t, env.service.Delete(context.Background(), actorFor(manager, access.RoleManager), created.ID))

	_, err = env.service.Get(context.Background(), actorFor(manager, access.RoleManager), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetEnforcesScope(t *testing.T) {
	env := newRequestTestEnv()
	employee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")
	outsider := env.store.addUser("olive", access.RoleEmployee.String(), "SALES")
	deptManager := env.store.addUser("maria", access.RoleManager.String(), "SALES")

	created, err := env.service.Submit(context.Background(), actorFor(employee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	_, err = env.service.Get(context.Background(), actorFor(outsider, access.RoleEmployee), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	// A manager only sees their own department.
	_, err = env.service.Get(context.Background(), actorFor(deptManager, access.RoleManager), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = env.service.Get(context.Background(), actorFor(employee, access.RoleEmployee), created.ID)
	assert.NoError(t, err)
}

func TestListScopedByRole(t *testing.T) {
	env := newRequestTestEnv()
	itManager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	itEmployee := env.store.addUser("edgar", access.RoleEmployee.String(), "IT")
	salesEmployee := env.store.addUser("olive", access.RoleEmployee.String(), "SALES")
	admin := env.store.addUser("ada", access.RoleAdmin.String(), "HQ")

	ctx := context.Background()
	_, err := env.service.Submit(ctx, actorFor(itEmployee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)
	_, err = env.service.Submit(ctx, actorFor(salesEmployee, access.RoleEmployee), twoItemRequest())
	require.NoError(t, err)

	own, total, err := env.service.List(ctx, actorFor(itEmployee, access.RoleEmployee), ListRequestsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, itEmployee.ID.String(), own[0].RequesterID)

	_, total, err = env.service.List(ctx, actorFor(itManager, access.RoleManager), ListRequestsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = env.service.List(ctx, actorFor(admin, access.RoleAdmin), ListRequestsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
