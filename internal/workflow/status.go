// Package workflow derives a request's status from its approval rows.
// The request status must never be written on a decision except through
// ComputeStatus, so every transition stays a pure function of the rows.
package workflow

import (
	"sort"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

// Decision is an approver's verdict on a pending approval slot.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// Valid reports whether the decision is one of the two accepted verdicts.
func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// IsTerminal reports whether a request status permits no further transitions.
func IsTerminal(status string) bool {
	return status == model.RequestStatusApproved || status == model.RequestStatusRejected
}

// ComputeStatus folds the full set of approval rows into a request status.
//
// A rejected row anywhere forces REJECTED regardless of other levels. A level
// is satisfied once at least one of its rows is APPROVED. All levels
// satisfied means APPROVED, at least one means IN_PROGRESS, none means
// PENDING. Levels are independently satisfiable: approving level 2 counts
// even while level 1 is still pending. This matches the shipped behavior of
// the approval chain and is deliberately not a sequential gate.
func ComputeStatus(approvals []model.Approval) string {
	if len(approvals) == 0 {
		return model.RequestStatusPending
	}

	satisfied := make(map[int]bool)
	for _, a := range approvals {
		if a.Status == model.ApprovalRejected {
			return model.RequestStatusRejected
		}
		if _, ok := satisfied[a.Level]; !ok {
			satisfied[a.Level] = false
		}
		if a.Status == model.ApprovalApproved {
			satisfied[a.Level] = true
		}
	}

	satisfiedCount := 0
	for _, ok := range satisfied {
		if ok {
			satisfiedCount++
		}
	}

	switch {
	case satisfiedCount == len(satisfied):
		return model.RequestStatusApproved
	case satisfiedCount > 0:
		return model.RequestStatusInProgress
	default:
		return model.RequestStatusPending
	}
}

// Levels returns the distinct approval levels present, ascending.
func Levels(approvals []model.Approval) []int {
	seen := make(map[int]bool)
	var levels []int
	for _, a := range approvals {
		if !seen[a.Level] {
			seen[a.Level] = true
			levels = append(levels, a.Level)
		}
	}
	sort.Ints(levels)
	return levels
}
