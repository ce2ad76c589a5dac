package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

func approval(level int, status string) model.Approval {
	return model.Approval{Level: level, Status: status}
}

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name      string
		approvals []model.Approval
		expected  string
	}{
		{
			name:      "no approvals stays pending",
			approvals: nil,
			expected:  model.RequestStatusPending,
		},
		{
			name:      "single pending level stays pending",
			approvals: []model.Approval{approval(1, model.ApprovalPending)},
			expected:  model.RequestStatusPending,
		},
		{
			name:      "single level approved",
			approvals: []model.Approval{approval(1, model.ApprovalApproved)},
			expected:  model.RequestStatusApproved,
		},
		{
			name: "level 1 approved with level 2 pending is in progress",
			approvals: []model.Approval{
				approval(1, model.ApprovalApproved),
				approval(2, model.ApprovalPending),
			},
			expected: model.RequestStatusInProgress,
		},
		{
			name: "both levels approved",
			approvals: []model.Approval{
				approval(1, model.ApprovalApproved),
				approval(2, model.ApprovalApproved),
			},
			expected: model.RequestStatusApproved,
		},
		{
			name: "levels are independently satisfiable, not sequential",
			approvals: []model.Approval{
				approval(1, model.ApprovalPending),
				approval(2, model.ApprovalApproved),
			},
			expected: model.RequestStatusInProgress,
		},
		{
			name: "any rejection wins over approvals at other levels",
			approvals: []model.Approval{
				approval(1, model.ApprovalApproved),
				approval(2, model.ApprovalRejected),
			},
			expected: model.RequestStatusRejected,
		},
		{
			name: "a level is satisfied by any one of its rows",
			approvals: []model.Approval{
				approval(1, model.ApprovalPending),
				approval(1, model.ApprovalApproved),
			},
			expected: model.RequestStatusApproved,
		},
		{
			name: "parallel rows on one level plus an unsatisfied level",
			approvals: []model.Approval{
				approval(1, model.ApprovalApproved),
				approval(1, model.ApprovalPending),
				approval(2, model.ApprovalPending),
			},
			expected: model.RequestStatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeStatus(tt.approvals))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(model.RequestStatusApproved))
	assert.True(t, IsTerminal(model.RequestStatusRejected))
	assert.False(t, IsTerminal(model.RequestStatusPending))
	assert.False(t, IsTerminal(model.RequestStatusInProgress))
	assert.False(t, IsTerminal(model.RequestStatusCompleted))
}

func TestDecisionValid(t *testing.T) {
	assert.True(t, DecisionApproved.Valid())
	assert.True(t, DecisionRejected.Valid())
	assert.False(t, Decision("PENDING").Valid())
	assert.False(t, Decision("").Valid())
}

func TestLevels(t *testing.T) {
	levels := Levels([]model.Approval{
		approval(2, model.ApprovalPending),
		approval(1, model.ApprovalApproved),
		approval(2, model.ApprovalApproved),
	})
	assert.Equal(t, []int{1, 2}, levels)
}
