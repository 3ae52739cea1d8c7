package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		action  domain.WorkflowAction
		role    domain.Role
		wantErr bool
	}{
		{name: "admin may edit", action: domain.ActionEdit, role: domain.RoleAdmin, wantErr: false},
		{name: "gestor may not edit", action: domain.ActionEdit, role: domain.RoleGestor, wantErr: true},
		{name: "viewer may not edit", action: domain.ActionEdit, role: domain.RoleViewer, wantErr: true},
		{name: "admin may submit", action: domain.ActionSubmit, role: domain.RoleAdmin, wantErr: false},
		{name: "gestor may not submit", action: domain.ActionSubmit, role: domain.RoleGestor, wantErr: true},
		{name: "gestor may approve", action: domain.ActionApprove, role: domain.RoleGestor, wantErr: false},
		{name: "admin may not approve", action: domain.ActionApprove, role: domain.RoleAdmin, wantErr: true},
		{name: "gestor may reject", action: domain.ActionReject, role: domain.RoleGestor, wantErr: false},
		{name: "admin may reject", action: domain.ActionReject, role: domain.RoleAdmin, wantErr: false},
		{name: "viewer may not reject", action: domain.ActionReject, role: domain.RoleViewer, wantErr: true},
		{name: "admin may delete", action: domain.ActionDelete, role: domain.RoleAdmin, wantErr: false},
		{name: "gestor may not delete", action: domain.ActionDelete, role: domain.RoleGestor, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.Authorize(tt.action, tt.role)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrForbidden)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		action  domain.WorkflowAction
		current domain.BudgetStatus
		want    domain.BudgetStatus
		wantErr bool
	}{
		{name: "submit from draft", action: domain.ActionSubmit, current: domain.StatusDraft, want: domain.StatusPendingApproval},
		{name: "submit from rejected", action: domain.ActionSubmit, current: domain.StatusRejected, want: domain.StatusPendingApproval},
		{name: "submit from pending is illegal", action: domain.ActionSubmit, current: domain.StatusPendingApproval, wantErr: true},
		{name: "submit from approved is illegal", action: domain.ActionSubmit, current: domain.StatusApproved, wantErr: true},
		{name: "approve from pending", action: domain.ActionApprove, current: domain.StatusPendingApproval, want: domain.StatusApproved},
		{name: "approve from draft is illegal", action: domain.ActionApprove, current: domain.StatusDraft, wantErr: true},
		{name: "reject from pending", action: domain.ActionReject, current: domain.StatusPendingApproval, want: domain.StatusRejected},
		{name: "reject from draft is lenient", action: domain.ActionReject, current: domain.StatusDraft, want: domain.StatusRejected},
		{name: "reject from approved is illegal", action: domain.ActionReject, current: domain.StatusApproved, wantErr: true},
		{name: "edit keeps current status", action: domain.ActionEdit, current: domain.StatusRejected, want: domain.StatusRejected},
		{name: "edit of approved is illegal", action: domain.ActionEdit, current: domain.StatusApproved, wantErr: true},
		{name: "delete of approved is illegal", action: domain.ActionDelete, current: domain.StatusApproved, wantErr: true},
		{name: "delete of draft", action: domain.ActionDelete, current: domain.StatusDraft, want: domain.StatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ValidateTransition(tt.action, tt.current)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateTransition_AlreadyApproved(t *testing.T) {
	_, err := domain.ValidateTransition(domain.ActionApprove, domain.StatusApproved)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApproved)
}

func TestValidateTransition_InvalidTransitionTyped(t *testing.T) {
	_, err := domain.ValidateTransition(domain.ActionApprove, domain.StatusDraft)
	require.Error(t, err)

	var invalidErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, string(domain.StatusDraft), invalidErr.Current)
	assert.Equal(t, string(domain.StatusApproved), invalidErr.Requested)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, domain.CanTransition(domain.ActionSubmit, domain.StatusDraft))
	assert.True(t, domain.CanTransition(domain.ActionApprove, domain.StatusPendingApproval))
	assert.False(t, domain.CanTransition(domain.ActionSubmit, domain.StatusPendingApproval))
	assert.False(t, domain.CanTransition(domain.ActionApprove, domain.StatusApproved))
	assert.False(t, domain.CanTransition(domain.WorkflowAction("unknown"), domain.StatusDraft))
}

func TestApprovedEditPolicy(t *testing.T) {
	strict := domain.ApprovedEditPolicy{}
	override := domain.ApprovedEditPolicy{AdminOverride: true}

	// Actualization stays open regardless of the override flag.
	assert.True(t, strict.MayEditApproved(domain.RoleAdmin, true))
	assert.True(t, strict.MayEditApproved(domain.RoleGestor, true))
	assert.False(t, strict.MayEditApproved(domain.RoleViewer, true))

	// Full edits of approved entries require the override, admin only.
	assert.False(t, strict.MayEditApproved(domain.RoleAdmin, false))
	assert.True(t, override.MayEditApproved(domain.RoleAdmin, false))
	assert.False(t, override.MayEditApproved(domain.RoleGestor, false))
}
