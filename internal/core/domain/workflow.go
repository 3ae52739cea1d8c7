package domain

import (
	"fmt"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
)

// WorkflowAction is a mutation of a budget entry governed by the workflow
// policy table.
type WorkflowAction string

const (
	ActionEdit    WorkflowAction = "edit"    // create or update fields
	ActionSubmit  WorkflowAction = "submit"  // send for approval
	ActionApprove WorkflowAction = "approve" // gestor sign-off
	ActionReject  WorkflowAction = "reject"  // gestor/admin refusal
	ActionDelete  WorkflowAction = "delete"  // admin removal
)

// DefaultRejectReason is recorded when a rejection carries no motivo.
const DefaultRejectReason = "Sem motivo especificado"

// transitionRule is one row of the workflow policy table: which roles may
// perform the action, from which statuses, and the resulting status.
type transitionRule struct {
	roles map[Role]bool
	from  map[BudgetStatus]bool
	// to is the resulting status. Empty means the action keeps (or removes)
	// the current status: edits don't move the workflow, deletes end it.
	to BudgetStatus
}

// transitionTable is the single source of truth for workflow permissions and
// legal status transitions. Adding a role or transition is a data change here,
// not a code change across handlers.
var transitionTable = map[WorkflowAction]transitionRule{
	ActionEdit: {
		roles: map[Role]bool{RoleAdmin: true},
		from: map[BudgetStatus]bool{
			StatusDraft:           true,
			StatusPendingApproval: true,
			StatusRejected:        true,
		},
	},
	ActionSubmit: {
		roles: map[Role]bool{RoleAdmin: true},
		from: map[BudgetStatus]bool{
			StatusDraft:    true,
			StatusRejected: true,
		},
		to: StatusPendingApproval,
	},
	ActionApprove: {
		roles: map[Role]bool{RoleGestor: true},
		from: map[BudgetStatus]bool{
			StatusPendingApproval: true,
		},
		to: StatusApproved,
	},
	ActionReject: {
		roles: map[Role]bool{RoleGestor: true, RoleAdmin: true},
		from: map[BudgetStatus]bool{
			StatusPendingApproval: true,
			// Lenient: a draft may be rejected directly, e.g. during a sweep
			// that includes entries not yet submitted.
			StatusDraft: true,
		},
		to: StatusRejected,
	},
	ActionDelete: {
		roles: map[Role]bool{RoleAdmin: true},
		from: map[BudgetStatus]bool{
			StatusDraft:           true,
			StatusPendingApproval: true,
			StatusRejected:        true,
		},
	},
}

// Authorize checks whether the role may perform the action at all,
// independent of the entry's current status.
func Authorize(action WorkflowAction, role Role) error {
	rule, ok := transitionTable[action]
	if !ok {
		return fmt.Errorf("%w: unknown workflow action %q", apperrors.ErrValidation, action)
	}
	if !rule.roles[role] {
		return fmt.Errorf("%w: role %q may not %s budget entries", apperrors.ErrForbidden, role, action)
	}
	return nil
}

// ValidateTransition checks that the action is legal from the current status
// and returns the resulting status. An edit returns the current status
// unchanged. Approving an already-approved entry fails with ErrAlreadyApproved;
// any other illegal combination fails with a typed InvalidTransitionError.
// Neither failure mutates anything, so callers must not persist or audit on error.
func ValidateTransition(action WorkflowAction, current BudgetStatus) (BudgetStatus, error) {
	rule, ok := transitionTable[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown workflow action %q", apperrors.ErrValidation, action)
	}
	if action == ActionApprove && current == StatusApproved {
		return "", apperrors.ErrAlreadyApproved
	}
	if !rule.from[current] {
		requested := rule.to
		if requested == "" {
			requested = current
		}
		return "", &apperrors.InvalidTransitionError{
			Current:   string(current),
			Requested: string(requested),
		}
	}
	if rule.to == "" {
		return current, nil
	}
	return rule.to, nil
}

// CanTransition reports whether the action is legal from the current status,
// without distinguishing failure modes. Batch sweeps use this to skip
// ineligible entries silently instead of erroring per item.
func CanTransition(action WorkflowAction, current BudgetStatus) bool {
	rule, ok := transitionTable[action]
	return ok && rule.from[current]
}

// ApprovedEditPolicy governs what may change on an entry once it is approved
// (invariant: approved entries are otherwise immutable).
type ApprovedEditPolicy struct {
	// AdminOverride, when enabled, lets an admin edit any field of an
	// approved entry. Disabled in the strict deployment variant.
	AdminOverride bool
}

// MayEditApproved reports whether the actor may apply the requested change to
// an approved entry. Updating only the actual amount remains open to admins
// and gestores, since monthly actualization continues after approval.
func (p ApprovedEditPolicy) MayEditApproved(role Role, actualOnly bool) bool {
	if actualOnly {
		return role == RoleAdmin || role == RoleGestor
	}
	return p.AdminOverride && role == RoleAdmin
}
