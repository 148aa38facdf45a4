package quotation

import "github.com/bodycraft-erp/bodycraft-erp/internal/shared"

// Action names every operation gated by the quotation life cycle.
type Action string

const (
	ActionSubmitForReview Action = "submit_for_review"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionConvert         Action = "convert"
	ActionAddFeature      Action = "add_feature"
	ActionRemoveFeature   Action = "remove_feature"
	ActionAddDiscount     Action = "add_discount"
	ActionResolveDiscount Action = "resolve_discount"
	ActionCreateVersion   Action = "create_version"
	ActionOverride        Action = "manual_override"
)

// transitions is the single source of truth for status changes. Everything
// else consults it through Transition.
var transitions = map[Action]struct {
	from Status
	to   Status
}{
	ActionSubmitForReview: {from: StatusDraft, to: StatusReview},
	ActionApprove:         {from: StatusReview, to: StatusApproved},
	ActionReject:          {from: StatusReview, to: StatusRejected},
	ActionConvert:         {from: StatusApproved, to: StatusConverted},
}

// mutationActions may run in any non-terminal state without changing it.
var mutationActions = map[Action]bool{
	ActionAddFeature:      true,
	ActionRemoveFeature:   true,
	ActionAddDiscount:     true,
	ActionResolveDiscount: true,
	ActionCreateVersion:   true,
	ActionOverride:        true,
}

// Transition validates and performs a life-cycle step, returning the target
// status or an INVALID_STATE error naming the current status and the action.
func Transition(current Status, action Action) (Status, error) {
	t, ok := transitions[action]
	if !ok || t.from != current {
		return current, invalidState(current, action)
	}
	return t.to, nil
}

// EnsureMutable guards content mutations: allowed in DRAFT, REVIEW and
// APPROVED, refused once the quotation is REJECTED or CONVERTED.
func EnsureMutable(current Status, action Action) error {
	if !mutationActions[action] {
		return invalidState(current, action)
	}
	if current.Terminal() {
		return invalidState(current, action)
	}
	return nil
}

func invalidState(current Status, action Action) error {
	return shared.E(shared.KindInvalidState, "action not allowed in current status").
		With("current_status", string(current)).
		With("attempted_action", string(action))
}
