package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"boardflow/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrPrecondition means the stored rule cannot be executed as configured.
	ErrPrecondition = errors.New("precondition failed")
	// ErrUnknownAction is returned for action types this engine does not implement.
	ErrUnknownAction = errors.New("unknown action type")
)

// RuleError is a configuration problem with one rule. Its message is what
// the FAILURE log row shows; errors.Is matches the wrapped kind.
type RuleError struct {
	kind error
	msg  string
}

func (e *RuleError) Error() string { return e.msg }
func (e *RuleError) Unwrap() error { return e.kind }

func precondition(format string, args ...interface{}) error {
	return &RuleError{kind: ErrPrecondition, msg: fmt.Sprintf(format, args...)}
}

// CardMutator is the set of card writes actions may perform.
type CardMutator interface {
	ArchiveCard(ctx context.Context, cardID uuid.UUID) error
	MarkCardDone(ctx context.Context, cardID uuid.UUID) error
	MoveCardToList(ctx context.Context, cardID, listID uuid.UUID) error
	SetCardDueDate(ctx context.Context, cardID uuid.UUID, due time.Time) error
	// AttachLabel and AttachMember insert only when absent and report whether a row was added.
	AttachLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error)
	DetachLabel(ctx context.Context, cardID, labelID uuid.UUID) error
	AttachMember(ctx context.Context, cardID, userID uuid.UUID) (bool, error)
}

// Action is one executable rule effect. Apply returns the message recorded
// on the SUCCESS log row.
type Action interface {
	Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, now time.Time) (string, error)
}

type ArchiveCard struct{}

func (ArchiveCard) Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, _ time.Time) (string, error) {
	if err := m.ArchiveCard(ctx, cardID); err != nil {
		return "", err
	}
	return "Card archived", nil
}

type MarkAsDone struct{}

func (MarkAsDone) Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, _ time.Time) (string, error) {
	if err := m.MarkCardDone(ctx, cardID); err != nil {
		return "", err
	}
	return "Card marked as done", nil
}

type AddLabel struct {
	LabelID uuid.UUID
}

func (a AddLabel) Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, _ time.Time) (string, error) {
	added, err := m.AttachLabel(ctx, cardID, a.LabelID)
	if err != nil {
		return "", err
	}
	if !added {
		return fmt.Sprintf("Label %s already on card", a.LabelID), nil
	}
	return fmt.Sprintf("Label %s added to card", a.LabelID), nil
}

type MoveCard struct {
	TargetListID uuid.UUID
}

func (a MoveCard) Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, _ time.Time) (string, error) {
	if err := m.MoveCardToList(ctx, cardID, a.TargetListID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Card moved to list %s", a.TargetListID), nil
}

type AssignMember struct {
	UserID uuid.UUID
}

func (a AssignMember) Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, _ time.Time) (string, error) {
	added, err := m.AttachMember(ctx, cardID, a.UserID)
	if err != nil {
		return "", err
	}
	if !added {
		return fmt.Sprintf("Member %s already assigned to card", a.UserID), nil
	}
	return fmt.Sprintf("Member %s assigned to card", a.UserID), nil
}

type DueKind int

const (
	DueToday DueKind = iota
	DueTomorrow
	DueOn
)

// DueDate is either relative to the execution day or a fixed calendar date.
type DueDate struct {
	Kind DueKind
	Date time.Time // only for DueOn
	// Fallback holds a stored value that could not be parsed and was read as today.
	Fallback string
}

// Resolve returns the due date at midnight in now's location.
func (d DueDate) Resolve(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch d.Kind {
	case DueTomorrow:
		return today.AddDate(0, 0, 1)
	case DueOn:
		return time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, 0, 0, 0, now.Location())
	default:
		return today
	}
}

type SetDueDate struct {
	Due DueDate
}

func (a SetDueDate) Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, now time.Time) (string, error) {
	due := a.Due.Resolve(now)
	if err := m.SetCardDueDate(ctx, cardID, due); err != nil {
		return "", err
	}
	if a.Due.Fallback != "" {
		return fmt.Sprintf("Due date set to %s (unrecognized date %q, used today)", due.Format(time.DateOnly), a.Due.Fallback), nil
	}
	return "Due date set to " + due.Format(time.DateOnly), nil
}

type RemoveLabel struct {
	LabelID uuid.UUID
}

func (a RemoveLabel) Apply(ctx context.Context, m CardMutator, cardID uuid.UUID, _ time.Time) (string, error) {
	if err := m.DetachLabel(ctx, cardID, a.LabelID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Label %s removed from card", a.LabelID), nil
}

// ParseAction turns a stored (action type, action value) pair into an Action.
// Errors are *RuleError wrapping ErrPrecondition or ErrUnknownAction.
func ParseAction(actionType model.ActionType, actionVal string) (Action, error) {
	val := strings.TrimSpace(actionVal)

	switch actionType {
	case model.ActionArchiveCard:
		return ArchiveCard{}, nil
	case model.ActionMarkAsDone:
		return MarkAsDone{}, nil
	case model.ActionAddLabel:
		id, err := requireID(actionType, "label", val)
		if err != nil {
			return nil, err
		}
		return AddLabel{LabelID: id}, nil
	case model.ActionMoveCard:
		id, err := requireID(actionType, "list", val)
		if err != nil {
			return nil, err
		}
		return MoveCard{TargetListID: id}, nil
	case model.ActionAssignMember:
		id, err := requireID(actionType, "user", val)
		if err != nil {
			return nil, err
		}
		return AssignMember{UserID: id}, nil
	case model.ActionSetDueDate:
		due, err := parseDueDate(val)
		if err != nil {
			// Validate rejects these on write; rows stored before that still run.
			return SetDueDate{Due: DueDate{Kind: DueToday, Fallback: val}}, nil
		}
		return SetDueDate{Due: due}, nil
	case model.ActionRemoveLabel:
		id, err := requireID(actionType, "label", val)
		if err != nil {
			return nil, err
		}
		return RemoveLabel{LabelID: id}, nil
	}
	return nil, &RuleError{kind: ErrUnknownAction, msg: fmt.Sprintf("Unknown action type: %s", actionType)}
}

func requireID(actionType model.ActionType, what, val string) (uuid.UUID, error) {
	if val == "" {
		return uuid.Nil, precondition("%s requires a %s id", actionType, what)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, precondition("%s: invalid %s id %q", actionType, what, val)
	}
	return id, nil
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

func parseDueDate(val string) (DueDate, error) {
	switch strings.ToUpper(val) {
	case "", "TODAY":
		return DueDate{Kind: DueToday}, nil
	case "TOMORROW":
		return DueDate{Kind: DueTomorrow}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return DueDate{Kind: DueOn, Date: t}, nil
		}
	}
	return DueDate{}, precondition("SET_DUE_DATE: unrecognized date %q", val)
}
