// Package approval holds the moderation lifecycle shared by profiles,
// courses and transactions.
package approval

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/pkg/apperror"
)

// DefaultRejectReason is stored when an admin rejects without a reason.
const DefaultRejectReason = "No reason provided"

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError reports a refused transition.
type TransitionError struct {
	From entity.Status
	To   entity.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type Table map[entity.Status][]entity.Status

// ProfileTransitions governs student and teacher profiles and courses.
// There is no path back to pending, and suspended is terminal.
var ProfileTransitions = Table{
	entity.StatusPending:  {entity.StatusApproved, entity.StatusRejected},
	entity.StatusRejected: {entity.StatusApproved},
	entity.StatusApproved: {entity.StatusRejected, entity.StatusSuspended},
}

var TransactionTransitions = Table{
	entity.StatusPending:   {entity.StatusApproved, entity.StatusRejected},
	entity.StatusRejected:  {entity.StatusApproved},
	entity.StatusApproved:  {entity.StatusCompleted, entity.StatusFailed, entity.StatusRejected},
	entity.StatusCompleted: {entity.StatusRefunded},
}

// Change describes an applied transition.
type Change struct {
	From   entity.Status
	To     entity.Status
	Reason *string
	At     time.Time
}

// Changed reports whether the record was modified.
func (c Change) Changed() bool {
	return c.From != c.To
}

type Machine struct {
	transitions map[entity.Status]map[entity.Status]struct{}
	now         func() time.Time
}

type Option func(*Machine)

// WithClock injects a custom clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMachine(table Table, opts ...Option) *Machine {
	m := &Machine{
		transitions: make(map[entity.Status]map[entity.Status]struct{}, len(table)),
		now:         time.Now,
	}
	for from, targets := range table {
		allowed := make(map[entity.Status]struct{}, len(targets))
		for _, to := range targets {
			allowed[to] = struct{}{}
		}
		m.transitions[from] = allowed
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewProfileMachine(opts ...Option) *Machine {
	return NewMachine(ProfileTransitions, opts...)
}

func NewTransactionMachine(opts ...Option) *Machine {
	return NewMachine(TransactionTransitions, opts...)
}

// CanTransition reports whether from -> to is allowed.
func (m *Machine) CanTransition(from, to entity.Status) bool {
	allowed, ok := m.transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Approve sets status approved and stamps verifiedAt. A previous rejection
// reason is cleared so it cannot leak onto an approved record.
func (m *Machine) Approve(rec *entity.Moderation) (Change, error) {
	return m.Transition(rec, entity.StatusApproved, "")
}

// Reject sets status rejected with reason, or DefaultRejectReason when blank.
// verifiedAt is left as is.
func (m *Machine) Reject(rec *entity.Moderation, reason string) (Change, error) {
	return m.Transition(rec, entity.StatusRejected, reason)
}

func (m *Machine) Suspend(rec *entity.Moderation, reason string) (Change, error) {
	return m.Transition(rec, entity.StatusSuspended, reason)
}

// Action is an admin moderation verb as it appears in routes.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionSuspend Action = "suspend"
)

// Target returns the status an action leads to.
func (a Action) Target() (entity.Status, bool) {
	switch a {
	case ActionApprove:
		return entity.StatusApproved, true
	case ActionReject:
		return entity.StatusRejected, true
	case ActionSuspend:
		return entity.StatusSuspended, true
	default:
		return "", false
	}
}

// Apply runs action against rec. Refused transitions come back as a 409
// AppError.
func (m *Machine) Apply(rec *entity.Moderation, action Action, reason string) (Change, error) {
	target, ok := action.Target()
	if !ok {
		return Change{}, apperror.BadRequest(fmt.Sprintf("unknown moderation action %q", action))
	}
	change, err := m.Transition(rec, target, reason)
	if err != nil {
		return Change{}, AsConflict(err)
	}
	return change, nil
}

// AsConflict maps a TransitionError to a 409 AppError and leaves other
// errors alone.
func AsConflict(err error) error {
	var te *TransitionError
	if errors.As(err, &te) {
		return apperror.New(http.StatusConflict, "Cannot change status from "+string(te.From)+" to "+string(te.To), err)
	}
	return err
}

// Transition moves rec to target. Moving to the current status is a no-op.
func (m *Machine) Transition(rec *entity.Moderation, target entity.Status, reason string) (Change, error) {
	if rec == nil {
		return Change{}, fmt.Errorf("%w: record is nil", ErrInvalidTransition)
	}

	from := rec.Status
	if from == "" {
		from = entity.StatusPending
	}

	if from == target {
		return Change{From: from, To: target, Reason: rec.Reason}, nil
	}

	if !m.CanTransition(from, target) {
		return Change{}, &TransitionError{From: from, To: target}
	}

	now := m.now()
	rec.Status = target

	switch target {
	case entity.StatusApproved:
		rec.VerifiedAt = &now
		rec.Reason = nil
	case entity.StatusRejected, entity.StatusSuspended, entity.StatusFailed, entity.StatusRefunded:
		r := strings.TrimSpace(reason)
		if r == "" && target == entity.StatusRejected {
			r = DefaultRejectReason
		}
		if r != "" {
			rec.Reason = &r
		}
	}

	return Change{From: from, To: target, Reason: rec.Reason, At: now}, nil
}

// CanLogin reports whether an account of role with the given profile may be
// issued a session. Moderated roles need an approved profile; other roles
// never have one. profile may be nil.
func CanLogin(role entity.Role, profile *entity.Moderation) bool {
	if !role.Moderated() {
		return true
	}
	return profile.IsApproved()
}
