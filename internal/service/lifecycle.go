package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/spacelink/internal/model"
)

// Action is an operation that moves a booking between states.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionActivate Action = "activate"
	ActionEnd      Action = "end"
	ActionCancel   Action = "cancel"
)

type transition struct {
	from []model.BookingStatus
	to   model.BookingStatus
}

var transitions = map[Action]transition{
	ActionApprove:  {from: []model.BookingStatus{model.StatusPending}, to: model.StatusApproved},
	ActionReject:   {from: []model.BookingStatus{model.StatusPending}, to: model.StatusRejected},
	ActionActivate: {from: []model.BookingStatus{model.StatusApproved}, to: model.StatusActive},
	ActionEnd:      {from: []model.BookingStatus{model.StatusActive, model.StatusApproved}, to: model.StatusEnded},
	ActionCancel:   {from: []model.BookingStatus{model.StatusActive}, to: model.StatusCancelled},
}

// Transition returns the state a booking in state current moves to when
// action is applied.  It fails with ErrInvalidTransition, listing the
// states the action is valid from, when current does not match.
func Transition(current model.BookingStatus, action Action) (model.BookingStatus, error) {
	tr, ok := transitions[action]
	if !ok {
		return current, newError(ErrValidation, fmt.Sprintf("unknown action %q", action))
	}
	for _, s := range tr.from {
		if s == current {
			return tr.to, nil
		}
	}
	names := make([]string, len(tr.from))
	for i, s := range tr.from {
		names[i] = string(s)
	}
	return current, &Error{
		Kind:    ErrInvalidTransition,
		Message: fmt.Sprintf("cannot %s a %s booking; allowed only when %s", action, current, strings.Join(names, " or ")),
		Allowed: append([]model.BookingStatus(nil), tr.from...),
	}
}

// DeriveStatus applies the time-based expiry rule: any non-terminal
// booking whose interval has ended is expired.  It never mutates b.
func DeriveStatus(b *model.Booking, now time.Time) model.BookingStatus {
	if !b.Status.IsTerminal() && now.After(b.ToDate) {
		return model.StatusExpired
	}
	return b.Status
}
