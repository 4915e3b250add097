// Package lifecycle holds the decision logic for lease agreement
// transitions. Functions here never perform I/O and never mutate their
// input: each transition returns a modified copy plus the events a
// dispatcher should emit, or a typed denial. Version bookkeeping belongs
// to the repository, not to this package.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetlease/internal/domain/lease"
)

// Role an actor plays relative to a specific agreement.
type Role string

const (
	RoleLessor Role = "lessor"
	RoleLessee Role = "lessee"
	RoleDriver Role = "driver"
	RoleNone   Role = ""
)

// Actor identifies who is attempting a transition.
type Actor struct {
	AccountID uuid.UUID
	IsAdmin   bool
}

// ReasonCode classifies why a transition was denied.
type ReasonCode string

const (
	ReasonWrongParty      ReasonCode = "wrong_party"
	ReasonOutOfOrder      ReasonCode = "out_of_order"
	ReasonAlreadySigned   ReasonCode = "already_signed"
	ReasonPaymentRequired ReasonCode = "payment_required"
	ReasonAlreadyTerminal ReasonCode = "already_terminal"
)

// Denial is a rejected transition with a machine-readable code and a
// reason fit for showing to the actor.
type Denial struct {
	Code    ReasonCode
	Message string
}

func (d *Denial) Error() string {
	return d.Message
}

func deny(code ReasonCode, format string, args ...interface{}) *Denial {
	return &Denial{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Event emitted by an accepted transition, consumed by the notification
// dispatcher.
type Event string

const (
	EventLessorSigned  Event = "lease.lessor_signed"
	EventLesseeSigned  Event = "lease.fully_signed"
	EventTripStarted   Event = "lease.trip_started"
	EventTripCompleted Event = "lease.trip_completed"
	EventVoided        Event = "lease.voided"
	EventFeePaid       Event = "lease.match_fee_paid"
)

// Result of an accepted transition.
type Result struct {
	Agreement *lease.Agreement
	Events    []Event
}

// RoleOf resolves which role the actor plays on this agreement.
func RoleOf(a *lease.Agreement, actor Actor) Role {
	switch actor.AccountID {
	case a.Lessor.FleetID:
		return RoleLessor
	case a.Lessee.FleetID:
		return RoleLessee
	case a.Driver.AccountID:
		return RoleDriver
	}
	return RoleNone
}

// canControlTrip: trip start/stop belongs to the driver-owning fleet or
// the driver themself. The lessee holds signing and payment rights only.
func canControlTrip(role Role) bool {
	return role == RoleLessor || role == RoleDriver
}

// Sign applies the actor's signature. The lessor always signs first; a
// lessee attempt before that is denied out_of_order, never silently
// ignored. A party that already signed is denied already_signed.
func Sign(a *lease.Agreement, actor Actor, signerName, sourceIP string, at time.Time) (*Result, error) {
	if a.IsTerminal() {
		return nil, deny(ReasonAlreadyTerminal, "agreement is %s and can no longer be signed", a.Status)
	}

	role := RoleOf(a, actor)
	switch role {
	case RoleLessor:
		return lessorSign(a, actor, signerName, sourceIP, at)
	case RoleLessee:
		return lesseeSign(a, actor, signerName, sourceIP, at)
	default:
		return nil, deny(ReasonWrongParty, "only the lessor or lessee may sign this agreement")
	}
}

func lessorSign(a *lease.Agreement, actor Actor, signerName, sourceIP string, at time.Time) (*Result, error) {
	if a.LessorSignature != nil {
		return nil, deny(ReasonAlreadySigned, "lessor has already signed; waiting on the lessee")
	}
	if a.Status != lease.StatusDraft && a.Status != lease.StatusPendingLessor {
		return nil, deny(ReasonOutOfOrder, "agreement is %s; the lessor may only sign a draft", a.Status)
	}

	next := a.Clone()
	next.LessorSignature = &lease.Signature{
		SignerID:   actor.AccountID,
		SignerName: signerName,
		Role:       string(RoleLessor),
		SignedAt:   at,
		SourceIP:   sourceIP,
	}
	next.Status = lease.StatusPendingLessee
	next.UpdatedAt = at

	return &Result{Agreement: next, Events: []Event{EventLessorSigned}}, nil
}

func lesseeSign(a *lease.Agreement, actor Actor, signerName, sourceIP string, at time.Time) (*Result, error) {
	if a.LesseeSignature != nil {
		return nil, deny(ReasonAlreadySigned, "lessee has already signed")
	}
	if a.LessorSignature == nil {
		return nil, deny(ReasonOutOfOrder, "the lessor must sign first")
	}
	if a.Status != lease.StatusPendingLessee {
		return nil, deny(ReasonOutOfOrder, "agreement is %s; not awaiting the lessee's signature", a.Status)
	}

	next := a.Clone()
	next.LesseeSignature = &lease.Signature{
		SignerID:   actor.AccountID,
		SignerName: signerName,
		Role:       string(RoleLessee),
		SignedAt:   at,
		SourceIP:   sourceIP,
	}
	next.Status = lease.StatusSigned
	next.SignedAt = &at
	next.UpdatedAt = at

	return &Result{Agreement: next, Events: []Event{EventLesseeSigned}}, nil
}

// MarkFeePaid flips the match-fee gate. It is its own small guarded
// transition fired by the payment webhook, valid only once the agreement
// is fully signed.
func MarkFeePaid(a *lease.Agreement, at time.Time) (*Result, error) {
	if a.IsTerminal() {
		return nil, deny(ReasonAlreadyTerminal, "agreement is %s", a.Status)
	}
	if a.Status != lease.StatusSigned {
		return nil, deny(ReasonOutOfOrder, "match fee applies only to a fully signed agreement, not %s", a.Status)
	}
	if a.Payment.MatchFeePaid {
		return nil, deny(ReasonOutOfOrder, "match fee is already paid")
	}

	next := a.Clone()
	next.Payment.MatchFeePaid = true
	next.Payment.FeePaidAt = &at
	next.UpdatedAt = at

	return &Result{Agreement: next, Events: []Event{EventFeePaid}}, nil
}

// StartTrip moves a signed, fee-paid agreement into progress.
func StartTrip(a *lease.Agreement, actor Actor, at time.Time) (*Result, error) {
	if a.IsTerminal() {
		return nil, deny(ReasonAlreadyTerminal, "agreement is %s", a.Status)
	}
	if role := RoleOf(a, actor); !canControlTrip(role) {
		return nil, deny(ReasonWrongParty, "only the lessor fleet or the driver may start the trip")
	}
	if a.Status != lease.StatusSigned {
		return nil, deny(ReasonOutOfOrder, "trip can start only from a signed agreement, not %s", a.Status)
	}
	if !a.BothSigned() {
		return nil, deny(ReasonOutOfOrder, "both signatures are required before the trip starts")
	}
	if !a.Payment.MatchFeePaid {
		return nil, deny(ReasonPaymentRequired, "the match fee must be paid before the trip starts")
	}

	next := a.Clone()
	actorID := actor.AccountID
	next.Status = lease.StatusInProgress
	next.TripTracking.StartedBy = &actorID
	next.TripTracking.StartedAt = &at
	next.UpdatedAt = at

	return &Result{Agreement: next, Events: []Event{EventTripStarted}}, nil
}

// EndTrip completes an in-progress trip and records its duration.
func EndTrip(a *lease.Agreement, actor Actor, at time.Time) (*Result, error) {
	if a.IsTerminal() {
		return nil, deny(ReasonAlreadyTerminal, "agreement is %s", a.Status)
	}
	if role := RoleOf(a, actor); !canControlTrip(role) {
		return nil, deny(ReasonWrongParty, "only the lessor fleet or the driver may end the trip")
	}
	if a.Status != lease.StatusInProgress || a.TripTracking.StartedAt == nil {
		return nil, deny(ReasonOutOfOrder, "no trip in progress to end")
	}

	duration := int(at.Sub(*a.TripTracking.StartedAt).Minutes())
	if duration < 0 {
		return nil, deny(ReasonOutOfOrder, "trip end time precedes its start time")
	}

	next := a.Clone()
	actorID := actor.AccountID
	next.Status = lease.StatusCompleted
	next.TripTracking.EndedBy = &actorID
	next.TripTracking.EndedAt = &at
	next.TripTracking.DurationMinutes = &duration
	next.UpdatedAt = at

	return &Result{Agreement: next, Events: []Event{EventTripCompleted}}, nil
}

// Void terminates any non-terminal agreement. Allowed to either party or
// an admin.
func Void(a *lease.Agreement, actor Actor, reason string, at time.Time) (*Result, error) {
	if a.IsTerminal() {
		return nil, deny(ReasonAlreadyTerminal, "agreement is already %s", a.Status)
	}
	if role := RoleOf(a, actor); role == RoleNone && !actor.IsAdmin {
		return nil, deny(ReasonWrongParty, "only a party to the agreement or an admin may void it")
	}

	next := a.Clone()
	next.Status = lease.StatusVoided
	next.VoidedAt = &at
	next.VoidedReason = &reason
	next.UpdatedAt = at

	return &Result{Agreement: next, Events: []Event{EventVoided}}, nil
}
