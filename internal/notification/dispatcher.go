// Package notification turns accepted lease transitions into emails and
// fanout messages. Everything here is best-effort: the state change is
// already committed by the time the dispatcher runs, so failures are
// logged and swallowed, never propagated back to the caller.
package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fleetlease/internal/domain/lease"
	"fleetlease/internal/lease/lifecycle"
	"fleetlease/internal/logger"
)

// EventPublisher is the in-app fanout side of the dispatcher, satisfied
// by the RabbitMQ publisher.
type EventPublisher interface {
	PublishFanout(ctx context.Context, data interface{}) error
}

// LeaseEvent is the fanout payload per transition.
type LeaseEvent struct {
	Event       lifecycle.Event `json:"event"`
	AgreementID string          `json:"agreement_id"`
	Status      lease.Status    `json:"status"`
	LessorFleet string          `json:"lessor_fleet_id"`
	LesseeFleet string          `json:"lessee_fleet_id"`
	DriverID    string          `json:"driver_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

type Dispatcher struct {
	sender    Sender
	publisher EventPublisher
}

func NewDispatcher(sender Sender, publisher EventPublisher) *Dispatcher {
	return &Dispatcher{sender: sender, publisher: publisher}
}

// routing picks the template and recipient emails for one event. The
// acting party already knows what they did, so trip and void transitions
// go to the counterparties; a blank actor role means no party acted and
// everyone is notified.
func routing(event lifecycle.Event, a *lease.Agreement, actor lifecycle.Role) (Template, []string) {
	counterparties := func() []string {
		var out []string
		if actor != lifecycle.RoleLessor {
			out = append(out, a.Lessor.Email)
		}
		if actor != lifecycle.RoleLessee {
			out = append(out, a.Lessee.Email)
		}
		if actor != lifecycle.RoleDriver {
			out = append(out, a.Driver.Email)
		}
		return out
	}

	switch event {
	case lifecycle.EventLessorSigned:
		// The lessee is up next.
		return TemplateSignatureNeeded, []string{a.Lessee.Email}
	case lifecycle.EventLesseeSigned:
		return TemplateFullySigned, []string{a.Lessor.Email, a.Driver.Email}
	case lifecycle.EventFeePaid:
		// Paid by the lessee via the processor; the trip may now begin.
		return TemplateFeePaid, []string{a.Lessor.Email, a.Driver.Email}
	case lifecycle.EventTripStarted:
		return TemplateTripStarted, counterparties()
	case lifecycle.EventTripCompleted:
		return TemplateTripCompleted, counterparties()
	case lifecycle.EventVoided:
		return TemplateVoided, counterparties()
	}
	return "", nil
}

// DispatchLease emits notifications for each event of a committed
// transition. The actor role scopes email routing to the parties who did
// not act.
func (d *Dispatcher) DispatchLease(ctx context.Context, a *lease.Agreement, actor lifecycle.Role, events []lifecycle.Event) {
	for _, event := range events {
		if d.publisher != nil {
			payload := LeaseEvent{
				Event:       event,
				AgreementID: a.ID.String(),
				Status:      a.Status,
				LessorFleet: a.Lessor.FleetID.String(),
				LesseeFleet: a.Lessee.FleetID.String(),
				DriverID:    a.Driver.DriverID.String(),
				OccurredAt:  time.Now(),
			}
			if err := d.publisher.PublishFanout(ctx, payload); err != nil {
				logger.Warn("Failed to publish lease event",
					zap.String("agreement_id", a.ID.String()),
					zap.String("lease_event", string(event)),
					zap.Error(err),
				)
			}
		}

		template, recipients := routing(event, a, actor)
		if template == "" || d.sender == nil {
			continue
		}

		fields := map[string]string{
			"agreement": a.ID.String(),
			"status":    string(a.Status),
			"origin":    a.Trip.Origin,
			"dest":      a.Trip.Destination,
		}
		for _, recipient := range recipients {
			if recipient == "" {
				continue
			}
			if err := d.sender.Send(ctx, template, recipient, fields); err != nil {
				logger.Warn("Failed to send lease notification",
					zap.String("agreement_id", a.ID.String()),
					zap.String("template", string(template)),
					zap.Error(err),
				)
			}
		}
	}
}

// SendDirect delivers a one-off message outside the lease event flow,
// still best-effort.
func (d *Dispatcher) SendDirect(ctx context.Context, template Template, recipient string, fields map[string]string) {
	if d.sender == nil || recipient == "" {
		return
	}
	if err := d.sender.Send(ctx, template, recipient, fields); err != nil {
		logger.Warn("Failed to send notification",
			zap.String("template", string(template)),
			zap.Error(err),
		)
	}
}
