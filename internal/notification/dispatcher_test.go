package notification

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"

	"fleetlease/internal/domain/lease"
	"fleetlease/internal/lease/lifecycle"
)

type capturingSender struct {
	recipients map[Template][]string
}

func (s *capturingSender) Send(_ context.Context, template Template, recipient string, _ map[string]string) error {
	if s.recipients == nil {
		s.recipients = make(map[Template][]string)
	}
	s.recipients[template] = append(s.recipients[template], recipient)
	return nil
}

func testAgreement() *lease.Agreement {
	return &lease.Agreement{
		ID:     uuid.New(),
		Status: lease.StatusVoided,
		Lessor: lease.PartySnapshot{FleetID: uuid.New(), Email: "ops@northhaul.example.com"},
		Lessee: lease.PartySnapshot{FleetID: uuid.New(), Email: "dispatch@southline.example.com"},
		Driver: lease.DriverSnapshot{DriverID: uuid.New(), Email: "ray@example.com"},
	}
}

func TestDispatchRoutesToCounterparties(t *testing.T) {
	tests := []struct {
		name     string
		event    lifecycle.Event
		actor    lifecycle.Role
		template Template
		want     []string
	}{
		{
			name:     "lessor void skips the lessor",
			event:    lifecycle.EventVoided,
			actor:    lifecycle.RoleLessor,
			template: TemplateVoided,
			want:     []string{"dispatch@southline.example.com", "ray@example.com"},
		},
		{
			name:     "lessee void skips the lessee",
			event:    lifecycle.EventVoided,
			actor:    lifecycle.RoleLessee,
			template: TemplateVoided,
			want:     []string{"ops@northhaul.example.com", "ray@example.com"},
		},
		{
			name:     "driver trip start notifies both fleets",
			event:    lifecycle.EventTripStarted,
			actor:    lifecycle.RoleDriver,
			template: TemplateTripStarted,
			want:     []string{"dispatch@southline.example.com", "ops@northhaul.example.com"},
		},
		{
			name:     "lessor trip end notifies lessee and driver",
			event:    lifecycle.EventTripCompleted,
			actor:    lifecycle.RoleLessor,
			template: TemplateTripCompleted,
			want:     []string{"dispatch@southline.example.com", "ray@example.com"},
		},
		{
			name:     "lessor signature nudges only the lessee",
			event:    lifecycle.EventLessorSigned,
			actor:    lifecycle.RoleLessor,
			template: TemplateSignatureNeeded,
			want:     []string{"dispatch@southline.example.com"},
		},
		{
			name:     "full signature reaches lessor and driver",
			event:    lifecycle.EventLesseeSigned,
			actor:    lifecycle.RoleLessee,
			template: TemplateFullySigned,
			want:     []string{"ops@northhaul.example.com", "ray@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &capturingSender{}
			d := NewDispatcher(sender, nil)

			d.DispatchLease(context.Background(), testAgreement(), tt.actor, []lifecycle.Event{tt.event})

			got := append([]string(nil), sender.recipients[tt.template]...)
			sort.Strings(got)
			want := append([]string(nil), tt.want...)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("recipients = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("recipients = %v, want %v", got, want)
				}
			}
		})
	}
}
