package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fleetlease/internal/domain/lease"
)

var (
	lessorID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	lesseeID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	driverID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	otherID  = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func newDraft() *lease.Agreement {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &lease.Agreement{
		ID:      uuid.New(),
		Version: 1,
		Lessor:  lease.PartySnapshot{FleetID: lessorID, CompanyName: "Northline Carriers"},
		Lessee:  lease.PartySnapshot{FleetID: lesseeID, CompanyName: "Bighorn Freight"},
		Driver: lease.DriverSnapshot{
			DriverID:  uuid.New(),
			AccountID: driverID,
			FullName:  "Dale Hooper",
		},
		Payment:   lease.PaymentTerms{AmountCents: 185000},
		Status:    lease.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func denialCode(t *testing.T, err error) ReasonCode {
	t.Helper()
	var d *Denial
	if !errors.As(err, &d) {
		t.Fatalf("expected *Denial, got %T: %v", err, err)
	}
	return d.Code
}

func lessor() Actor { return Actor{AccountID: lessorID} }
func lessee() Actor { return Actor{AccountID: lesseeID} }
func driver() Actor { return Actor{AccountID: driverID} }

func TestLessorSignsFirst(t *testing.T) {
	a := newDraft()
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	res, err := Sign(a, lessor(), "Pat Womack", "10.0.0.1", at)
	if err != nil {
		t.Fatalf("lessor sign failed: %v", err)
	}
	if res.Agreement.Status != lease.StatusPendingLessee {
		t.Errorf("status = %s, want %s", res.Agreement.Status, lease.StatusPendingLessee)
	}
	if res.Agreement.LessorSignature == nil {
		t.Fatal("lessor signature not recorded")
	}
	if res.Agreement.LessorSignature.SourceIP != "10.0.0.1" {
		t.Errorf("source IP = %q", res.Agreement.LessorSignature.SourceIP)
	}
	if len(res.Events) != 1 || res.Events[0] != EventLessorSigned {
		t.Errorf("events = %v", res.Events)
	}

	// The input must stay untouched.
	if a.LessorSignature != nil || a.Status != lease.StatusDraft {
		t.Error("Sign mutated its input")
	}
}

func TestLesseeCannotSignBeforeLessor(t *testing.T) {
	a := newDraft()

	_, err := Sign(a, lessee(), "Jo Frick", "10.0.0.2", time.Now())
	if code := denialCode(t, err); code != ReasonOutOfOrder {
		t.Errorf("code = %s, want %s", code, ReasonOutOfOrder)
	}
	if a.Status != lease.StatusDraft {
		t.Errorf("status changed to %s on a rejected transition", a.Status)
	}
}

func TestLessorCannotSignTwice(t *testing.T) {
	a := newDraft()
	res, err := Sign(a, lessor(), "Pat Womack", "10.0.0.1", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	_, err = Sign(res.Agreement, lessor(), "Pat Womack", "10.0.0.1", time.Now())
	if code := denialCode(t, err); code != ReasonAlreadySigned {
		t.Errorf("code = %s, want %s", code, ReasonAlreadySigned)
	}
}

func TestStrangerCannotSign(t *testing.T) {
	_, err := Sign(newDraft(), Actor{AccountID: otherID}, "X", "10.0.0.9", time.Now())
	if code := denialCode(t, err); code != ReasonWrongParty {
		t.Errorf("code = %s, want %s", code, ReasonWrongParty)
	}
}

func signedAgreement(t *testing.T) *lease.Agreement {
	t.Helper()
	a := newDraft()
	res, err := Sign(a, lessor(), "Pat Womack", "10.0.0.1", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	res, err = Sign(res.Agreement, lessee(), "Jo Frick", "10.0.0.2", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	return res.Agreement
}

func TestStartTripGating(t *testing.T) {
	start := time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		prepare  func(t *testing.T) *lease.Agreement
		actor    Actor
		wantCode ReasonCode
	}{
		{
			name:     "fee unpaid",
			prepare:  signedAgreement,
			actor:    lessor(),
			wantCode: ReasonPaymentRequired,
		},
		{
			name: "lessee has no trip control",
			prepare: func(t *testing.T) *lease.Agreement {
				a := signedAgreement(t)
				res, err := MarkFeePaid(a, start)
				if err != nil {
					t.Fatal(err)
				}
				return res.Agreement
			},
			actor:    lessee(),
			wantCode: ReasonWrongParty,
		},
		{
			name: "not signed yet",
			prepare: func(t *testing.T) *lease.Agreement {
				return newDraft()
			},
			actor:    lessor(),
			wantCode: ReasonOutOfOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.prepare(t)
			_, err := StartTrip(a, tt.actor, start)
			if code := denialCode(t, err); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestDriverMayControlTrip(t *testing.T) {
	a := signedAgreement(t)
	res, err := MarkFeePaid(a, time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	start := time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC)
	res, err = StartTrip(res.Agreement, driver(), start)
	if err != nil {
		t.Fatalf("driver could not start trip: %v", err)
	}
	if res.Agreement.Status != lease.StatusInProgress {
		t.Errorf("status = %s", res.Agreement.Status)
	}

	end := start.Add(9*time.Hour + 30*time.Minute)
	res, err = EndTrip(res.Agreement, driver(), end)
	if err != nil {
		t.Fatalf("driver could not end trip: %v", err)
	}
	if res.Agreement.Status != lease.StatusCompleted {
		t.Errorf("status = %s", res.Agreement.Status)
	}
	if got := *res.Agreement.TripTracking.DurationMinutes; got != 570 {
		t.Errorf("duration = %d minutes, want 570", got)
	}
}

func TestHappyPath(t *testing.T) {
	a := newDraft()

	res, err := Sign(a, lessor(), "Pat Womack", "10.0.0.1", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if res.Agreement.Status != lease.StatusPendingLessee {
		t.Fatalf("after lessor sign: %s", res.Agreement.Status)
	}

	res, err = Sign(res.Agreement, lessee(), "Jo Frick", "10.0.0.2", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if res.Agreement.Status != lease.StatusSigned {
		t.Fatalf("after lessee sign: %s", res.Agreement.Status)
	}
	if res.Agreement.SignedAt == nil {
		t.Fatal("SignedAt not set")
	}

	res, err = MarkFeePaid(res.Agreement, time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	start := time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC)
	res, err = StartTrip(res.Agreement, lessor(), start)
	if err != nil {
		t.Fatal(err)
	}

	end := start.Add(4 * time.Hour)
	res, err = EndTrip(res.Agreement, lessor(), end)
	if err != nil {
		t.Fatal(err)
	}
	if res.Agreement.Status != lease.StatusCompleted {
		t.Fatalf("final status: %s", res.Agreement.Status)
	}
	if got := *res.Agreement.TripTracking.DurationMinutes; got != 240 {
		t.Errorf("duration = %d, want 240", got)
	}
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	voided := newDraft()
	res, err := Void(voided, lessee(), "deal fell through", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	terminal := res.Agreement

	if _, err := Sign(terminal, lessor(), "Pat Womack", "10.0.0.1", time.Now()); err == nil {
		t.Error("sign allowed on voided agreement")
	} else if code := denialCode(t, err); code != ReasonAlreadyTerminal {
		t.Errorf("sign code = %s", code)
	}
	if _, err := StartTrip(terminal, lessor(), time.Now()); err == nil {
		t.Error("start trip allowed on voided agreement")
	}
	if _, err := Void(terminal, lessee(), "again", time.Now()); err == nil {
		t.Error("double void allowed")
	} else if code := denialCode(t, err); code != ReasonAlreadyTerminal {
		t.Errorf("void code = %s", code)
	}
}

func TestVoidRights(t *testing.T) {
	if _, err := Void(newDraft(), Actor{AccountID: otherID}, "nope", time.Now()); err == nil {
		t.Error("stranger voided an agreement")
	}
	if _, err := Void(newDraft(), Actor{AccountID: otherID, IsAdmin: true}, "fraud report", time.Now()); err != nil {
		t.Errorf("admin void denied: %v", err)
	}
}

func TestMarkFeePaidRequiresSignedStatus(t *testing.T) {
	_, err := MarkFeePaid(newDraft(), time.Now())
	if code := denialCode(t, err); code != ReasonOutOfOrder {
		t.Errorf("code = %s, want %s", code, ReasonOutOfOrder)
	}
}

func TestEndTripBeforeStartTimeRejected(t *testing.T) {
	a := signedAgreement(t)
	res, err := MarkFeePaid(a, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC)
	res, err = StartTrip(res.Agreement, lessor(), start)
	if err != nil {
		t.Fatal(err)
	}

	_, err = EndTrip(res.Agreement, lessor(), start.Add(-time.Hour))
	if code := denialCode(t, err); code != ReasonOutOfOrder {
		t.Errorf("code = %s, want %s", code, ReasonOutOfOrder)
	}
}

func TestSigningQueries(t *testing.T) {
	a := newDraft()

	if got := SigningRole(a, lessor()); got != RoleLessor {
		t.Errorf("lessor SigningRole = %q", got)
	}
	if got := SigningRole(a, lessee()); got != RoleNone {
		t.Errorf("lessee SigningRole before lessor signs = %q", got)
	}
	if got := CannotSignReason(a, lessee()); got != "the lessor must sign first" {
		t.Errorf("lessee reason = %q", got)
	}

	res, err := Sign(a, lessor(), "Pat Womack", "10.0.0.1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	half := res.Agreement

	if got := SigningRole(half, lessee()); got != RoleLessee {
		t.Errorf("lessee SigningRole after lessor signed = %q", got)
	}
	if got := CannotSignReason(half, lessor()); got != "you have already signed this agreement" {
		t.Errorf("lessor reason = %q", got)
	}
	if got := WaitingMessage(half, lessor()); got == "" {
		t.Error("lessor should see a waiting message")
	}
	if got := WaitingMessage(half, lessee()); got != "" {
		t.Errorf("lessee waiting message = %q, want none", got)
	}

	done := signedAgreement(t)
	if got := SigningRole(done, lessee()); got != RoleNone {
		t.Errorf("SigningRole on fully signed = %q", got)
	}
	if got := WaitingMessage(done, lessee()); got == "" {
		t.Error("lessee should be told the fee gates the trip")
	}
}
