package driver

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"fleetlease/internal/compliance"
	"fleetlease/internal/config"
	domainAccount "fleetlease/internal/domain/account"
	domainDriver "fleetlease/internal/domain/driver"
	domainInvitation "fleetlease/internal/domain/invitation"
	"fleetlease/internal/notification"
	appErrors "fleetlease/pkg/errors"
)

var fleetID = uuid.MustParse("aaaaaaaa-1111-1111-1111-111111111111")

type fakeDriverRepo struct {
	drivers   map[uuid.UUID]*domainDriver.Driver
	createErr error
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: make(map[uuid.UUID]*domainDriver.Driver)}
}

func (r *fakeDriverRepo) Create(_ context.Context, d *domainDriver.Driver) error {
	if r.createErr != nil {
		return r.createErr
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Version = 1
	copied := *d
	r.drivers[d.ID] = &copied
	return nil
}

func (r *fakeDriverRepo) GetByID(_ context.Context, id uuid.UUID) (*domainDriver.Driver, error) {
	d, ok := r.drivers[id]
	if !ok {
		return nil, domainDriver.ErrDriverNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDriverRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*domainDriver.Driver, error) {
	for _, d := range r.drivers {
		if d.AccountID == accountID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, domainDriver.ErrDriverNotFound
}

func (r *fakeDriverRepo) UpdateIf(_ context.Context, id uuid.UUID, expectedVersion int64, d *domainDriver.Driver) error {
	stored, ok := r.drivers[id]
	if !ok {
		return domainDriver.ErrDriverNotFound
	}
	if stored.Version != expectedVersion {
		return domainDriver.ErrVersionConflict
	}
	next := *d
	next.Version = expectedVersion + 1
	r.drivers[id] = &next
	return nil
}

func (r *fakeDriverRepo) ListByFleet(_ context.Context, fleetID uuid.UUID) ([]*domainDriver.Driver, error) {
	var out []*domainDriver.Driver
	for _, d := range r.drivers {
		if d.OwnerFleetID == fleetID {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeInvitationRepo struct {
	invitations map[uuid.UUID]*domainInvitation.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[uuid.UUID]*domainInvitation.Invitation)}
}

func (r *fakeInvitationRepo) Create(_ context.Context, inv *domainInvitation.Invitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	copied := *inv
	r.invitations[inv.ID] = &copied
	return nil
}

func (r *fakeInvitationRepo) GetByToken(_ context.Context, token string) (*domainInvitation.Invitation, error) {
	for _, inv := range r.invitations {
		if inv.Token == token {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, domainInvitation.ErrInvitationNotFound
}

func (r *fakeInvitationRepo) MarkUsed(_ context.Context, id uuid.UUID, driverID uuid.UUID) error {
	inv, ok := r.invitations[id]
	if !ok {
		return domainInvitation.ErrInvitationNotFound
	}
	if inv.Status != domainInvitation.StatusPending {
		return domainInvitation.ErrAlreadyUsed
	}
	now := time.Now()
	inv.Status = domainInvitation.StatusUsed
	inv.DriverID = &driverID
	inv.UsedAt = &now
	return nil
}

func (r *fakeInvitationRepo) Release(_ context.Context, id uuid.UUID, driverID uuid.UUID) error {
	inv, ok := r.invitations[id]
	if !ok {
		return domainInvitation.ErrInvitationNotFound
	}
	if inv.Status != domainInvitation.StatusUsed || inv.DriverID == nil || *inv.DriverID != driverID {
		return domainInvitation.ErrInvitationNotFound
	}
	inv.Status = domainInvitation.StatusPending
	inv.DriverID = nil
	inv.UsedAt = nil
	return nil
}

func (r *fakeInvitationRepo) ListByFleet(_ context.Context, fleetID uuid.UUID) ([]*domainInvitation.Invitation, error) {
	var out []*domainInvitation.Invitation
	for _, inv := range r.invitations {
		if inv.FleetID == fleetID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeAccountRepo struct {
	accounts  map[uuid.UUID]*domainAccount.Account
	createErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*domainAccount.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, acc *domainAccount.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	r.accounts[acc.ID] = acc
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domainAccount.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return nil, domainAccount.ErrAccountNotFound
	}
	return acc, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domainAccount.Account, error) {
	for _, acc := range r.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, domainAccount.ErrAccountNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, _ *domainAccount.Account) error {
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.accounts[id]; !ok {
		return domainAccount.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

type fakeSender struct {
	sent []notification.Template
}

func (s *fakeSender) Send(_ context.Context, template notification.Template, _ string, _ map[string]string) error {
	s.sent = append(s.sent, template)
	return nil
}

type fakeUploader struct {
	objects []string
}

func (u *fakeUploader) Upload(_ context.Context, objectName string, _ io.Reader, _ int64, _ string) (string, error) {
	u.objects = append(u.objects, objectName)
	return "https://cdn.example.com/" + objectName, nil
}

type fixture struct {
	svc         *Service
	drivers     *fakeDriverRepo
	invitations *fakeInvitationRepo
	accounts    *fakeAccountRepo
	sender      *fakeSender
	uploader    *fakeUploader
}

func newFixture() *fixture {
	drivers := newFakeDriverRepo()
	invitations := newFakeInvitationRepo()
	accounts := newFakeAccountRepo()
	sender := &fakeSender{}
	uploader := &fakeUploader{}

	company := "North Haul Logistics"
	accounts.accounts[fleetID] = &domainAccount.Account{
		ID:          fleetID,
		Email:       "dispatch@northhaul.example.com",
		Role:        domainAccount.RoleFleet,
		CompanyName: &company,
	}

	dispatcher := notification.NewDispatcher(sender, nil)
	svc := NewService(drivers, invitations, accounts, dispatcher, uploader, &config.JWTConfig{
		Secret:      "test-secret",
		ExpiryHours: 24,
	})

	return &fixture{
		svc:         svc,
		drivers:     drivers,
		invitations: invitations,
		accounts:    accounts,
		sender:      sender,
		uploader:    uploader,
	}
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func (f *fixture) invite(t *testing.T) *InvitationResponse {
	t.Helper()
	inv, err := f.svc.Invite(context.Background(), fleetID, &InviteRequest{
		Email:           "marta@example.com",
		DQFAcknowledged: true,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	return inv
}

func (f *fixture) redeem(t *testing.T, token string) *RedeemResponse {
	t.Helper()
	resp, err := f.svc.Redeem(context.Background(), &RedeemRequest{
		Token:    token,
		FullName: "Marta Reyes",
		Password: "Str0ng!Pass",
	})
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	return resp
}

func validCertification() CertificationRequest {
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	recent := time.Now().AddDate(0, -1, 0).Format("2006-01-02")
	return CertificationRequest{
		CDLNumber:               "D7654321",
		CDLExpiry:               future,
		MedicalCardExpiry:       future,
		InsuranceExpiry:         future,
		MVRNumber:               "MVR-102",
		BackgroundCheckedAt:     recent,
		PreEmploymentScreenedAt: recent,
		DrugScreenedAt:          recent,
	}
}

func (f *fixture) submit(t *testing.T, accountID, driverID uuid.UUID) *DriverResponse {
	t.Helper()
	resp, err := f.svc.SubmitProfile(context.Background(), accountID, driverID, "203.0.113.9", &SubmitProfileRequest{
		VehicleType:   "dry_van",
		Certification: validCertification(),
		Consents:      []string{"drug_testing_policy", "electronic_signature"},
		Device:        "Mozilla/5.0",
	})
	if err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	return resp
}

func TestInviteRequiresAcknowledgement(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Invite(context.Background(), fleetID, &InviteRequest{
		Email:           "marta@example.com",
		DQFAcknowledged: false,
	})
	if got := codeOf(t, err); got != appErrors.CodeValidation {
		t.Fatalf("code = %s, want %s", got, appErrors.CodeValidation)
	}
}

func TestInvitationRedemptionCreatesDriverAndAccount(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)

	resp := f.redeem(t, inv.Token)
	if resp.AccessToken == "" {
		t.Fatal("no access token issued")
	}
	if resp.Driver.OwnerFleetID != fleetID {
		t.Fatal("driver not linked to the inviting fleet")
	}
	if resp.Driver.ProfileStatus != string(domainDriver.ProfileIncomplete) {
		t.Fatalf("profile status = %s, want incomplete", resp.Driver.ProfileStatus)
	}

	acc, err := f.accounts.GetByEmail(context.Background(), "marta@example.com")
	if err != nil {
		t.Fatalf("account not created: %v", err)
	}
	if acc.Role != domainAccount.RoleDriver {
		t.Fatalf("account role = %s, want driver", acc.Role)
	}
}

func TestInvitationIsSingleUse(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	f.redeem(t, inv.Token)

	_, err := f.svc.Redeem(context.Background(), &RedeemRequest{
		Token:    inv.Token,
		FullName: "Second Redeemer",
		Password: "An0ther!Pass",
	})
	if got := codeOf(t, err); got != appErrors.CodeConflict {
		t.Fatalf("code = %s, want %s", got, appErrors.CodeConflict)
	}
}

func TestExpiredInvitationLooksMissing(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	f.invitations.invitations[inv.ID].ExpiresAt = time.Now().Add(-time.Hour)

	_, err := f.svc.Redeem(context.Background(), &RedeemRequest{
		Token:    inv.Token,
		FullName: "Marta Reyes",
		Password: "Str0ng!Pass",
	})
	if got := codeOf(t, err); got != appErrors.CodeNotFound {
		t.Fatalf("code = %s, want %s", got, appErrors.CodeNotFound)
	}
}

func TestFailedAccountCreateReleasesInvitation(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)

	f.accounts.createErr = errors.New("connection reset")
	_, err := f.svc.Redeem(context.Background(), &RedeemRequest{
		Token:    inv.Token,
		FullName: "Marta Reyes",
		Password: "Str0ng!Pass",
	})
	if err == nil {
		t.Fatal("expected redemption to fail")
	}

	stored := f.invitations.invitations[inv.ID]
	if stored.Status != domainInvitation.StatusPending {
		t.Fatalf("invitation status = %s, want %s", stored.Status, domainInvitation.StatusPending)
	}
	if stored.DriverID != nil {
		t.Fatal("invitation still linked to a driver that was never created")
	}
	if len(f.drivers.drivers) != 0 {
		t.Fatalf("driver rows = %d, want 0", len(f.drivers.drivers))
	}

	// With the token back in circulation the invitee can retry.
	f.accounts.createErr = nil
	f.redeem(t, inv.Token)
}

func TestFailedDriverCreateRollsBackAccount(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)

	f.drivers.createErr = errors.New("connection reset")
	_, err := f.svc.Redeem(context.Background(), &RedeemRequest{
		Token:    inv.Token,
		FullName: "Marta Reyes",
		Password: "Str0ng!Pass",
	})
	if err == nil {
		t.Fatal("expected redemption to fail")
	}

	if stored := f.invitations.invitations[inv.ID]; stored.Status != domainInvitation.StatusPending {
		t.Fatalf("invitation status = %s, want %s", stored.Status, domainInvitation.StatusPending)
	}
	if _, err := f.accounts.GetByEmail(context.Background(), inv.Email); !errors.Is(err, domainAccount.ErrAccountNotFound) {
		t.Fatalf("account lookup = %v, want %v", err, domainAccount.ErrAccountNotFound)
	}

	f.drivers.createErr = nil
	resp := f.redeem(t, inv.Token)
	if resp.Driver.ProfileStatus != string(domainDriver.ProfileIncomplete) {
		t.Fatalf("profile status = %s, want %s", resp.Driver.ProfileStatus, domainDriver.ProfileIncomplete)
	}
}

func TestSubmitProfileMovesToPendingConfirmation(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)

	acc, _ := f.accounts.GetByEmail(context.Background(), "marta@example.com")
	resp := f.submit(t, acc.ID, redeemed.Driver.ID)

	if resp.ProfileStatus != string(domainDriver.ProfilePendingConfirmation) {
		t.Fatalf("profile status = %s, want pending_confirmation", resp.ProfileStatus)
	}
	if len(resp.Consents) != 2 {
		t.Fatalf("consents = %d, want 2", len(resp.Consents))
	}

	stored := f.drivers.drivers[redeemed.Driver.ID]
	if stored.Consents[0].SourceIP != "203.0.113.9" {
		t.Fatal("consent capture context was not recorded")
	}
	if stored.Version != 2 {
		t.Fatalf("version = %d, want 2", stored.Version)
	}
}

func TestStrangerCannotSubmitProfile(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)

	_, err := f.svc.SubmitProfile(context.Background(), uuid.New(), redeemed.Driver.ID, "203.0.113.9", &SubmitProfileRequest{
		VehicleType:   "dry_van",
		Certification: validCertification(),
		Consents:      []string{"electronic_signature"},
	})
	if got := codeOf(t, err); got != appErrors.CodeWrongParty {
		t.Fatalf("code = %s, want %s", got, appErrors.CodeWrongParty)
	}
}

func TestConfirmRequiresPendingProfile(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)

	_, err := f.svc.Confirm(context.Background(), fleetID, false, redeemed.Driver.ID)
	if got := codeOf(t, err); got != appErrors.CodeConflict {
		t.Fatalf("code = %s, want %s", got, appErrors.CodeConflict)
	}
}

func TestConfirmedDriverBecomesAvailable(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)
	acc, _ := f.accounts.GetByEmail(context.Background(), "marta@example.com")
	f.submit(t, acc.ID, redeemed.Driver.ID)

	resp, err := f.svc.Confirm(context.Background(), fleetID, false, redeemed.Driver.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if resp.ProfileStatus != string(domainDriver.ProfileConfirmed) {
		t.Fatalf("profile status = %s, want confirmed", resp.ProfileStatus)
	}
	if resp.Availability != string(domainDriver.AvailabilityAvailable) {
		t.Fatalf("availability = %s, want available", resp.Availability)
	}
}

func TestRejectedDriverCanResubmit(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)
	acc, _ := f.accounts.GetByEmail(context.Background(), "marta@example.com")
	f.submit(t, acc.ID, redeemed.Driver.ID)

	rejected, err := f.svc.Reject(context.Background(), fleetID, false, redeemed.Driver.ID, &RejectRequest{
		Reason: "medical card image unreadable",
	})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.RejectedReason == nil || *rejected.RejectedReason != "medical card image unreadable" {
		t.Fatal("rejection reason was not recorded")
	}

	resubmitted := f.submit(t, acc.ID, redeemed.Driver.ID)
	if resubmitted.ProfileStatus != string(domainDriver.ProfilePendingConfirmation) {
		t.Fatalf("profile status after resubmit = %s", resubmitted.ProfileStatus)
	}
	if resubmitted.RejectedReason != nil {
		t.Fatal("stale rejection reason survived resubmission")
	}
}

func TestComplianceEvaluatesCurrentCertification(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)
	acc, _ := f.accounts.GetByEmail(context.Background(), "marta@example.com")
	f.submit(t, acc.ID, redeemed.Driver.ID)

	resp, err := f.svc.Compliance(context.Background(), fleetID, false, redeemed.Driver.ID)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if resp.Status != compliance.StatusGreen {
		t.Fatalf("status = %s, want green", resp.Status)
	}

	f.drivers.drivers[redeemed.Driver.ID].Certification.MedicalCardExpiry = time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	resp, err = f.svc.Compliance(context.Background(), fleetID, false, redeemed.Driver.ID)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if resp.Status != compliance.StatusYellow {
		t.Fatalf("status = %s, want yellow", resp.Status)
	}
}

func TestUploadCDLImageStoresURL(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)
	acc, _ := f.accounts.GetByEmail(context.Background(), "marta@example.com")

	resp, err := f.svc.UploadCDLImage(context.Background(), acc.ID, false, redeemed.Driver.ID,
		"license.jpg", strings.NewReader("fake image bytes"), 16, "image/jpeg")
	if err != nil {
		t.Fatalf("UploadCDLImage: %v", err)
	}
	if resp.URL == "" {
		t.Fatal("no URL returned")
	}

	stored := f.drivers.drivers[redeemed.Driver.ID]
	if stored.CDLImageURL == nil || *stored.CDLImageURL != resp.URL {
		t.Fatal("image URL was not stored on the profile")
	}
	if len(f.uploader.objects) != 1 || !strings.HasSuffix(f.uploader.objects[0], ".jpg") {
		t.Fatalf("uploaded objects = %v", f.uploader.objects)
	}
}

func TestAvailabilityCannotBeForcedOffTrip(t *testing.T) {
	f := newFixture()
	inv := f.invite(t)
	redeemed := f.redeem(t, inv.Token)
	acc, _ := f.accounts.GetByEmail(context.Background(), "marta@example.com")
	f.submit(t, acc.ID, redeemed.Driver.ID)
	if _, err := f.svc.Confirm(context.Background(), fleetID, false, redeemed.Driver.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	f.drivers.drivers[redeemed.Driver.ID].Availability = domainDriver.AvailabilityOnTrip

	_, err := f.svc.SetAvailability(context.Background(), acc.ID, redeemed.Driver.ID, &AvailabilityRequest{
		Availability: "available",
	})
	if got := codeOf(t, err); got != appErrors.CodeConflict {
		t.Fatalf("code = %s, want %s", got, appErrors.CodeConflict)
	}
}
