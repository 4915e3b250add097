package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetlease/internal/compliance"
	domainAccount "fleetlease/internal/domain/account"
	domainDriver "fleetlease/internal/domain/driver"
	domainLease "fleetlease/internal/domain/lease"
	domainLoad "fleetlease/internal/domain/load"
	"fleetlease/internal/lease/lifecycle"
	"fleetlease/internal/logger"
	"fleetlease/internal/notification"
	"fleetlease/internal/payment"
	appErrors "fleetlease/pkg/errors"
	"fleetlease/pkg/utils"
)

// Service implements lease agreement use cases. Every mutation follows the
// same shape: read, run the pure transition, commit with UpdateIf on the
// version that was read, then dispatch notifications best-effort.
type Service struct {
	leaseRepo   domainLease.Repository
	loadRepo    domainLoad.Repository
	driverRepo  domainDriver.Repository
	accountRepo domainAccount.Repository

	dispatcher *notification.Dispatcher
	payments   payment.SessionCreator

	matchFeeCents int64
}

func NewService(
	leaseRepo domainLease.Repository,
	loadRepo domainLoad.Repository,
	driverRepo domainDriver.Repository,
	accountRepo domainAccount.Repository,
	dispatcher *notification.Dispatcher,
	payments payment.SessionCreator,
	matchFeeCents int64,
) *Service {
	return &Service{
		leaseRepo:     leaseRepo,
		loadRepo:      loadRepo,
		driverRepo:    driverRepo,
		accountRepo:   accountRepo,
		dispatcher:    dispatcher,
		payments:      payments,
		matchFeeCents: matchFeeCents,
	}
}

var reasonToCode = map[lifecycle.ReasonCode]string{
	lifecycle.ReasonWrongParty:      appErrors.CodeWrongParty,
	lifecycle.ReasonOutOfOrder:      appErrors.CodeOutOfOrder,
	lifecycle.ReasonAlreadySigned:   appErrors.CodeAlreadySigned,
	lifecycle.ReasonPaymentRequired: appErrors.CodePaymentRequired,
	lifecycle.ReasonAlreadyTerminal: appErrors.CodeAlreadyTerminal,
}

// mapError lifts lifecycle denials and repository sentinels into coded
// service errors; anything else passes through unchanged.
func mapError(err error) error {
	var denial *lifecycle.Denial
	if errors.As(err, &denial) {
		return appErrors.NewAppError(reasonToCode[denial.Code], denial.Message, err)
	}
	switch {
	case errors.Is(err, domainLease.ErrAgreementNotFound):
		return appErrors.NewAppError(appErrors.CodeNotFound, "lease agreement not found", err)
	case errors.Is(err, domainLease.ErrVersionConflict):
		return appErrors.NewAppError(appErrors.CodeConflict, "the agreement changed while you were acting; reload and retry", err)
	case errors.Is(err, domainLoad.ErrLoadNotFound):
		return appErrors.NewAppError(appErrors.CodeNotFound, "load not found", err)
	case errors.Is(err, domainLoad.ErrLoadNotOpen):
		return appErrors.NewAppError(appErrors.CodeConflict, "the load is no longer open", err)
	case errors.Is(err, domainDriver.ErrDriverNotFound):
		return appErrors.NewAppError(appErrors.CodeNotFound, "driver not found", err)
	}
	return err
}

// AcceptMatch turns an open load plus one of the caller's confirmed drivers
// into a draft agreement. The caller becomes the lessor; the fleet that
// posted the load becomes the lessee. Party and driver details are frozen
// into snapshots at this moment.
func (s *Service) AcceptMatch(ctx context.Context, lessorFleetID, loadID uuid.UUID, req *AcceptMatchRequest) (*AgreementResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	l, err := s.loadRepo.GetByID(ctx, loadID)
	if err != nil {
		return nil, mapError(err)
	}
	if l.Status != domainLoad.StatusOpen {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "the load is no longer open", nil)
	}
	if l.FleetID == lessorFleetID {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "a fleet cannot accept its own load", nil)
	}

	drv, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, mapError(err)
	}
	if drv.OwnerFleetID != lessorFleetID {
		return nil, appErrors.NewAppError(appErrors.CodeWrongParty, "the driver does not belong to your fleet", nil)
	}
	if drv.ProfileStatus != domainDriver.ProfileConfirmed {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "the driver profile is not confirmed", nil)
	}
	if compliance.Evaluate(drv.Certification, time.Now()) == compliance.StatusRed {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "the driver is not compliant", nil)
	}
	if drv.Availability != domainDriver.AvailabilityAvailable {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "the driver is not available", nil)
	}

	lessor, err := s.accountRepo.GetByID(ctx, lessorFleetID)
	if err != nil {
		return nil, mapError(err)
	}
	lessee, err := s.accountRepo.GetByID(ctx, l.FleetID)
	if err != nil {
		return nil, mapError(err)
	}

	// The conditional status flip decides a race between two accepting
	// fleets; only the winner proceeds to draft the agreement.
	if err := s.loadRepo.UpdateStatus(ctx, l.ID, domainLoad.StatusOpen, domainLoad.StatusMatched); err != nil {
		return nil, mapError(err)
	}

	startDate := req.StartDate
	if startDate == nil {
		startDate = l.PickupDate
	}
	endDate := req.EndDate
	if endDate == nil {
		endDate = l.DeliveryDate
	}

	agreement := &domainLease.Agreement{
		LoadID: l.ID,
		Lessor: partySnapshot(lessor),
		Lessee: partySnapshot(lessee),
		Driver: domainLease.DriverSnapshot{
			DriverID:          drv.ID,
			AccountID:         drv.AccountID,
			FullName:          drv.FullName,
			Email:             drv.Email,
			CDLNumber:         drv.Certification.CDLNumber,
			CDLExpiry:         drv.Certification.CDLExpiry,
			MedicalCardExpiry: drv.Certification.MedicalCardExpiry,
		},
		Trip: domainLease.TripDetails{
			Origin:           l.Origin,
			Destination:      l.Destination,
			CargoDescription: l.CargoDescription,
			WeightLbs:        l.WeightLbs,
			StartDate:        startDate,
			EndDate:          endDate,
		},
		Payment: domainLease.PaymentTerms{
			AmountCents: req.AmountCents,
			DueDate:     req.DueDate,
		},
		Status: domainLease.StatusDraft,
	}

	if err := s.leaseRepo.Create(ctx, agreement); err != nil {
		// A failed draft must not keep the load out of circulation; hand
		// it back to the marketplace.
		if revertErr := s.loadRepo.UpdateStatus(ctx, l.ID, domainLoad.StatusMatched, domainLoad.StatusOpen); revertErr != nil {
			logger.Error("Failed to reopen load after draft failure",
				zap.String("load_id", l.ID.String()),
				zap.Error(revertErr),
			)
		}
		return nil, err
	}

	logger.Info("Lease agreement drafted",
		zap.String("agreement_id", agreement.ID.String()),
		zap.String("load_id", l.ID.String()),
		zap.String("lessor_fleet_id", lessorFleetID.String()),
		zap.String("lessee_fleet_id", l.FleetID.String()),
		zap.String("driver_id", drv.ID.String()),
	)

	s.dispatcher.SendDirect(ctx, notification.TemplateSignatureNeeded, lessor.Email, map[string]string{
		"agreement_id": agreement.ID.String(),
		"role":         string(lifecycle.RoleLessor),
	})

	return ToAgreementResponse(agreement), nil
}

// Sign applies the caller's signature and commits it against the version
// that was read. Denials come back coded; a concurrent write surfaces as a
// conflict the caller can retry.
func (s *Service) Sign(ctx context.Context, id uuid.UUID, actor lifecycle.Actor, sourceIP string, req *SignRequest) (*AgreementResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	return s.transition(ctx, id, actor, func(a *domainLease.Agreement) (*lifecycle.Result, error) {
		return lifecycle.Sign(a, actor, req.SignerName, sourceIP, time.Now())
	})
}

// StartTrip moves a signed, fee-paid agreement into progress and flips the
// driver to on-trip.
func (s *Service) StartTrip(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*AgreementResponse, error) {
	resp, err := s.transition(ctx, id, actor, func(a *domainLease.Agreement) (*lifecycle.Result, error) {
		return lifecycle.StartTrip(a, actor, time.Now())
	})
	if err != nil {
		return nil, err
	}

	s.setDriverAvailability(ctx, resp.Driver.DriverID, domainDriver.AvailabilityOnTrip)
	return resp, nil
}

// EndTrip completes the trip and releases the driver.
func (s *Service) EndTrip(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*AgreementResponse, error) {
	resp, err := s.transition(ctx, id, actor, func(a *domainLease.Agreement) (*lifecycle.Result, error) {
		return lifecycle.EndTrip(a, actor, time.Now())
	})
	if err != nil {
		return nil, err
	}

	s.setDriverAvailability(ctx, resp.Driver.DriverID, domainDriver.AvailabilityAvailable)
	return resp, nil
}

// Void terminates a non-terminal agreement with a recorded reason.
func (s *Service) Void(ctx context.Context, id uuid.UUID, actor lifecycle.Actor, req *VoidRequest) (*AgreementResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	return s.transition(ctx, id, actor, func(a *domainLease.Agreement) (*lifecycle.Result, error) {
		return lifecycle.Void(a, actor, req.Reason, time.Now())
	})
}

// AttestInsurance records the coverage option a party attests to. The
// attestation is recorded with attester and timestamp, never verified.
func (s *Service) AttestInsurance(ctx context.Context, id uuid.UUID, actor lifecycle.Actor, req *AttestInsuranceRequest) (*AgreementResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	return s.transition(ctx, id, actor, func(a *domainLease.Agreement) (*lifecycle.Result, error) {
		if a.IsTerminal() {
			return nil, &lifecycle.Denial{Code: lifecycle.ReasonAlreadyTerminal, Message: fmt.Sprintf("agreement is %s", a.Status)}
		}
		role := lifecycle.RoleOf(a, actor)
		if role != lifecycle.RoleLessor && role != lifecycle.RoleLessee {
			return nil, &lifecycle.Denial{Code: lifecycle.ReasonWrongParty, Message: "only the lessor or lessee may attest coverage"}
		}

		now := time.Now()
		next := a.Clone()
		next.Insurance = &domainLease.InsuranceAttestation{
			Option:     req.Option,
			AttestedBy: actor.AccountID,
			AttestedAt: now,
		}
		next.UpdatedAt = now
		return &lifecycle.Result{Agreement: next}, nil
	})
}

// CreateFeeSession asks the payment processor for a hosted checkout
// session covering the match fee. Only the lessee pays the fee, and only
// once both parties have signed.
func (s *Service) CreateFeeSession(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*FeeSessionResponse, error) {
	a, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	if lifecycle.RoleOf(a, actor) != lifecycle.RoleLessee {
		return nil, appErrors.NewAppError(appErrors.CodeWrongParty, "only the lessee pays the match fee", nil)
	}
	if a.Status != domainLease.StatusSigned {
		return nil, appErrors.NewAppError(appErrors.CodeOutOfOrder, "the match fee is due once both parties have signed", nil)
	}
	if a.Payment.MatchFeePaid {
		return nil, appErrors.NewAppError(appErrors.CodeOutOfOrder, "the match fee is already paid", nil)
	}

	sessionURL, err := s.payments.CreateSession(ctx, actor.AccountID.String(), s.matchFeeCents, map[string]string{
		"agreement_id": a.ID.String(),
		"purpose":      "match_fee",
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Match fee session created",
		zap.String("agreement_id", a.ID.String()),
		zap.Int64("amount_cents", s.matchFeeCents),
	)

	return &FeeSessionResponse{SessionURL: sessionURL, AmountCents: s.matchFeeCents}, nil
}

// MarkFeePaid is driven by the payment webhook. Payment is acknowledged
// only on a fully signed agreement; anything else is out of order.
func (s *Service) MarkFeePaid(ctx context.Context, id uuid.UUID) (*AgreementResponse, error) {
	// The processor is the actor here, not a party; notifications go to
	// all parties.
	return s.transition(ctx, id, lifecycle.Actor{}, func(a *domainLease.Agreement) (*lifecycle.Result, error) {
		return lifecycle.MarkFeePaid(a, time.Now())
	})
}

// Get returns the agreement to a party, the leased driver, or an admin.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*AgreementResponse, error) {
	a, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if lifecycle.RoleOf(a, actor) == lifecycle.RoleNone && !actor.IsAdmin {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "lease agreement not found", nil)
	}
	return ToAgreementResponse(a), nil
}

// SigningStatus answers "can I sign, and if not, why" for the caller.
func (s *Service) SigningStatus(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*SigningStatusResponse, error) {
	a, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if lifecycle.RoleOf(a, actor) == lifecycle.RoleNone && !actor.IsAdmin {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "lease agreement not found", nil)
	}
	return toSigningStatusResponse(a, actor), nil
}

// List returns agreements visible to the caller. Fleets see both sides of
// their own agreements, drivers see agreements they are leased under, and
// admins see everything.
func (s *Service) List(ctx context.Context, actor lifecycle.Actor, role string, req *ListRequest) (*ListResponse, error) {
	filter := &domainLease.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	if req.Status != "" {
		status := domainLease.Status(req.Status)
		filter.Status = &status
	}

	switch {
	case actor.IsAdmin:
		// No scoping.
	case role == string(domainAccount.RoleDriver):
		drv, err := s.driverRepo.GetByAccountID(ctx, actor.AccountID)
		if err != nil {
			return nil, mapError(err)
		}
		filter.DriverID = &drv.ID
	default:
		fleetID := actor.AccountID
		filter.FleetID = &fleetID
	}

	agreements, total, err := s.leaseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*AgreementResponse, 0, len(agreements))
	for _, a := range agreements {
		responses = append(responses, ToAgreementResponse(a))
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return &ListResponse{Agreements: responses, Total: total, Page: page, PageSize: pageSize}, nil
}

// transition runs one guarded lifecycle step: read, apply, commit on the
// version read, notify. A failed notification never rolls back the commit.
func (s *Service) transition(ctx context.Context, id uuid.UUID, actor lifecycle.Actor, apply func(*domainLease.Agreement) (*lifecycle.Result, error)) (*AgreementResponse, error) {
	a, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	result, err := apply(a)
	if err != nil {
		return nil, mapError(err)
	}

	if err := s.leaseRepo.UpdateIf(ctx, id, a.Version, result.Agreement); err != nil {
		return nil, mapError(err)
	}

	if len(result.Events) > 0 {
		logger.Info("Lease agreement transitioned",
			zap.String("agreement_id", id.String()),
			zap.String("status", string(result.Agreement.Status)),
			zap.Int64("version", result.Agreement.Version),
		)
		s.dispatcher.DispatchLease(ctx, result.Agreement, lifecycle.RoleOf(result.Agreement, actor), result.Events)
	}

	return ToAgreementResponse(result.Agreement), nil
}

// setDriverAvailability flips the driver's availability after a trip
// boundary. Best effort: the agreement transition already committed, and a
// concurrent profile write is not worth failing the trip over.
func (s *Service) setDriverAvailability(ctx context.Context, driverID uuid.UUID, availability domainDriver.Availability) {
	drv, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		logger.Warn("Driver availability not updated",
			zap.String("driver_id", driverID.String()),
			zap.Error(err),
		)
		return
	}

	updated := *drv
	updated.Availability = availability
	if err := s.driverRepo.UpdateIf(ctx, drv.ID, drv.Version, &updated); err != nil {
		logger.Warn("Driver availability not updated",
			zap.String("driver_id", driverID.String()),
			zap.Error(err),
		)
	}
}

func partySnapshot(acc *domainAccount.Account) domainLease.PartySnapshot {
	snap := domainLease.PartySnapshot{
		FleetID: acc.ID,
		Email:   acc.Email,
	}
	if acc.CompanyName != nil {
		snap.CompanyName = *acc.CompanyName
	}
	if acc.LegalName != nil {
		snap.LegalName = *acc.LegalName
	}
	if acc.Address != nil {
		snap.Address = *acc.Address
	}
	if acc.USDOTNumber != nil {
		snap.USDOTNumber = *acc.USDOTNumber
	}
	if acc.MCNumber != nil {
		snap.MCNumber = *acc.MCNumber
	}
	if acc.Phone != nil {
		snap.Phone = *acc.Phone
	}
	return snap
}
