package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetlease/internal/compliance"
	"fleetlease/internal/config"
	domainAccount "fleetlease/internal/domain/account"
	domainDriver "fleetlease/internal/domain/driver"
	domainInvitation "fleetlease/internal/domain/invitation"
	"fleetlease/internal/logger"
	"fleetlease/internal/notification"
	"fleetlease/internal/storage"
	appErrors "fleetlease/pkg/errors"
	"fleetlease/pkg/utils"
)

// Service implements driver onboarding and profile use cases.
type Service struct {
	driverRepo     domainDriver.Repository
	invitationRepo domainInvitation.Repository
	accountRepo    domainAccount.Repository

	dispatcher *notification.Dispatcher
	uploader   storage.Uploader

	jwt *config.JWTConfig
}

func NewService(
	driverRepo domainDriver.Repository,
	invitationRepo domainInvitation.Repository,
	accountRepo domainAccount.Repository,
	dispatcher *notification.Dispatcher,
	uploader storage.Uploader,
	jwt *config.JWTConfig,
) *Service {
	return &Service{
		driverRepo:     driverRepo,
		invitationRepo: invitationRepo,
		accountRepo:    accountRepo,
		dispatcher:     dispatcher,
		uploader:       uploader,
		jwt:            jwt,
	}
}

func mapDriverError(err error) error {
	switch {
	case errors.Is(err, domainDriver.ErrDriverNotFound):
		return appErrors.NewAppError(appErrors.CodeNotFound, "driver not found", err)
	case errors.Is(err, domainDriver.ErrVersionConflict):
		return appErrors.NewAppError(appErrors.CodeConflict, "the driver profile changed while you were acting; reload and retry", err)
	case errors.Is(err, domainInvitation.ErrInvitationNotFound):
		return appErrors.NewAppError(appErrors.CodeNotFound, "invitation not found", err)
	case errors.Is(err, domainInvitation.ErrAlreadyUsed):
		return appErrors.NewAppError(appErrors.CodeConflict, "this invitation has already been used", err)
	}
	return err
}

// Invite issues a single-use invitation token for one driver email. The
// fleet must acknowledge its qualification-file duty in the same request.
func (s *Service) Invite(ctx context.Context, fleetID uuid.UUID, req *InviteRequest) (*InvitationResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}
	if !req.DQFAcknowledged {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "the qualification-file acknowledgement is required to invite a driver", nil)
	}

	email, err := utils.ValidateAndSanitizeEmail(req.Email)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid email", err)
	}

	inv := &domainInvitation.Invitation{
		Token:           strings.ReplaceAll(uuid.NewString(), "-", ""),
		FleetID:         fleetID,
		Email:           email,
		DQFAcknowledged: true,
		Status:          domainInvitation.StatusPending,
		ExpiresAt:       time.Now().Add(domainInvitation.TTL),
	}

	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	logger.Info("Driver invitation issued",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("fleet_id", fleetID.String()),
	)

	s.dispatcher.SendDirect(ctx, notification.TemplateInvitation, email, map[string]string{
		"token":      inv.Token,
		"expires_at": inv.ExpiresAt.Format(time.RFC3339),
	})

	return ToInvitationResponse(inv), nil
}

func (s *Service) ListInvitations(ctx context.Context, fleetID uuid.UUID) ([]*InvitationResponse, error) {
	invitations, err := s.invitationRepo.ListByFleet(ctx, fleetID)
	if err != nil {
		return nil, err
	}

	responses := make([]*InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		responses = append(responses, ToInvitationResponse(inv))
	}
	return responses, nil
}

// Redeem exchanges a pending, unexpired token for a driver account and an
// empty profile. The token is claimed with a conditional write first, so
// two concurrent redemptions of the same token resolve to one winner.
func (s *Service) Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, err.Error(), err)
	}

	inv, err := s.invitationRepo.GetByToken(ctx, req.Token)
	if err != nil {
		return nil, mapDriverError(err)
	}
	if inv.Status != domainInvitation.StatusPending {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "this invitation has already been used", nil)
	}
	if inv.Expired(time.Now()) {
		// An expired token is indistinguishable from a missing one.
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "invitation not found", domainInvitation.ErrInvitationExpired)
	}

	if _, err := s.accountRepo.GetByEmail(ctx, inv.Email); err == nil {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "an account with this email already exists", nil)
	} else if !errors.Is(err, domainAccount.ErrAccountNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	driverID := uuid.New()
	if err := s.invitationRepo.MarkUsed(ctx, inv.ID, driverID); err != nil {
		return nil, mapDriverError(err)
	}

	// From here every failure must hand the token back, or the invitee
	// ends up with a burned invitation and no account.
	release := func() {
		if err := s.invitationRepo.Release(ctx, inv.ID, driverID); err != nil {
			logger.Error("Failed to release invitation after redemption failure",
				zap.String("invitation_id", inv.ID.String()),
				zap.Error(err),
			)
		}
	}

	acc := &domainAccount.Account{
		Email:          inv.Email,
		PasswordHashed: hashed,
		Role:           domainAccount.RoleDriver,
		FullName:       req.FullName,
		Phone:          req.Phone,
		IsActive:       true,
	}
	if err := s.accountRepo.Create(ctx, acc); err != nil {
		release()
		return nil, err
	}

	invID := inv.ID
	drv := &domainDriver.Driver{
		ID:            driverID,
		OwnerFleetID:  inv.FleetID,
		AccountID:     acc.ID,
		InvitationID:  &invID,
		FullName:      req.FullName,
		Email:         inv.Email,
		Phone:         req.Phone,
		ProfileStatus: domainDriver.ProfileIncomplete,
		Availability:  domainDriver.AvailabilityUnavailable,
	}
	if err := s.driverRepo.Create(ctx, drv); err != nil {
		if delErr := s.accountRepo.Delete(ctx, acc.ID); delErr != nil {
			logger.Error("Failed to remove account after redemption failure",
				zap.String("account_id", acc.ID.String()),
				zap.Error(delErr),
			)
		}
		release()
		return nil, err
	}

	token, err := utils.GenerateToken(acc.ID, acc.Email, string(acc.Role), s.jwt.Secret, s.jwt.ExpiryHours)
	if err != nil {
		return nil, err
	}

	logger.Info("Driver invitation redeemed",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("driver_id", drv.ID.String()),
		zap.String("fleet_id", inv.FleetID.String()),
	)

	return &RedeemResponse{Driver: ToDriverResponse(drv), AccessToken: token}, nil
}

// SubmitProfile records the driver's qualification fields and consents and
// hands the profile to the owning fleet for confirmation. Allowed from the
// incomplete or rejected states; resubmission after rejection starts over.
func (s *Service) SubmitProfile(ctx context.Context, accountID, driverID uuid.UUID, sourceIP string, req *SubmitProfileRequest) (*DriverResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	drv, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, mapDriverError(err)
	}
	if drv.AccountID != accountID {
		return nil, appErrors.NewAppError(appErrors.CodeWrongParty, "only the driver may submit their own profile", nil)
	}
	if drv.ProfileStatus != domainDriver.ProfileIncomplete && drv.ProfileStatus != domainDriver.ProfileRejected {
		return nil, appErrors.NewAppError(appErrors.CodeConflict,
			fmt.Sprintf("profile is %s and cannot be resubmitted", drv.ProfileStatus), domainDriver.ErrInvalidProfileState)
	}

	now := time.Now()
	updated := *drv
	updated.VehicleType = req.VehicleType
	updated.Certification = domainDriver.Certification{
		CDLNumber:               req.Certification.CDLNumber,
		CDLExpiry:               req.Certification.CDLExpiry,
		MedicalCardExpiry:       req.Certification.MedicalCardExpiry,
		InsuranceExpiry:         req.Certification.InsuranceExpiry,
		MVRNumber:               req.Certification.MVRNumber,
		BackgroundCheckedAt:     req.Certification.BackgroundCheckedAt,
		PreEmploymentScreenedAt: req.Certification.PreEmploymentScreenedAt,
		DrugScreenedAt:          req.Certification.DrugScreenedAt,
	}
	updated.Consents = make([]domainDriver.Consent, 0, len(req.Consents))
	for _, item := range req.Consents {
		updated.Consents = append(updated.Consents, domainDriver.Consent{
			Item:        item,
			SourceIP:    sourceIP,
			Device:      req.Device,
			SubmittedAt: now,
		})
	}
	updated.ProfileStatus = domainDriver.ProfilePendingConfirmation
	updated.RejectedReason = nil

	if err := s.driverRepo.UpdateIf(ctx, drv.ID, drv.Version, &updated); err != nil {
		return nil, mapDriverError(err)
	}

	logger.Info("Driver profile submitted",
		zap.String("driver_id", drv.ID.String()),
		zap.String("fleet_id", drv.OwnerFleetID.String()),
	)

	if fleet, err := s.accountRepo.GetByID(ctx, drv.OwnerFleetID); err == nil {
		s.dispatcher.SendDirect(ctx, notification.TemplateProfileSubmitted, fleet.Email, map[string]string{
			"driver":    updated.FullName,
			"driver_id": drv.ID.String(),
		})
	}

	return ToDriverResponse(&updated), nil
}

// Confirm approves a pending profile. Owner fleet or admin only.
func (s *Service) Confirm(ctx context.Context, fleetID uuid.UUID, isAdmin bool, driverID uuid.UUID) (*DriverResponse, error) {
	return s.review(ctx, fleetID, isAdmin, driverID, domainDriver.ProfileConfirmed, nil)
}

// Reject sends a pending profile back with a recorded reason.
func (s *Service) Reject(ctx context.Context, fleetID uuid.UUID, isAdmin bool, driverID uuid.UUID, req *RejectRequest) (*DriverResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}
	return s.review(ctx, fleetID, isAdmin, driverID, domainDriver.ProfileRejected, &req.Reason)
}

func (s *Service) review(ctx context.Context, fleetID uuid.UUID, isAdmin bool, driverID uuid.UUID, decision domainDriver.ProfileStatus, reason *string) (*DriverResponse, error) {
	drv, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, mapDriverError(err)
	}
	if drv.OwnerFleetID != fleetID && !isAdmin {
		return nil, appErrors.NewAppError(appErrors.CodeWrongParty, "only the owning fleet may review this profile", nil)
	}
	if drv.ProfileStatus != domainDriver.ProfilePendingConfirmation {
		return nil, appErrors.NewAppError(appErrors.CodeConflict,
			fmt.Sprintf("profile is %s, not pending confirmation", drv.ProfileStatus), domainDriver.ErrInvalidProfileState)
	}

	updated := *drv
	updated.ProfileStatus = decision
	updated.RejectedReason = reason
	if decision == domainDriver.ProfileConfirmed {
		updated.Availability = domainDriver.AvailabilityAvailable
	}

	if err := s.driverRepo.UpdateIf(ctx, drv.ID, drv.Version, &updated); err != nil {
		return nil, mapDriverError(err)
	}

	logger.Info("Driver profile reviewed",
		zap.String("driver_id", drv.ID.String()),
		zap.String("decision", string(decision)),
	)

	template := notification.TemplateDriverConfirmed
	fields := map[string]string{"driver_id": drv.ID.String()}
	if decision == domainDriver.ProfileRejected {
		template = notification.TemplateDriverRejected
		if reason != nil {
			fields["reason"] = *reason
		}
	}
	s.dispatcher.SendDirect(ctx, template, drv.Email, fields)

	return ToDriverResponse(&updated), nil
}

// Compliance evaluates the tri-state color for one driver right now.
func (s *Service) Compliance(ctx context.Context, actorID uuid.UUID, isAdmin bool, driverID uuid.UUID) (*ComplianceResponse, error) {
	drv, err := s.authorized(ctx, actorID, isAdmin, driverID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &ComplianceResponse{
		DriverID:      drv.ID,
		Status:        compliance.Evaluate(drv.Certification, now),
		Certification: drv.Certification,
		EvaluatedAt:   now,
	}, nil
}

// UploadCDLImage stores the license scan and records its URL on the
// profile. The driver or the owning fleet may upload.
func (s *Service) UploadCDLImage(ctx context.Context, actorID uuid.UUID, isAdmin bool, driverID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*CDLImageResponse, error) {
	drv, err := s.authorized(ctx, actorID, isAdmin, driverID)
	if err != nil {
		return nil, err
	}

	ext := path.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}
	objectName := fmt.Sprintf("cdl/%s/%s%s", drv.ID, uuid.NewString(), ext)

	url, err := s.uploader.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	updated := *drv
	updated.CDLImageURL = &url
	if err := s.driverRepo.UpdateIf(ctx, drv.ID, drv.Version, &updated); err != nil {
		return nil, mapDriverError(err)
	}

	logger.Info("CDL image uploaded",
		zap.String("driver_id", drv.ID.String()),
		zap.String("object", objectName),
	)

	return &CDLImageResponse{URL: url}, nil
}

// SetAvailability is the driver's own toggle between available and
// unavailable. The on-trip state belongs to the trip lifecycle and cannot
// be set or cleared by hand.
func (s *Service) SetAvailability(ctx context.Context, accountID, driverID uuid.UUID, req *AvailabilityRequest) (*DriverResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	drv, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, mapDriverError(err)
	}
	if drv.AccountID != accountID {
		return nil, appErrors.NewAppError(appErrors.CodeWrongParty, "only the driver may set their own availability", nil)
	}
	if drv.ProfileStatus != domainDriver.ProfileConfirmed {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "only a confirmed driver can set availability", nil)
	}
	if drv.Availability == domainDriver.AvailabilityOnTrip {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "availability is controlled by the trip while it is underway", nil)
	}

	updated := *drv
	updated.Availability = domainDriver.Availability(req.Availability)
	if err := s.driverRepo.UpdateIf(ctx, drv.ID, drv.Version, &updated); err != nil {
		return nil, mapDriverError(err)
	}

	return ToDriverResponse(&updated), nil
}

// Get returns the profile to its driver, the owning fleet, or an admin.
func (s *Service) Get(ctx context.Context, actorID uuid.UUID, isAdmin bool, driverID uuid.UUID) (*DriverResponse, error) {
	drv, err := s.authorized(ctx, actorID, isAdmin, driverID)
	if err != nil {
		return nil, err
	}
	return ToDriverResponse(drv), nil
}

// ListByFleet returns the fleet's own roster.
func (s *Service) ListByFleet(ctx context.Context, fleetID uuid.UUID) ([]*DriverResponse, error) {
	drivers, err := s.driverRepo.ListByFleet(ctx, fleetID)
	if err != nil {
		return nil, err
	}

	responses := make([]*DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		responses = append(responses, ToDriverResponse(d))
	}
	return responses, nil
}

func (s *Service) authorized(ctx context.Context, actorID uuid.UUID, isAdmin bool, driverID uuid.UUID) (*domainDriver.Driver, error) {
	drv, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, mapDriverError(err)
	}
	if drv.AccountID != actorID && drv.OwnerFleetID != actorID && !isAdmin {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "driver not found", nil)
	}
	return drv, nil
}
