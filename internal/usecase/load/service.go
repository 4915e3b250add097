package load

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainLoad "fleetlease/internal/domain/load"
	"fleetlease/internal/logger"
	appErrors "fleetlease/pkg/errors"
	"fleetlease/pkg/utils"
)

// Service implements load posting and marketplace browsing. Accepting a
// match against a load is the lease service's job, since it drafts the
// agreement.
type Service struct {
	loadRepo domainLoad.Repository
}

func NewService(loadRepo domainLoad.Repository) *Service {
	return &Service{loadRepo: loadRepo}
}

// Create posts a load to the marketplace for other fleets to accept.
func (s *Service) Create(ctx context.Context, fleetID uuid.UUID, req *CreateRequest) (*LoadResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}
	if req.PickupDate != nil && req.DeliveryDate != nil && req.DeliveryDate.Before(*req.PickupDate) {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "delivery date precedes pickup date", nil)
	}
	if req.PickupDate != nil && req.PickupDate.Before(time.Now().Truncate(24*time.Hour)) {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "pickup date is in the past", nil)
	}

	l := &domainLoad.Load{
		FleetID:          fleetID,
		Origin:           utils.SanitizeString(req.Origin),
		Destination:      utils.SanitizeString(req.Destination),
		CargoDescription: utils.SanitizeString(req.CargoDescription),
		WeightLbs:        req.WeightLbs,
		OfferedCents:     req.OfferedCents,
		PickupDate:       req.PickupDate,
		DeliveryDate:     req.DeliveryDate,
		Status:           domainLoad.StatusOpen,
	}

	if err := s.loadRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	logger.Info("Load posted",
		zap.String("load_id", l.ID.String()),
		zap.String("fleet_id", fleetID.String()),
		zap.Int64("offered_cents", l.OfferedCents),
	)

	return ToLoadResponse(l), nil
}

// Marketplace lists open loads for any authenticated fleet to browse.
func (s *Service) Marketplace(ctx context.Context, req *MarketplaceRequest) (*MarketplaceResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	loads, total, err := s.loadRepo.ListOpen(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]*LoadResponse, 0, len(loads))
	for _, l := range loads {
		responses = append(responses, ToLoadResponse(l))
	}

	return &MarketplaceResponse{Loads: responses, Total: total, Page: page, PageSize: pageSize}, nil
}

// ListMine returns the caller's own posted loads, whatever their status.
func (s *Service) ListMine(ctx context.Context, fleetID uuid.UUID) ([]*LoadResponse, error) {
	loads, err := s.loadRepo.ListByFleet(ctx, fleetID)
	if err != nil {
		return nil, err
	}

	responses := make([]*LoadResponse, 0, len(loads))
	for _, l := range loads {
		responses = append(responses, ToLoadResponse(l))
	}
	return responses, nil
}

// Get returns one load. Open loads are visible to any fleet; matched and
// closed loads only to their poster.
func (s *Service) Get(ctx context.Context, fleetID uuid.UUID, isAdmin bool, id uuid.UUID) (*LoadResponse, error) {
	l, err := s.loadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainLoad.ErrLoadNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "load not found", err)
		}
		return nil, err
	}
	if l.Status != domainLoad.StatusOpen && l.FleetID != fleetID && !isAdmin {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "load not found", nil)
	}
	return ToLoadResponse(l), nil
}

// Close withdraws a still-open load from the marketplace.
func (s *Service) Close(ctx context.Context, fleetID uuid.UUID, id uuid.UUID) (*LoadResponse, error) {
	l, err := s.loadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainLoad.ErrLoadNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "load not found", err)
		}
		return nil, err
	}
	if l.FleetID != fleetID {
		return nil, appErrors.NewAppError(appErrors.CodeWrongParty, "only the posting fleet may close its load", nil)
	}

	if err := s.loadRepo.UpdateStatus(ctx, id, domainLoad.StatusOpen, domainLoad.StatusClosed); err != nil {
		if errors.Is(err, domainLoad.ErrLoadNotOpen) {
			return nil, appErrors.NewAppError(appErrors.CodeConflict, "the load is no longer open", err)
		}
		return nil, err
	}

	l.Status = domainLoad.StatusClosed
	return ToLoadResponse(l), nil
}
