package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetlease/internal/config"
	domainAccount "fleetlease/internal/domain/account"
	"fleetlease/internal/logger"
	appErrors "fleetlease/pkg/errors"
	"fleetlease/pkg/utils"
)

// Service implements account registration, login and profile use cases.
type Service struct {
	accountRepo domainAccount.Repository
	jwt         *config.JWTConfig
}

func NewService(accountRepo domainAccount.Repository, jwt *config.JWTConfig) *Service {
	return &Service{accountRepo: accountRepo, jwt: jwt}
}

// Register creates a fleet account with its legal identity. The legal
// fields are what later gets frozen into agreement snapshots, so they are
// required up front.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, err.Error(), err)
	}

	email, err := utils.ValidateAndSanitizeEmail(req.Email)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid email", err)
	}

	if _, err := s.accountRepo.GetByEmail(ctx, email); err == nil {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "an account with this email already exists", appErrors.ErrAccountAlreadyExists)
	} else if !errors.Is(err, domainAccount.ErrAccountNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc := &domainAccount.Account{
		Email:          email,
		PasswordHashed: hashed,
		Role:           domainAccount.RoleFleet,
		FullName:       utils.SanitizeString(req.FullName),
		Phone:          req.Phone,
		CompanyName:    &req.CompanyName,
		LegalName:      &req.LegalName,
		Address:        &req.Address,
		USDOTNumber:    &req.USDOTNumber,
		IsActive:       true,
	}
	if req.MCNumber != "" {
		acc.MCNumber = &req.MCNumber
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		if errors.Is(err, domainAccount.ErrAccountAlreadyExists) {
			return nil, appErrors.NewAppError(appErrors.CodeConflict, "an account with this email already exists", err)
		}
		return nil, err
	}

	token, err := utils.GenerateToken(acc.ID, acc.Email, acc.Role, s.jwt.Secret, s.jwt.ExpiryHours)
	if err != nil {
		return nil, err
	}

	logger.Info("Fleet account registered",
		zap.String("account_id", acc.ID.String()),
		zap.String("company", req.CompanyName),
	)

	return &AuthResponse{Account: ToAccountResponse(acc), AccessToken: token}, nil
}

// Login verifies credentials and issues an access token. Missing accounts
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	acc, err := s.accountRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeUnauthenticated, "invalid email or password", appErrors.ErrInvalidCredentials)
		}
		return nil, err
	}

	if !utils.CheckPassword(acc.PasswordHashed, req.Password) {
		return nil, appErrors.NewAppError(appErrors.CodeUnauthenticated, "invalid email or password", appErrors.ErrInvalidCredentials)
	}
	if !acc.IsActive {
		return nil, appErrors.NewAppError(appErrors.CodeForbidden, "account is inactive", appErrors.ErrAccountInactive)
	}

	token, err := utils.GenerateToken(acc.ID, acc.Email, acc.Role, s.jwt.Secret, s.jwt.ExpiryHours)
	if err != nil {
		return nil, err
	}

	logger.Info("Account logged in", zap.String("account_id", acc.ID.String()))

	return &AuthResponse{Account: ToAccountResponse(acc), AccessToken: token}, nil
}

// GetProfile returns the caller's own account.
func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "account not found", err)
		}
		return nil, err
	}
	return ToAccountResponse(acc), nil
}

// UpdateProfile patches the caller's own account. Changing legal fields
// never touches existing agreements; their snapshots are frozen.
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, req *UpdateProfileRequest) (*AccountResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "invalid input", err)
	}

	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "account not found", err)
		}
		return nil, err
	}

	if req.FullName != nil {
		acc.FullName = utils.SanitizeString(*req.FullName)
	}
	if req.Phone != nil {
		acc.Phone = req.Phone
	}
	if req.CompanyName != nil {
		acc.CompanyName = req.CompanyName
	}
	if req.LegalName != nil {
		acc.LegalName = req.LegalName
	}
	if req.Address != nil {
		acc.Address = req.Address
	}
	if req.USDOTNumber != nil {
		acc.USDOTNumber = req.USDOTNumber
	}
	if req.MCNumber != nil {
		acc.MCNumber = req.MCNumber
	}

	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}

	return ToAccountResponse(acc), nil
}
