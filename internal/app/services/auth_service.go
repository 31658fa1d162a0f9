package services

import (
	"context"
	"time"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
	"github.com/lsa-mis/student-visit-api/internal/pkg/auth"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

// AuthService handles registration, login and token refresh
type AuthService struct {
	userRepo   *repositories.UserRepository
	tokenRepo  *repositories.TokenRepository
	jwtService *auth.JWTService
	refreshExp time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.TokenRepository,
	jwtService *auth.JWTService,
	refreshExp time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		refreshExp: refreshExp,
	}
}

// Register creates a student account. Admin accounts are provisioned through
// seeding or the super-admin surface, never through self-registration.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleType:  models.RoleStudent,
		IsActive:  true,
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("userId", created.ID).Str("email", created.Email).Msg("User registered")
	return created, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			// Do not reveal whether the account exists
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to update last login")
	}

	return tokens, user, nil
}

// RefreshToken rotates a refresh token into a fresh token pair. The presented
// token is single-use.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, err := s.tokenRepo.GetUserIDByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrTokenInvalid
	}

	if err := s.tokenRepo.DeleteToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh token the user holds
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.tokenRepo.DeleteUserTokens(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.refreshExp)
	if err := s.tokenRepo.StoreRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
		TokenType:        "Bearer",
	}, nil
}
