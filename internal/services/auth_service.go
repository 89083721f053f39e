package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/models"
	"github.com/Maxiflexy/MonieBank/internal/repositories"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// ---------------------------------------------------------------------
// AuthService interface
// ---------------------------------------------------------------------

// AuthResult bundles the authenticated user with their fresh pair.
type AuthResult struct {
	User *models.User
	Pair *TokenPair
}

// AuthService orchestrates the session protocol: login, refresh
// rotation, and logout, on top of TokenService.
type AuthService interface {
	// Signup creates a LOCAL-provider user and kicks off email
	// verification. No tokens are issued until the email is verified.
	Signup(ctx context.Context, name, email, password string) (*models.User, error)

	// Login authenticates local credentials. Unverified local accounts
	// are rejected before any token is issued.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// GoogleLogin verifies the provider token and signs the user in,
	// creating the account on first sight. Accounts that signed up
	// locally cannot be taken over via the provider.
	GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error)

	// Refresh rotates the pair: the presented refresh token is
	// consumed (one-shot) before a new pair is issued. A replayed
	// refresh token fails with ErrTokenRevoked.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// Logout revokes whatever tokens were presented. It never fails
	// the caller: invalid or missing tokens still log out cleanly, and
	// internal errors are absorbed and logged.
	Logout(ctx context.Context, accessToken, refreshToken string, allDevices bool)

	// CurrentUser resolves the profile behind a valid access token.
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)

	// GetUserByID is used by internal services for identity lookups.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateProfile mutates the profile behind a valid access token.
	UpdateProfile(ctx context.Context, accessToken, name, contactAddress string) (*models.User, error)

	// ValidateAccessToken is the side-effect-free check consumed by
	// the API gateway's blacklist query.
	ValidateAccessToken(ctx context.Context, tokenValue string) error
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type authService struct {
	userRepo     repositories.UserRepository
	tokenService TokenService
	verification EmailVerificationService
	verifier     IdentityVerifier
	cfg          *config.Config
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokenService TokenService,
	verification EmailVerificationService,
	verifier IdentityVerifier,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenService: tokenService,
		verification: verification,
		verifier:     verifier,
		cfg:          cfg,
	}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.ErrEmailExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Provider:      models.AuthProviderLocal,
		EmailVerified: false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.verification.SendVerificationEmail(ctx, user); err != nil {
		// The account is created; delivery is retried via resend.
		utils.Logger.WithError(err).Errorf("Failed to send verification email for %s", user.ID)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}

	// The verification gate sits before credential checking and token
	// issuance: an unverified local account never receives tokens.
	if user.Provider == models.AuthProviderLocal && !user.EmailVerified {
		return nil, utils.ErrEmailNotVerified
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, utils.ErrBadCredentials
	}

	pair, err := s.tokenService.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Pair: pair}, nil
}

func (s *authService) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	identity, err := s.verifier.VerifyIdentityToken(ctx, idToken)
	if err != nil {
		return nil, utils.ErrBadCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			ID:            uuid.New(),
			Name:          identity.Name,
			Email:         identity.Email,
			Provider:      models.AuthProviderGoogle,
			ProviderID:    identity.Subject,
			ImageURL:      identity.PictureURL,
			EmailVerified: true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if user.Provider != models.AuthProviderGoogle {
		return nil, utils.ErrProviderConflict
	}

	pair, err := s.tokenService.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Pair: pair}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenService.Validate(ctx, refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}

	// Consume before issue: the presented refresh token must never
	// survive a successful rotation, and of two concurrent rotations
	// only the one that flipped the blacklist flag proceeds.
	if err := s.tokenService.Consume(ctx, refreshToken); err != nil {
		return nil, err
	}

	pair, err := s.tokenService.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Pair: pair}, nil
}

func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string, allDevices bool) {
	if accessToken == "" {
		return
	}

	claims, err := s.tokenService.Validate(ctx, accessToken, models.TokenTypeAccess)
	if err != nil {
		// Nothing to revoke for an invalid or already-dead token; the
		// client still ends up logged out.
		utils.Logger.WithError(err).Debug("Logout presented an invalid access token")
		return
	}

	if err := s.tokenService.Revoke(ctx, accessToken); err != nil {
		utils.Logger.WithError(err).Error("Failed to revoke access token during logout")
	}
	if refreshToken != "" {
		if err := s.tokenService.Revoke(ctx, refreshToken); err != nil {
			utils.Logger.WithError(err).Error("Failed to revoke refresh token during logout")
		}
	}
	if allDevices {
		if err := s.tokenService.RevokeAllForUser(ctx, claims.UserID); err != nil {
			utils.Logger.WithError(err).Error("Failed to revoke all user tokens during logout")
		}
	}
}

func (s *authService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokenService.Validate(ctx, accessToken, models.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}
	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *authService) UpdateProfile(ctx context.Context, accessToken, name, contactAddress string) (*models.User, error) {
	user, err := s.CurrentUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if contactAddress != "" {
		user.ContactAddress = contactAddress
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ValidateAccessToken(ctx context.Context, tokenValue string) error {
	_, err := s.tokenService.Validate(ctx, tokenValue, "")
	return err
}
