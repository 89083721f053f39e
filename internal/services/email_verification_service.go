package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/dtos"
	"github.com/Maxiflexy/MonieBank/internal/models"
	"github.com/Maxiflexy/MonieBank/internal/repositories"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// EmailVerificationService issues and checks the one-time tokens that
// gate local-provider logins.
type EmailVerificationService interface {
	// SendVerificationEmail stores a fresh token on the user and
	// publishes the verification email event.
	SendVerificationEmail(ctx context.Context, user *models.User) error

	// VerifyEmail marks the owning user verified and clears the
	// verification fields. Returns false for unknown or expired tokens.
	VerifyEmail(ctx context.Context, token string) (bool, error)

	// ResendVerification regenerates the token for an unverified user.
	ResendVerification(ctx context.Context, email string) error
}

type emailVerificationService struct {
	userRepo repositories.UserRepository
	sender   NotificationSender
	cfg      *config.Config
}

func NewEmailVerificationService(
	userRepo repositories.UserRepository,
	sender NotificationSender,
	cfg *config.Config,
) EmailVerificationService {
	return &emailVerificationService{
		userRepo: userRepo,
		sender:   sender,
		cfg:      cfg,
	}
}

func (s *emailVerificationService) SendVerificationEmail(ctx context.Context, user *models.User) error {
	token := uuid.NewString()
	expiry := time.Now().Add(s.cfg.VerificationTokenExpiry)

	user.VerificationToken = token
	user.VerificationExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.FrontendBaseURL, token)
	body := fmt.Sprintf(
		"Dear %s,\n\nPlease verify your email by clicking the link below:\n\n%s\n\n"+
			"The link will expire in %d minutes.\n\nRegards,\nMonieBank Team",
		user.Name, verificationURL, int(s.cfg.VerificationTokenExpiry.Minutes()),
	)

	notification := &dtos.EmailNotification{
		RecipientEmail:   user.Email,
		RecipientName:    user.Name,
		Subject:          "Verify Your Email Address",
		Message:          body,
		NotificationType: "EMAIL_VERIFICATION",
	}
	return s.sender.SendEmailNotification(ctx, notification)
}

func (s *emailVerificationService) VerifyEmail(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}

	if user.VerificationExpiry == nil || user.VerificationExpiry.Before(time.Now()) {
		return false, nil
	}

	user.EmailVerified = true
	user.VerificationToken = ""
	user.VerificationExpiry = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return false, err
	}

	utils.Logger.Infof("Email verified for user %s", user.ID)
	return true, nil
}

func (s *emailVerificationService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.ErrUserNotFound
	}
	if user.EmailVerified {
		return utils.ErrEmailAlreadyVerified
	}
	return s.SendVerificationEmail(ctx, user)
}
