package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/dtos"
	"github.com/Maxiflexy/MonieBank/internal/models"
)

// ---------------------------------------------------------------------
// In-memory repositories for service tests
// ---------------------------------------------------------------------

type fakeTokenRepo struct {
	mu          sync.Mutex
	rows        map[string]*models.Token
	createErr   error
	pairInserts int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]*models.Token)}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *models.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, dup := r.rows[token.TokenValue]; dup {
		return errors.New("duplicate key value violates unique constraint")
	}
	cp := *token
	r.rows[token.TokenValue] = &cp
	return nil
}

// CreatePair mirrors the transactional insert: either both rows land
// or neither does.
func (r *fakeTokenRepo) CreatePair(_ context.Context, access, refresh *models.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairInserts++
	if r.createErr != nil {
		return r.createErr
	}
	for _, token := range []*models.Token{access, refresh} {
		if _, dup := r.rows[token.TokenValue]; dup {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	for _, token := range []*models.Token{access, refresh} {
		cp := *token
		r.rows[token.TokenValue] = &cp
	}
	return nil
}

func (r *fakeTokenRepo) GetByValue(_ context.Context, tokenValue string) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[tokenValue]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *fakeTokenRepo) IsBlacklisted(_ context.Context, tokenValue string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[tokenValue]
	return ok && row.IsBlacklisted, nil
}

func (r *fakeTokenRepo) Blacklist(_ context.Context, tokenValue string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[tokenValue]
	if !ok || row.IsBlacklisted {
		return false, nil
	}
	row.IsBlacklisted = true
	return true, nil
}

func (r *fakeTokenRepo) BlacklistAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID {
			row.IsBlacklisted = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for value, row := range r.rows {
		if row.ExpiryDate.Before(now) {
			delete(r.rows, value)
		}
	}
	return nil
}

func (r *fakeTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("user does not exist")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByVerificationToken(_ context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if token != "" && u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

// ---------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------

type fakeNotificationSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeNotificationSender) SendEmailNotification(_ context.Context, n *dtos.EmailNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n.RecipientEmail)
	return nil
}

func (s *fakeNotificationSender) Close() error { return nil }

type fakeIdentityVerifier struct {
	identity *VerifiedIdentity
	err      error
}

func (v *fakeIdentityVerifier) VerifyIdentityToken(context.Context, string) (*VerifiedIdentity, error) {
	return v.identity, v.err
}

// ---------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------

func testConfig() *config.Config {
	return &config.Config{
		TokenSecret:             []byte("0123456789abcdef0123456789abcdef"),
		AccessTokenExpiry:       15 * time.Minute,
		RefreshTokenExpiry:      7 * 24 * time.Hour,
		VerificationTokenExpiry: 30 * time.Minute,
		FrontendBaseURL:         "http://localhost:3000",
	}
}

func testUser() *models.User {
	return &models.User{
		ID:            uuid.New(),
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		Provider:      models.AuthProviderLocal,
		EmailVerified: true,
	}
}
