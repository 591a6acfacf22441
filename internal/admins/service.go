package admins

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// MinPasswordLength applies to passwords set through the service.
const MinPasswordLength = 6

// Service encapsulates admin credential logic
type Service struct {
	repo Repository
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(r Repository) *Service {
	return &Service{repo: r, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", models.NewValidationError(fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Authenticate returns the admin whose stored hash matches password.
// Unknown usernames still pay for a bcrypt comparison.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	a, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.dummyOnce.Do(func() {
				s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
			})
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// Create stores a new admin with a bcrypt hash of password.
func (s *Service) Create(ctx context.Context, username, password string) (*models.Admin, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required.")
	}
	h, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, username, h)
}

// EnsureSeed creates the admin when no admin with that username exists.
func (s *Service) EnsureSeed(ctx context.Context, username, password string) (bool, error) {
	_, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}
	if _, err := s.Create(ctx, username, password); err != nil {
		if errors.Is(err, ErrExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetPassword replaces an existing admin's password.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	h, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, normalizeUsername(username), h)
}

func (s *Service) List(ctx context.Context) ([]*models.Admin, error) {
	return s.repo.List(ctx)
}
