package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/pkg/grader"
)

// ErrLockedOut indicates too many consecutive failed logins for an account.
// The lockout is client-enforced; the grading service keeps its own counters
// (or none) independently.
var ErrLockedOut = errors.New("too many failed login attempts")

// GraderAuth is the slice of the grading client the auth service needs.
type GraderAuth interface {
	Login(ctx context.Context, email, password string) (grader.LoginResult, error)
}

// AuthService proxies logins to the grading service and enforces the
// client-side lockout policy.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	grader    GraderAuth
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger

	maxFails int
	lockout  time.Duration
	now      func() time.Time

	mu          sync.Mutex
	fails       map[string]int
	lockedUntil map[string]time.Time
}

// NewAuthService constructs the auth service. maxFails consecutive failures
// lock the account out of this client for the lockout duration.
func NewAuthService(graderClient GraderAuth, validate *validator.Validate, maxFails int, lockout time.Duration, logger zerolog.Logger) AuthService {
	if maxFails <= 0 {
		maxFails = 5
	}
	if lockout <= 0 {
		lockout = 30 * time.Second
	}

	return &authService{
		grader:      graderClient,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "auth_service").Logger(),
		maxFails:    maxFails,
		lockout:     lockout,
		now:         time.Now,
		fails:       make(map[string]int),
		lockedUntil: make(map[string]time.Time),
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	if s.isLocked(payload.Email) {
		return dto.LoginResponse{}, ErrLockedOut
	}

	result, err := s.grader.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		var apiErr *grader.APIError
		if errors.As(err, &apiErr) {
			apiErr.Detail = s.sanitizer.Sanitize(apiErr.Detail)
			s.recordFailure(payload.Email)
		}
		s.logger.Warn().Str("email", payload.Email).Err(err).Msg("login failed")
		return dto.LoginResponse{}, err
	}

	s.clearFailures(payload.Email)

	return dto.LoginResponse{
		AccessToken: result.AccessToken,
		Role:        result.Role,
		UserID:      result.UserID,
		Email:       result.Email,
		Name:        result.Name,
	}, nil
}

func (s *authService) isLocked(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.lockedUntil[email]
	if !ok {
		return false
	}
	if s.now().After(until) {
		delete(s.lockedUntil, email)
		delete(s.fails, email)
		return false
	}
	return true
}

func (s *authService) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fails[email]++
	if s.fails[email] >= s.maxFails {
		s.lockedUntil[email] = s.now().Add(s.lockout)
	}
}

func (s *authService) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.fails, email)
	delete(s.lockedUntil, email)
}
