package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/auth"
	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

// Auth errors mapped to HTTP codes by the handler layer.
var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("this account has been suspended")
)

// Session holds a freshly signed token alongside its authenticated user.
type Session struct {
	Token string
	User  dto.UserResponse
}

// AuthService handles registration and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (Session, error)
	Login(ctx context.Context, payload dto.LoginRequest) (Session, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	sessions  *auth.SessionStore
	secret    string
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAuthService constructs an auth service. The secret signs session tokens
// and must match the one the session middleware verifies with.
func NewAuthService(users repository.UserRepository, sessions *auth.SessionStore, secret string, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		secret:    secret,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (Session, error) {
	if err := s.validator.Struct(payload); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(s.sanitizer.Sanitize(payload.Name)),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("account created")

	return s.openSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (Session, error) {
	if err := s.validator.Struct(payload); err != nil {
		return Session{}, err
	}

	user, err := s.users.FindByEmail(ctx, payload.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Burn a comparison anyway so the miss is not timing-observable.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMye"), []byte(payload.Password))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if user.IsSuspended {
		return Session{}, ErrAccountSuspended
	}

	return s.openSession(ctx, user)
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) openSession(ctx context.Context, user models.User) (Session, error) {
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}

	token, err := auth.SignToken(s.secret, user.ID, sessionID, s.sessions.TTL())
	if err != nil {
		return Session{}, err
	}

	return Session{Token: token, User: dto.NewUserResponse(user)}, nil
}
