package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type sessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	FindByID(ctx context.Context, id string) (*models.UserSession, error)
	Revoke(ctx context.Context, id string, revokedAt time.Time) error
	RevokeByUser(ctx context.Context, userID int64, revokedAt time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// AuthService authenticates users and manages the session lifecycle.
type AuthService struct {
	users     authUserRepository
	sessions  sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time

	decoyOnce sync.Once
	decoyHash []byte
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiry <= 0 {
		config.Expiry = 12 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate verifies credentials and opens a session. Unknown users and wrong
// passwords yield the same error.
func (s *AuthService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.compareDecoy(req.Password)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
		}
		return nil, storeError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	issuedAt := s.now()
	session := &models.UserSession{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(s.config.Expiry),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, storeError(err, "failed to open session")
	}

	token, err := s.signToken(user, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("user logged in", zap.String("username", user.Username), zap.String("role", string(user.Role)))

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Expiry.Seconds()),
		ExpiresAt:   session.ExpiresAt,
		User: models.UserInfo{
			ID:         user.ID,
			Username:   user.Username,
			Role:       user.Role,
			Department: user.Department(),
		},
	}, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if session == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, session.ID, s.now()); err != nil {
		return storeError(err, "failed to end session")
	}
	s.logger.Info("user logged out", zap.String("username", session.Username))
	return nil
}

// ValidateToken parses an access token and returns the live session it refers to.
// Role and department are re-read from the user row so revoked or deleted accounts lose access.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	stored, err := s.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, storeError(err, "failed to load session")
	}
	if stored.UserID != claims.UserID || !stored.Active(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or revoked")
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, storeError(err, "failed to load user")
	}

	return &models.Session{
		ID:         stored.ID,
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		Department: user.Department(),
		ExpiresAt:  stored.ExpiresAt,
	}, nil
}

func (s *AuthService) signToken(user *models.User, session *models.UserSession) (string, error) {
	claims := &models.JWTClaims{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		Department: user.Department(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}

// compareDecoy runs a throwaway bcrypt comparison for unknown usernames.
func (s *AuthService) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.decoyHash, []byte(password))
}
