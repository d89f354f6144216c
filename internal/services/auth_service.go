package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"carmarket-backend/internal/database"
	"carmarket-backend/internal/models"
)

const minPasswordLength = 8

// AuthService handles registration and login. Both flows end with a signed
// JWT, so a fresh registration is immediately logged in.
type AuthService struct {
	store     *database.Store
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.SugaredLogger
}

func NewAuthService(store *database.Store, jwtSecret string, tokenTTL time.Duration, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	verr := newValidationError()

	username := strings.TrimSpace(req.Username)
	if username == "" {
		verr.Fields["username"] = "username is required"
	}
	if req.Email == "" {
		verr.Fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		verr.Fields["email"] = "email is not a valid address"
	}
	if len(req.Password) < minPasswordLength {
		verr.Fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	if len(verr.Fields) > 0 {
		return nil, "", verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    nullString(req.FirstName),
		LastName:     nullString(req.LastName),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if registerConflict(err, verr) {
			return nil, "", verr
		}
		return nil, "", err
	}

	token, err := s.mintToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Infow("user registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.mintToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) mintToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// registerConflict attributes a unique-constraint conflict to the field
// that caused it. Returns false for anything that is not a conflict.
func registerConflict(err error, verr *ValidationError) bool {
	switch {
	case errors.Is(err, database.ErrUsernameTaken):
		verr.Fields["username"] = "username is already taken"
	case errors.Is(err, database.ErrEmailTaken):
		verr.Fields["email"] = "email is already registered"
	default:
		return false
	}
	return true
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
