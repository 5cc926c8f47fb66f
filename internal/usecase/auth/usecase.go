package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenType is returned alongside every access token
const TokenType = "bearer"

type Config struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int
}

// AuthUsecase implements signup, login and token verification
type AuthUsecase struct {
	users  UserRepository
	cfg    Config
	secret []byte
	now    func() time.Time
	logger *zap.Logger
}

// NewUsecase creates a new auth use case
func NewUsecase(cfg Config, users UserRepository, logger *zap.Logger) *AuthUsecase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &AuthUsecase{
		users:  users,
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
		now:    time.Now,
		logger: logger,
	}
}

// Signup registers a new active user
func (uc *AuthUsecase) Signup(ctx context.Context, req *entity.SignupRequest) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := uc.users.Create(ctx, entity.User{
		ID:             uuid.New().String(),
		Email:          normalizeEmail(req.Email),
		FullName:       req.FullName,
		HashedPassword: string(hash),
		IsActive:       true,
	})
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "user signed up", zap.String("user_id", user.ID))

	return user, nil
}

// Login checks the credentials and issues an access token
func (uc *AuthUsecase) Login(ctx context.Context, req *entity.LoginRequest) (string, *entity.User, error) {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return "", nil, entity.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return "", nil, entity.ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, entity.ErrInactiveUser
	}

	token, err := uc.issueToken(user)
	if err != nil {
		return "", nil, err
	}

	now := uc.now()
	if err := uc.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		ctxzap.Warn(ctx, "failed to update last login", zap.Error(err), zap.String("user_id", user.ID))
	} else {
		user.LastLogin = &now
	}

	ctxzap.Info(ctx, "user logged in", zap.String("user_id", user.ID))

	return token, user, nil
}

// Authenticate resolves a token to its active user
func (uc *AuthUsecase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := uc.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, entity.ErrInvalidToken
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, entity.ErrInactiveUser
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToUserResponse hides credentials from API responses
func ToUserResponse(u *entity.User) entity.UserResponse {
	return entity.UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		IsActive: u.IsActive,
	}
}
