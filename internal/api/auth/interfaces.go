package auth

import (
	"context"

	"github.com/futig/lawgpt-backend/internal/entity"
)

type AuthUsecase interface {
	Signup(ctx context.Context, req *entity.SignupRequest) (*entity.User, error)
	Login(ctx context.Context, req *entity.LoginRequest) (string, *entity.User, error)
}
