package ctrl

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ndavydov/auth-sessions/internal/auth"
	"github.com/ndavydov/auth-sessions/internal/auth/jwt"
	md "github.com/ndavydov/auth-sessions/internal/models"
	"github.com/ndavydov/auth-sessions/internal/sessions"
)

type AppCtrl interface {
	authCtrl
	userCtrl
}

type AppRepo interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error)
	GetUserByEmail(ctx context.Context, email string) (*md.User, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type CacheService interface {
	io.Closer
	GetToStruct(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, t time.Duration, key string, val any)
	Delete(ctx context.Context, key string)
	InvalidateKeysByPattern(ctx context.Context, pattern string)
}

type EmailService interface {
	SendWelcome(email, name string) error
}

type Controller struct {
	au     jwt.Port
	hasher auth.PasswordHasher
	sm     sessions.Port
	repo   AppRepo
	cache  CacheService
	email  EmailService
}

func New(
	au jwt.Port,
	hasher auth.PasswordHasher,
	sm sessions.Port,
	repo AppRepo,
	cache CacheService,
	email EmailService,
) *Controller {
	return &Controller{
		au:     au,
		hasher: hasher,
		sm:     sm,
		repo:   repo,
		cache:  cache,
		email:  email,
	}
}
