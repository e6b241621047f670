package ctrl

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ndavydov/auth-sessions/internal/auth"
	"github.com/ndavydov/auth-sessions/internal/auth/jwt"
	"github.com/ndavydov/auth-sessions/internal/dto"
	md "github.com/ndavydov/auth-sessions/internal/models"
	"github.com/ndavydov/auth-sessions/internal/repo"
	"github.com/ndavydov/auth-sessions/internal/sessions"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type authCtrl interface {
	SignUp(ctx context.Context, d *dto.DeviceRequest, req *dto.SignUpRequest) (*md.User, jwt.Pair, error)
	SignIn(ctx context.Context, d *dto.DeviceRequest, req *dto.EmailAndPasswordRequest) (*md.User, jwt.Pair, error)
	Refresh(ctx context.Context, d *dto.DeviceRequest, req *dto.RefreshRequest) (*md.User, jwt.Pair, error)
	SignOut(ctx context.Context, uid, deviceID uuid.UUID) error
	ValidateAccessToken(ctx context.Context, uid, deviceID uuid.UUID) (*md.User, error)
}

func (c *Controller) SignUp(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.SignUpRequest,
) (*md.User, jwt.Pair, error) {
	const op = "auth.SignUp.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := validateDeviceID(d); err != nil {
		return nil, jwt.Pair{}, err
	}

	hashed, err := c.hasher.Hash(req.Password)
	if err != nil {
		return nil, jwt.Pair{}, Wrap(KindSignupFailed, err)
	}

	uid, err := c.repo.CreateUser(ctx, req.Name, req.Email, hashed)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, jwt.Pair{}, ErrAlreadyExists
		}
		return nil, jwt.Pair{}, Wrap(KindSignupFailed, err)
	}

	pair, err := c.issueSession(ctx, uid, d.ID)
	if err != nil {
		// A user with no way to authenticate is worse than no user at all:
		// roll the row back before surfacing the failure.
		if delErr := c.repo.DeleteUser(ctx, uid); delErr != nil {
			zap.L().Error(
				"failed to roll back user after session failure",
				zap.String("op", op),
				zap.String("uid", uid.String()),
				zap.Error(delErr),
			)
		}

		return nil, jwt.Pair{}, Wrap(KindSignupFailed, err)
	}

	user, err := c.repo.GetUserByID(ctx, uid)
	if err != nil {
		return nil, jwt.Pair{}, Wrap(KindSignupFailed, err)
	}

	if c.email != nil {
		go func() {
			if err := c.email.SendWelcome(user.Email, user.Name); err != nil {
				zap.L().Warn("failed to send welcome email", zap.String("uid", uid.String()))
			}
		}()
	}

	return user.Sanitized(), pair, nil
}

func (c *Controller) SignIn(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.EmailAndPasswordRequest,
) (*md.User, jwt.Pair, error) {
	const op = "auth.SignIn.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := validateDeviceID(d); err != nil {
		return nil, jwt.Pair{}, err
	}

	user, err := c.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, jwt.Pair{}, ErrNotFound
		}
		return nil, jwt.Pair{}, Wrap(KindSigninFailed, err)
	}

	if err = c.hasher.ComparePasswords([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, jwt.Pair{}, auth.ErrInvalidCredentials
	}

	pair, err := c.issueSession(ctx, user.ID, d.ID)
	if err != nil {
		return nil, jwt.Pair{}, Wrap(KindSigninFailed, err)
	}

	return user.Sanitized(), pair, nil
}

func (c *Controller) Refresh(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.RefreshRequest,
) (*md.User, jwt.Pair, error) {
	const op = "auth.Refresh.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	// Device id format is checked before any store round trip.
	if err := validateDeviceID(d); err != nil {
		return nil, jwt.Pair{}, err
	}

	claims, err := c.au.ParseClaims(ctx, req.Refresh)
	if err != nil {
		return nil, jwt.Pair{}, Wrap(KindAuthenticationFailed, err)
	}

	pair, err := c.au.GenPair(ctx, claims.UID)
	if err != nil {
		return nil, jwt.Pair{}, Wrap(KindTokenGenerationFailed, err)
	}

	// The signature was already verified above; this additionally rotates
	// the store-side secret, so presenting the same token twice fails.
	_, err = c.sm.ValidateAndRotate(ctx, claims.UID, d.ID, claims.Secret, pair.Secret)
	if err != nil {
		zap.L().Info(
			"refresh token rejected",
			zap.String("op", op),
			zap.String("uid", claims.UID.String()),
			zap.String("deviceID", d.ID.String()),
			zap.Error(err),
		)

		return nil, jwt.Pair{}, Wrap(KindAuthenticationFailed, err)
	}

	user, err := c.repo.GetUserByID(ctx, claims.UID)
	if err != nil {
		return nil, jwt.Pair{}, Wrap(KindAuthenticationFailed, err)
	}

	return user.Sanitized(), pair, nil
}

func (c *Controller) SignOut(ctx context.Context, uid, deviceID uuid.UUID) error {
	const op = "auth.SignOut.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	// Signout against a missing session is a caller error, not a no-op:
	// the caller should learn nothing was actually terminated.
	if _, err := c.sm.DeleteSession(ctx, uid, deviceID); err != nil {
		return Wrap(KindSignoutFailed, err)
	}

	return nil
}

// ValidateAccessToken authorizes an access-token-bearing request. Every
// failure collapses into one authentication kind so callers cannot tell a
// deleted user from an expired session from a store outage.
func (c *Controller) ValidateAccessToken(ctx context.Context, uid, deviceID uuid.UUID) (*md.User, error) {
	const op = "auth.ValidateAccessToken.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	user, err := c.GetUserByID(ctx, uid)
	if err != nil {
		zap.L().Debug(
			"failed to resolve user",
			zap.String("op", op),
			zap.String("uid", uid.String()),
			zap.String("deviceID", deviceID.String()),
			zap.Error(err),
		)

		return nil, Wrap(KindAuthenticationFailed, err)
	}

	if _, err = c.sm.GetValidSession(ctx, uid, deviceID); err != nil {
		zap.L().Debug(
			"failed to validate session",
			zap.String("op", op),
			zap.String("uid", uid.String()),
			zap.String("deviceID", deviceID.String()),
			zap.Error(err),
		)

		return nil, Wrap(KindAuthenticationFailed, err)
	}

	return user.Sanitized(), nil
}

// issueSession mints a token pair and claims the (user, device) session
// slot. Cap-enforcement failures are warnings and never fail the issue.
func (c *Controller) issueSession(ctx context.Context, uid, deviceID uuid.UUID) (jwt.Pair, error) {
	const op = "auth.issueSession.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	pair, err := c.au.GenPair(ctx, uid)
	if err != nil {
		return jwt.Pair{}, Wrap(KindTokenGenerationFailed, err)
	}

	_, err = c.sm.CreateSession(ctx, uid, deviceID, pair.Secret, c.au.GetRefreshTime())
	if err != nil {
		if errors.Is(err, sessions.ErrLimitExceeded) {
			zap.L().Warn(
				"session cap cleanup failed, session still created",
				zap.String("op", op),
				zap.String("uid", uid.String()),
				zap.Error(err),
			)

			return pair, nil
		}

		return jwt.Pair{}, err
	}

	return pair, nil
}

func validateDeviceID(d *dto.DeviceRequest) error {
	if d == nil || d.ID == uuid.Nil || d.ID.Version() != 4 {
		return ErrDeviceIDRequired
	}
	return nil
}
