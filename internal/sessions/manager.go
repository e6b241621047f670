package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ndavydov/auth-sessions/internal/auth"
	"github.com/ndavydov/auth-sessions/internal/config"
	md "github.com/ndavydov/auth-sessions/internal/models"
	"github.com/ndavydov/auth-sessions/internal/repo"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Port interface {
	CreateSession(
		ctx context.Context,
		uid, deviceID uuid.UUID,
		refreshSecret string,
		expiresAt time.Time,
	) (*md.Session, error)
	ValidateAndRotate(
		ctx context.Context,
		uid, deviceID uuid.UUID,
		presentedSecret, newSecret string,
	) (*md.Session, error)
	GetValidSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error)
	DeleteSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error)
	RemoveAllSessionsForUser(ctx context.Context, uid uuid.UUID) ([]*md.Session, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type SessionRepo interface {
	InsertSession(ctx context.Context, s *md.Session) (*md.Session, error)
	GetSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error)
	ListSessionsByUser(ctx context.Context, uid uuid.UUID) ([]*md.Session, error)
	RotateSession(
		ctx context.Context,
		uid, deviceID uuid.UUID,
		oldHash, newHash string,
		now time.Time,
	) (*md.Session, error)
	TouchSession(ctx context.Context, uid, deviceID uuid.UUID, now time.Time) (*md.Session, error)
	DeleteSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error)
	DeleteSessionsByUser(ctx context.Context, uid uuid.UUID) ([]*md.Session, error)
	EvictOldestSessions(ctx context.Context, uid uuid.UUID, keep int) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Manager owns every session invariant: the (user, device) slot, the
// per-user cap with LRU eviction, single-use rotation and read-time expiry.
// It is the only writer to the session store.
type Manager struct {
	repo SessionRepo
	now  func() time.Time
}

func New(repo SessionRepo) *Manager {
	return &Manager{
		repo: repo,
		now:  time.Now,
	}
}

func (m *Manager) CreateSession(
	ctx context.Context,
	uid, deviceID uuid.UUID,
	refreshSecret string,
	expiresAt time.Time,
) (*md.Session, error) {
	const op = "sessions.CreateSession.manager"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	now := m.now()
	res, err := m.repo.InsertSession(
		ctx, &md.Session{
			UserID:     uid,
			DeviceID:   deviceID,
			Token:      auth.HashSecret(refreshSecret),
			CreatedAt:  now,
			LastUsedAt: now,
			ExpiresAt:  expiresAt,
		},
	)
	if err != nil {
		return nil, Wrap(KindCreationFailed, err)
	}

	if err = m.enforceCap(ctx, uid); err != nil {
		zap.L().Warn(
			"session cap enforcement failed",
			zap.String("op", op),
			zap.String("uid", uid.String()),
			zap.String("deviceID", deviceID.String()),
			zap.Error(err),
		)

		return res, errors.Join(ErrLimitExceeded, err)
	}

	return res, nil
}

// enforceCap runs after insertion: while the user holds more than the cap,
// the single least-recently-used session goes first.
func (m *Manager) enforceCap(ctx context.Context, uid uuid.UUID) error {
	all, err := m.repo.ListSessionsByUser(ctx, uid)
	if err != nil {
		return err
	}

	if len(all) <= config.MaxSessionsPerUser {
		return nil
	}

	evicted, err := m.repo.EvictOldestSessions(ctx, uid, config.MaxSessionsPerUser)
	if err != nil {
		return err
	}

	zap.L().Info(
		"evicted sessions over cap",
		zap.String("uid", uid.String()),
		zap.Int64("evicted", evicted),
	)

	return nil
}

func (m *Manager) ValidateAndRotate(
	ctx context.Context,
	uid, deviceID uuid.UUID,
	presentedSecret, newSecret string,
) (*md.Session, error) {
	const op = "sessions.ValidateAndRotate.manager"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := m.repo.RotateSession(
		ctx, uid, deviceID,
		auth.HashSecret(presentedSecret),
		auth.HashSecret(newSecret),
		m.now(),
	)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, Wrap(KindRefreshFailed, m.classifyMiss(ctx, uid, deviceID, presentedSecret))
		}
		return nil, Wrap(KindRefreshFailed, err)
	}

	return res, nil
}

func (m *Manager) GetValidSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error) {
	const op = "sessions.GetValidSession.manager"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := m.repo.TouchSession(ctx, uid, deviceID, m.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, Wrap(KindValidationFailed, m.classifyMiss(ctx, uid, deviceID, ""))
		}
		return nil, Wrap(KindValidationFailed, err)
	}

	return res, nil
}

// classifyMiss turns a zero-row conditional update into the precise
// failure. The conditional statement itself stays the single atomic gate;
// this read only names what the caller lost to.
func (m *Manager) classifyMiss(ctx context.Context, uid, deviceID uuid.UUID, presented string) error {
	s, err := m.repo.GetSession(ctx, uid, deviceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.IsExpired(m.now()) {
		return ErrExpired
	}

	return ErrInvalidToken
}

func (m *Manager) DeleteSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error) {
	const op = "sessions.DeleteSession.manager"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := m.repo.DeleteSession(ctx, uid, deviceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

func (m *Manager) RemoveAllSessionsForUser(ctx context.Context, uid uuid.UUID) ([]*md.Session, error) {
	const op = "sessions.RemoveAllSessionsForUser.manager"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return m.repo.DeleteSessionsByUser(ctx, uid)
}

func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	const op = "sessions.DeleteExpired.manager"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return m.repo.DeleteExpiredSessions(ctx, m.now())
}
