package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	md "github.com/ndavydov/auth-sessions/internal/models"
	"github.com/ndavydov/auth-sessions/internal/repo"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// InsertSession claims the (user, device) slot: an existing session for the
// same pair is removed inside the same transaction, so the new row always
// starts clean. Two concurrent inserts for one slot race on the composite
// primary key; the loser gets repo.ErrAlreadyExists and may retry.
func (r *Repository) InsertSession(ctx context.Context, s *md.Session) (*md.Session, error) {
	const op = "sessions.InsertSession.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			zap.L().Debug("failed to rollback tx", zap.String("op", op), zap.Error(err))
		}
	}()

	if _, err = tx.ExecContext(ctx, sessionDeleteSlotQ, s.UserID, s.DeviceID); err != nil {
		return nil, err
	}

	res := &md.Session{}
	err = tx.QueryRowxContext(
		ctx, sessionInsertQ,
		s.UserID, s.DeviceID, s.Token, s.CreatedAt, s.ExpiresAt,
	).StructScan(res)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repo.ErrAlreadyExists
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, repo.ErrAlreadyExists
		}
		return nil, err
	}

	return res, nil
}

func (r *Repository) GetSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error) {
	const op = "sessions.GetSession.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.Session{}
	err := r.conn.QueryRowxContext(ctx, sessionGetQ, uid, deviceID).StructScan(res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

func (r *Repository) ListSessionsByUser(ctx context.Context, uid uuid.UUID) ([]*md.Session, error) {
	const op = "sessions.ListSessionsByUser.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	rows, err := r.conn.QueryxContext(ctx, sessionListByUserQ, uid)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Debug("failed to close rows", zap.String("op", op), zap.Error(err))
		}
	}()

	res := make([]*md.Session, 0, 8)
	for rows.Next() {
		s := &md.Session{}
		if err = rows.StructScan(s); err != nil {
			return nil, err
		}
		res = append(res, s)
	}

	return res, rows.Err()
}

// RotateSession swaps the stored secret hash in a single conditional update.
// The WHERE clause pins the previous hash and a live expiry, so under
// concurrent presentation of one secret exactly one update wins; the other
// caller sees repo.ErrNotFound and must classify the miss itself.
func (r *Repository) RotateSession(
	ctx context.Context,
	uid, deviceID uuid.UUID,
	oldHash, newHash string,
	now time.Time,
) (*md.Session, error) {
	const op = "sessions.RotateSession.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.Session{}
	err := r.conn.QueryRowxContext(
		ctx, sessionRotateQ,
		uid, deviceID, oldHash, newHash, now,
	).StructScan(res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

// TouchSession bumps last_used_at for a live session without rotating.
func (r *Repository) TouchSession(
	ctx context.Context,
	uid, deviceID uuid.UUID,
	now time.Time,
) (*md.Session, error) {
	const op = "sessions.TouchSession.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.Session{}
	err := r.conn.QueryRowxContext(ctx, sessionTouchQ, uid, deviceID, now).StructScan(res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

func (r *Repository) DeleteSession(ctx context.Context, uid, deviceID uuid.UUID) (*md.Session, error) {
	const op = "sessions.DeleteSession.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.Session{}
	err := r.conn.QueryRowxContext(ctx, sessionDeleteQ, uid, deviceID).StructScan(res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

func (r *Repository) DeleteSessionsByUser(ctx context.Context, uid uuid.UUID) ([]*md.Session, error) {
	const op = "sessions.DeleteSessionsByUser.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	rows, err := r.conn.QueryxContext(ctx, sessionDeleteByUserQ, uid)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Debug("failed to close rows", zap.String("op", op), zap.Error(err))
		}
	}()

	res := make([]*md.Session, 0, 8)
	for rows.Next() {
		s := &md.Session{}
		if err = rows.StructScan(s); err != nil {
			return nil, err
		}
		res = append(res, s)
	}

	return res, rows.Err()
}

// EvictOldestSessions removes rows beyond keep for the user, oldest
// last_used_at first, ties broken by created_at.
func (r *Repository) EvictOldestSessions(ctx context.Context, uid uuid.UUID, keep int) (int64, error) {
	const op = "sessions.EvictOldestSessions.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	q, args, err := buildEvictionQuery(ctx, uid, keep)
	if err != nil {
		return 0, err
	}

	res, err := r.conn.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const op = "sessions.DeleteExpiredSessions.repo"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.conn.ExecContext(ctx, sessionDeleteExpiredQ, now)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
