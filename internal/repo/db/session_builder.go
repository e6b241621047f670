package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// buildEvictionQuery deletes every session of the user past the keep
// newest ones. The subquery ranks sessions newest last_used_at first with
// created_at as the tie-break; skipping the first keep rows leaves the
// least recently used ones for the DELETE, so the most recently active
// devices survive.
func buildEvictionQuery(ctx context.Context, uid uuid.UUID, keep int) (string, []any, error) {
	const op = "sessions.buildEvictionQuery.repo"

	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	sub, subArgs, err := sq.
		Select("user_id", "device_id").
		From("sessions").
		Where(sq.Eq{"user_id": uid}).
		OrderBy("last_used_at DESC", "created_at DESC").
		Offset(uint64(keep)).
		ToSql()
	if err != nil {
		span.SetTag("error", true)
		zap.L().Error("failed to build eviction subquery", zap.String("op", op), zap.Error(err))
		return "", nil, err
	}

	q, args, err := sq.
		Delete("sessions").
		Where(sq.Expr("(user_id, device_id) IN ("+sub+")", subArgs...)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		span.SetTag("error", true)
		zap.L().Error("failed to build eviction query", zap.String("op", op), zap.Error(err))
		return "", nil, err
	}

	return q, args, nil
}
