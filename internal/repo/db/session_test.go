package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	md "github.com/ndavydov/auth-sessions/internal/models"
	"github.com/ndavydov/auth-sessions/internal/repo"
	"github.com/stretchr/testify/assert"
)

var sessionCols = []string{
	"user_id", "device_id", "token", "created_at", "last_used_at", "expires_at",
}

func sessionRow(s *md.Session) *sqlmock.Rows {
	return sqlmock.NewRows(sessionCols).AddRow(
		s.UserID, s.DeviceID, s.Token, s.CreatedAt, s.LastUsedAt, s.ExpiresAt,
	)
}

func uniqueViolationErr() error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
}

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return &Repository{conn: sqlxDB}, mock, func() { _ = db.Close() }
}

func TestRepository_InsertSession(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &md.Session{
		UserID:     uuid.New(),
		DeviceID:   uuid.New(),
		Token:      "hash",
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(7 * 24 * time.Hour),
	}

	tests := []struct {
		name        string
		mock        func()
		expectedErr error
	}{
		{
			name: "Success",
			mock: func() {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(sessionDeleteSlotQ)).
					WithArgs(s.UserID, s.DeviceID).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(regexp.QuoteMeta(sessionInsertQ)).
					WithArgs(s.UserID, s.DeviceID, s.Token, s.CreatedAt, s.ExpiresAt).
					WillReturnRows(sessionRow(s))
				mock.ExpectCommit()
			},
		},
		{
			name: "SlotDeleteError",
			mock: func() {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(sessionDeleteSlotQ)).
					WithArgs(s.UserID, s.DeviceID).
					WillReturnError(errors.New("database error"))
				mock.ExpectRollback()
			},
			expectedErr: errors.New("database error"),
		},
		{
			name: "ConcurrentInsertLosesRace",
			mock: func() {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(sessionDeleteSlotQ)).
					WithArgs(s.UserID, s.DeviceID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(regexp.QuoteMeta(sessionInsertQ)).
					WithArgs(s.UserID, s.DeviceID, s.Token, s.CreatedAt, s.ExpiresAt).
					WillReturnError(uniqueViolationErr())
				mock.ExpectRollback()
			},
			expectedErr: repo.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mock()

			res, err := repository.InsertSession(context.Background(), s)

			if tt.expectedErr != nil {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.expectedErr.Error())
				assert.Nil(t, res)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, s.Token, res.Token)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetSession(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	now := time.Now()
	s := &md.Session{
		UserID:     uuid.New(),
		DeviceID:   uuid.New(),
		Token:      "hash",
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}

	tests := []struct {
		name        string
		mock        func()
		expectedErr error
	}{
		{
			name: "Success",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionGetQ)).
					WithArgs(s.UserID, s.DeviceID).
					WillReturnRows(sessionRow(s))
			},
		},
		{
			name: "NotFound",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionGetQ)).
					WithArgs(s.UserID, s.DeviceID).
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: repo.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mock()

			res, err := repository.GetSession(context.Background(), s.UserID, s.DeviceID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, res)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, s.UserID, res.UserID)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListSessionsByUser(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	uid := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(sessionCols).
		AddRow(uid, uuid.New(), "hash1", now.Add(-2*time.Hour), now.Add(-2*time.Hour), now.Add(time.Hour)).
		AddRow(uid, uuid.New(), "hash2", now.Add(-time.Hour), now.Add(-time.Hour), now.Add(time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(sessionListByUserQ)).
		WithArgs(uid).
		WillReturnRows(rows)

	res, err := repository.ListSessionsByUser(context.Background(), uid)
	assert.NoError(t, err)
	assert.Len(t, res, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RotateSession(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	uid := uuid.New()
	deviceID := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rotated := &md.Session{
		UserID:     uid,
		DeviceID:   deviceID,
		Token:      "new-hash",
		CreatedAt:  now.Add(-time.Hour),
		LastUsedAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}

	tests := []struct {
		name        string
		mock        func()
		expectedErr error
	}{
		{
			name: "Success",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionRotateQ)).
					WithArgs(uid, deviceID, "old-hash", "new-hash", now).
					WillReturnRows(sessionRow(rotated))
			},
		},
		{
			name: "ZeroRowsOnStaleSecret",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionRotateQ)).
					WithArgs(uid, deviceID, "old-hash", "new-hash", now).
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: repo.ErrNotFound,
		},
		{
			name: "DatabaseError",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionRotateQ)).
					WithArgs(uid, deviceID, "old-hash", "new-hash", now).
					WillReturnError(errors.New("database error"))
			},
			expectedErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mock()

			res, err := repository.RotateSession(
				context.Background(), uid, deviceID, "old-hash", "new-hash", now,
			)

			if tt.expectedErr != nil {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.expectedErr.Error())
				assert.Nil(t, res)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "new-hash", res.Token)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TouchSession(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	uid := uuid.New()
	deviceID := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	touched := &md.Session{
		UserID:     uid,
		DeviceID:   deviceID,
		Token:      "hash",
		CreatedAt:  now.Add(-time.Hour),
		LastUsedAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(sessionTouchQ)).
			WithArgs(uid, deviceID, now).
			WillReturnRows(sessionRow(touched))

		res, err := repository.TouchSession(context.Background(), uid, deviceID, now)
		assert.NoError(t, err)
		assert.Equal(t, now, res.LastUsedAt)
	})

	t.Run("ExpiredOrMissing", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(sessionTouchQ)).
			WithArgs(uid, deviceID, now).
			WillReturnError(sql.ErrNoRows)

		res, err := repository.TouchSession(context.Background(), uid, deviceID, now)
		assert.ErrorIs(t, err, repo.ErrNotFound)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteSession(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	uid := uuid.New()
	deviceID := uuid.New()
	now := time.Now()
	deleted := &md.Session{
		UserID:     uid,
		DeviceID:   deviceID,
		Token:      "hash",
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(sessionDeleteQ)).
			WithArgs(uid, deviceID).
			WillReturnRows(sessionRow(deleted))

		res, err := repository.DeleteSession(context.Background(), uid, deviceID)
		assert.NoError(t, err)
		assert.Equal(t, deviceID, res.DeviceID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(sessionDeleteQ)).
			WithArgs(uid, deviceID).
			WillReturnError(sql.ErrNoRows)

		res, err := repository.DeleteSession(context.Background(), uid, deviceID)
		assert.ErrorIs(t, err, repo.ErrNotFound)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteSessionsByUser(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	uid := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(sessionCols).
		AddRow(uid, uuid.New(), "hash1", now, now, now.Add(time.Hour)).
		AddRow(uid, uuid.New(), "hash2", now, now, now.Add(time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(sessionDeleteByUserQ)).
		WithArgs(uid).
		WillReturnRows(rows)

	res, err := repository.DeleteSessionsByUser(context.Background(), uid)
	assert.NoError(t, err)
	assert.Len(t, res, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_EvictOldestSessions(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	uid := uuid.New()

	q, args, err := buildEvictionQuery(context.Background(), uid, 5)
	assert.NoError(t, err)

	// The offset is rendered inline, so the user id is the only bind.
	assert.Len(t, args, 1)
	assert.Contains(t, q, "ORDER BY last_used_at DESC, created_at DESC")
	assert.Contains(t, q, "OFFSET 5")

	mock.ExpectExec(regexp.QuoteMeta(q)).
		WithArgs(uid).
		WillReturnResult(sqlmock.NewResult(0, 2))

	evicted, err := repository.EvictOldestSessions(context.Background(), uid, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), evicted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteExpiredSessions(t *testing.T) {
	repository, mock, closeFn := newTestRepo(t)
	defer closeFn()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(sessionDeleteExpiredQ)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repository.DeleteExpiredSessions(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
