package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ndavydov/auth-sessions/internal/auth"
	md "github.com/ndavydov/auth-sessions/internal/models"
	"github.com/ndavydov/auth-sessions/internal/repo"
	"github.com/ndavydov/auth-sessions/tests/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestManager_CreateSession(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockRepo := mocks.NewMockSessionRepo(ctrlMock)

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mgr := &Manager{repo: mockRepo, now: func() time.Time { return now }}

	uid := uuid.New()
	deviceID := uuid.New()
	secret := "refresh-secret"
	expiresAt := now.Add(7 * 24 * time.Hour)

	stored := &md.Session{
		UserID:     uid,
		DeviceID:   deviceID,
		Token:      auth.HashSecret(secret),
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  expiresAt,
	}

	underCap := make([]*md.Session, 5)
	overCap := make([]*md.Session, 6)
	for i := range overCap {
		overCap[i] = &md.Session{UserID: uid, DeviceID: uuid.New()}
	}
	copy(underCap, overCap[:5])

	tests := []struct {
		name    string
		setup   func()
		wantErr bool
		err     error
	}{
		{
			name: "Success",
			setup: func() {
				mockRepo.EXPECT().
					InsertSession(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, s *md.Session) (*md.Session, error) {
						assert.Equal(t, auth.HashSecret(secret), s.Token)
						assert.Equal(t, now, s.CreatedAt)
						assert.Equal(t, now, s.LastUsedAt)
						return stored, nil
					})
				mockRepo.EXPECT().
					ListSessionsByUser(gomock.Any(), uid).
					Return(underCap, nil)
			},
			wantErr: false,
		},
		{
			name: "OverCapEvicts",
			setup: func() {
				mockRepo.EXPECT().
					InsertSession(gomock.Any(), gomock.Any()).
					Return(stored, nil)
				mockRepo.EXPECT().
					ListSessionsByUser(gomock.Any(), uid).
					Return(overCap, nil)
				mockRepo.EXPECT().
					EvictOldestSessions(gomock.Any(), uid, 5).
					Return(int64(1), nil)
			},
			wantErr: false,
		},
		{
			name: "InsertConflict",
			setup: func() {
				mockRepo.EXPECT().
					InsertSession(gomock.Any(), gomock.Any()).
					Return(nil, repo.ErrAlreadyExists)
			},
			wantErr: true,
			err:     repo.ErrAlreadyExists,
		},
		{
			name: "ListFailsAfterInsert",
			setup: func() {
				mockRepo.EXPECT().
					InsertSession(gomock.Any(), gomock.Any()).
					Return(stored, nil)
				mockRepo.EXPECT().
					ListSessionsByUser(gomock.Any(), uid).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
			err:     ErrLimitExceeded,
		},
		{
			name: "EvictFailsAfterInsert",
			setup: func() {
				mockRepo.EXPECT().
					InsertSession(gomock.Any(), gomock.Any()).
					Return(stored, nil)
				mockRepo.EXPECT().
					ListSessionsByUser(gomock.Any(), uid).
					Return(overCap, nil)
				mockRepo.EXPECT().
					EvictOldestSessions(gomock.Any(), uid, 5).
					Return(int64(0), errors.New("db error"))
			},
			wantErr: true,
			err:     ErrLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			res, err := mgr.CreateSession(ctx, uid, deviceID, secret, expiresAt)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.err != nil {
					assert.ErrorIs(t, err, tt.err)
				}
				if errors.Is(err, ErrLimitExceeded) {
					// Cap enforcement failures never undo the insert.
					assert.Equal(t, stored, res)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, stored, res)
			}
		})
	}
}

func TestManager_CreateSession_WrapsCreationKind(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockRepo := mocks.NewMockSessionRepo(ctrlMock)
	mgr := &Manager{repo: mockRepo, now: time.Now}

	mockRepo.EXPECT().
		InsertSession(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("db error"))

	_, err := mgr.CreateSession(
		context.Background(),
		uuid.New(),
		uuid.New(),
		"secret",
		time.Now().Add(time.Hour),
	)
	assert.Error(t, err)

	var se *Error
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, KindCreationFailed, se.Kind)
}

func TestManager_ValidateAndRotate(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockRepo := mocks.NewMockSessionRepo(ctrlMock)

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mgr := &Manager{repo: mockRepo, now: func() time.Time { return now }}

	uid := uuid.New()
	deviceID := uuid.New()
	oldSecret := "old-secret"
	newSecret := "new-secret"
	oldHash := auth.HashSecret(oldSecret)
	newHash := auth.HashSecret(newSecret)

	rotated := &md.Session{
		UserID:     uid,
		DeviceID:   deviceID,
		Token:      newHash,
		LastUsedAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}

	tests := []struct {
		name    string
		setup   func()
		wantErr bool
		err     error
	}{
		{
			name: "Success",
			setup: func() {
				mockRepo.EXPECT().
					RotateSession(gomock.Any(), uid, deviceID, oldHash, newHash, now).
					Return(rotated, nil)
			},
			wantErr: false,
		},
		{
			name: "MissBecauseNoSession",
			setup: func() {
				mockRepo.EXPECT().
					RotateSession(gomock.Any(), uid, deviceID, oldHash, newHash, now).
					Return(nil, repo.ErrNotFound)
				mockRepo.EXPECT().
					GetSession(gomock.Any(), uid, deviceID).
					Return(nil, repo.ErrNotFound)
			},
			wantErr: true,
			err:     ErrNotFound,
		},
		{
			name: "MissBecauseExpired",
			setup: func() {
				mockRepo.EXPECT().
					RotateSession(gomock.Any(), uid, deviceID, oldHash, newHash, now).
					Return(nil, repo.ErrNotFound)
				mockRepo.EXPECT().
					GetSession(gomock.Any(), uid, deviceID).
					Return(&md.Session{ExpiresAt: now.Add(-time.Minute)}, nil)
			},
			wantErr: true,
			err:     ErrExpired,
		},
		{
			name: "MissBecauseExpiryExactlyNow",
			setup: func() {
				mockRepo.EXPECT().
					RotateSession(gomock.Any(), uid, deviceID, oldHash, newHash, now).
					Return(nil, repo.ErrNotFound)
				mockRepo.EXPECT().
					GetSession(gomock.Any(), uid, deviceID).
					Return(&md.Session{ExpiresAt: now}, nil)
			},
			wantErr: true,
			err:     ErrExpired,
		},
		{
			name: "MissBecauseSecretAlreadyRotated",
			setup: func() {
				mockRepo.EXPECT().
					RotateSession(gomock.Any(), uid, deviceID, oldHash, newHash, now).
					Return(nil, repo.ErrNotFound)
				mockRepo.EXPECT().
					GetSession(gomock.Any(), uid, deviceID).
					Return(&md.Session{Token: newHash, ExpiresAt: now.Add(time.Hour)}, nil)
			},
			wantErr: true,
			err:     ErrInvalidToken,
		},
		{
			name: "RepositoryError",
			setup: func() {
				mockRepo.EXPECT().
					RotateSession(gomock.Any(), uid, deviceID, oldHash, newHash, now).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			res, err := mgr.ValidateAndRotate(ctx, uid, deviceID, oldSecret, newSecret)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, res)
				if tt.err != nil {
					assert.ErrorIs(t, err, tt.err)
				}

				var se *Error
				assert.ErrorAs(t, err, &se)
				assert.Equal(t, KindRefreshFailed, se.Kind)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, rotated, res)
			}
		})
	}
}

func TestManager_GetValidSession(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockRepo := mocks.NewMockSessionRepo(ctrlMock)

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mgr := &Manager{repo: mockRepo, now: func() time.Time { return now }}

	uid := uuid.New()
	deviceID := uuid.New()
	touched := &md.Session{UserID: uid, DeviceID: deviceID, LastUsedAt: now}

	tests := []struct {
		name    string
		setup   func()
		wantErr bool
		err     error
	}{
		{
			name: "Success",
			setup: func() {
				mockRepo.EXPECT().
					TouchSession(gomock.Any(), uid, deviceID, now).
					Return(touched, nil)
			},
			wantErr: false,
		},
		{
			name: "NotFound",
			setup: func() {
				mockRepo.EXPECT().
					TouchSession(gomock.Any(), uid, deviceID, now).
					Return(nil, repo.ErrNotFound)
				mockRepo.EXPECT().
					GetSession(gomock.Any(), uid, deviceID).
					Return(nil, repo.ErrNotFound)
			},
			wantErr: true,
			err:     ErrNotFound,
		},
		{
			name: "Expired",
			setup: func() {
				mockRepo.EXPECT().
					TouchSession(gomock.Any(), uid, deviceID, now).
					Return(nil, repo.ErrNotFound)
				mockRepo.EXPECT().
					GetSession(gomock.Any(), uid, deviceID).
					Return(&md.Session{ExpiresAt: now.Add(-time.Second)}, nil)
			},
			wantErr: true,
			err:     ErrExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			res, err := mgr.GetValidSession(ctx, uid, deviceID)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.err != nil {
					assert.ErrorIs(t, err, tt.err)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, touched, res)
			}
		})
	}
}

func TestManager_DeleteSession(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockRepo := mocks.NewMockSessionRepo(ctrlMock)
	mgr := &Manager{repo: mockRepo, now: time.Now}

	ctx := context.Background()
	uid := uuid.New()
	deviceID := uuid.New()
	deleted := &md.Session{UserID: uid, DeviceID: deviceID}

	t.Run("Success", func(t *testing.T) {
		mockRepo.EXPECT().
			DeleteSession(gomock.Any(), uid, deviceID).
			Return(deleted, nil)

		res, err := mgr.DeleteSession(ctx, uid, deviceID)
		assert.NoError(t, err)
		assert.Equal(t, deleted, res)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo.EXPECT().
			DeleteSession(gomock.Any(), uid, deviceID).
			Return(nil, repo.ErrNotFound)

		res, err := mgr.DeleteSession(ctx, uid, deviceID)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestManager_RemoveAllSessionsForUser(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockRepo := mocks.NewMockSessionRepo(ctrlMock)
	mgr := &Manager{repo: mockRepo, now: time.Now}

	uid := uuid.New()
	removed := []*md.Session{
		{UserID: uid, DeviceID: uuid.New()},
		{UserID: uid, DeviceID: uuid.New()},
	}

	mockRepo.EXPECT().
		DeleteSessionsByUser(gomock.Any(), uid).
		Return(removed, nil)

	res, err := mgr.RemoveAllSessionsForUser(context.Background(), uid)
	assert.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestManager_DeleteExpired(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockRepo := mocks.NewMockSessionRepo(ctrlMock)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mgr := &Manager{repo: mockRepo, now: func() time.Time { return now }}

	mockRepo.EXPECT().
		DeleteExpiredSessions(gomock.Any(), now).
		Return(int64(3), nil)

	n, err := mgr.DeleteExpired(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestManager_StartSweep_StopsOnCancel(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mgr := &Manager{repo: mocks.NewMockSessionRepo(ctrlMock), now: time.Now}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.StartSweep(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}

func TestWrap_SameKindNotRewrapped(t *testing.T) {
	cause := errors.New("db error")

	once := Wrap(KindRefreshFailed, cause)
	twice := Wrap(KindRefreshFailed, once)
	assert.Equal(t, once, twice)

	other := Wrap(KindValidationFailed, once)
	assert.NotEqual(t, once, other)
	assert.ErrorIs(t, other, cause)
}
