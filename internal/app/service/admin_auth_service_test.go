package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/internal/db"
	"github.com/ikkim/storybook-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: make(map[string]time.Duration)}
}

func (m *memoryRevoker) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[sessionID] = ttl
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[sessionID]
	return ok, nil
}

func setupAdminAuthTest(t *testing.T, revoker SessionRevoker) (AdminAuthService, repository.AdminUserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := repository.NewAdminUserRepository(testDB)
	return NewAdminAuthService(repo, revoker, testJWTSecret, time.Hour), repo
}

func TestAdminAuthService_EnsureAdmin(t *testing.T) {
	svc, repo := setupAdminAuthTest(t, nil)

	created, err := svc.EnsureAdmin("admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin("admin", "admin@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := repo.FindByUsername("admin")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperuser)
	assert.NotEqual(t, "admin123", admin.PasswordHash)
	assert.True(t, util.VerifyPassword(admin.PasswordHash, "admin123"))
}

func TestAdminAuthService_Login(t *testing.T) {
	svc, _ := setupAdminAuthTest(t, nil)
	_, err := svc.CreateAdmin("editor", "", "s3cret", false)
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid credentials", username: "editor", password: "s3cret"},
		{name: "wrong password", username: "editor", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", username: "ghost", password: "s3cret", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.Login(tt.username, tt.password)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.Token)
			assert.Equal(t, "editor", session.Claims.Username)
			assert.NotNil(t, session.Admin.LastLoginAt)

			claims, err := svc.Authenticate(context.Background(), session.Token)
			require.NoError(t, err)
			assert.Equal(t, session.Admin.ID, claims.AdminID)
		})
	}
}

func TestAdminAuthService_LogoutRevokesSession(t *testing.T) {
	revoker := newMemoryRevoker()
	svc, _ := setupAdminAuthTest(t, revoker)
	_, err := svc.CreateAdmin("admin", "", "admin123", true)
	require.NoError(t, err)

	session, err := svc.Login("admin", "admin123")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Logout(ctx, session.Token))
	assert.Contains(t, revoker.revoked, session.Claims.ID)
	assert.Greater(t, revoker.revoked[session.Claims.ID], time.Duration(0))

	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	// garbage tokens log out silently
	assert.NoError(t, svc.Logout(ctx, "not-a-token"))
}

func TestAdminAuthService_AuthenticateRejectsForeignTokens(t *testing.T) {
	svc, _ := setupAdminAuthTest(t, nil)

	token, _, err := util.GenerateAdminToken(1, "admin", "another-secret", time.Hour)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}

func TestAdminAuthService_CreateAdminValidation(t *testing.T) {
	svc, _ := setupAdminAuthTest(t, nil)

	_, err := svc.CreateAdmin("  ", "", "pw", false)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "username")

	_, err = svc.CreateAdmin("admin", "", "", false)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "password")

	_, err = svc.CreateAdmin("admin", "", "pw", false)
	require.NoError(t, err)
	_, err = svc.CreateAdmin("admin", "", "pw", false)
	assert.ErrorIs(t, err, ErrAdminExists)
}
