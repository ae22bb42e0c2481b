package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdashiqtp/procurement-app/internal/users"
	pkgAuth "github.com/mohdashiqtp/procurement-app/pkg/auth"
	"github.com/mohdashiqtp/procurement-app/pkg/config"
	"github.com/mohdashiqtp/procurement-app/pkg/db/dbtest"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
	"github.com/mohdashiqtp/procurement-app/pkg/security"
)

var (
	testJWT = config.JWTConfig{Secret: "secret", Issuer: "procurement-app", ExpirationMinutes: 30}
	// cheap argon2 params so the suite stays fast
	testPassword = config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

type stubSessionManager struct {
	accessIDs []string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	s.accessIDs = append(s.accessIDs, accessID)
	return "refresh-" + accessID, nil
}

func newTestService(t *testing.T) (Service, *users.Repository, *stubSessionManager) {
	t.Helper()
	repo := users.NewRepository(dbtest.OpenMigrated(t))
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
	})
	require.NoError(t, err)
	return svc, repo, sessions
}

func seedUser(t *testing.T, repo *users.Repository, username, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPassword)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), users.CreateUserDTO{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return user
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: &users.Repository{}})
	assert.Error(t, err)
}

func TestLoginIssuesTokensAndStampsLastLogin(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	user := seedUser(t, repo, "buyer", "correct-horse")

	resp, err := svc.Login(context.Background(), LoginRequest{Username: " Buyer ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "refresh-"+sessions.accessIDs[0], resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "buyer", claims.Username)
	assert.Equal(t, sessions.accessIDs[0], claims.ID)

	reloaded, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestLoginByEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "buyer", "correct-horse")

	_, err := svc.Login(context.Background(), LoginRequest{Username: "BUYER@example.com", Password: "correct-horse"})
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "buyer", "correct-horse")

	for _, req := range []LoginRequest{
		{Username: "buyer", Password: "wrong"},
		{Username: "nobody", Password: "correct-horse"},
		{Username: "", Password: "x"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, invalidCredentialsMessage, typed.Message())
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	conn := dbtest.OpenMigrated(t)
	repo := users.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: &stubSessionManager{},
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
	})
	require.NoError(t, err)
	user := seedUser(t, repo, "gone", "correct-horse")

	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "gone", Password: "correct-horse"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestRegister(t *testing.T) {
	svc, repo, sessions := newTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{Username: "NewBuyer", Email: "New@Example.com", Password: "long-enough"})
	require.NoError(t, err)
	assert.Equal(t, "newbuyer", resp.User.Username)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.True(t, resp.User.IsActive)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Len(t, sessions.accessIDs, 1)

	stored, err := repo.FindByUsername(context.Background(), "newbuyer")
	require.NoError(t, err)
	assert.NotEqual(t, "long-enough", stored.PasswordHash)
	assert.False(t, security.NeedsRehash(stored.PasswordHash))
}

func TestRegisterConflicts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "taken", "correct-horse")

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "TAKEN", Email: "other@example.com", Password: "long-enough"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "fresh", Email: "taken@example.com", Password: "long-enough"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestMe(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(t, repo, "me", "correct-horse")

	dto, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me", dto.Username)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestLoginUsesInjectedClock(t *testing.T) {
	repo := users.NewRepository(dbtest.OpenMigrated(t))
	seedUser(t, repo, "clock", "correct-horse")
	fixed := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: &stubSessionManager{},
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
		Now:            func() time.Time { return fixed },
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "clock", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.LastLoginAt)
	assert.True(t, fixed.Equal(*resp.User.LastLoginAt))
}
