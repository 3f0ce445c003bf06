package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"invois/internal/config"
	"invois/internal/domain"
	"invois/internal/service"
	"invois/mocks"
)

const testPassword = "correct-horse-battery"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-at-least-32-characters",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "invois-test",
	}
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		Email:        "owner@acme.test",
		PasswordHash: string(hash),
		FullName:     "Acme Owner",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

func activeTenant(id uuid.UUID) *domain.Tenant {
	return &domain.Tenant{ID: id, Name: "Acme", Slug: "acme", IsActive: true}
}

func TestLogin_Success(t *testing.T) {
	user := testUser(t)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	tenantRepo := new(mocks.MockTenantRepo)
	tenantRepo.On("GetByID", mock.Anything, user.TenantID).Return(activeTenant(user.TenantID), nil)

	svc := service.NewAuthService(userRepo, tenantRepo, testJWTConfig())

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.TenantID, claims.TenantID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	user := testUser(t)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	tenantRepo := new(mocks.MockTenantRepo)
	tenantRepo.On("GetByID", mock.Anything, user.TenantID).Return(activeTenant(user.TenantID), nil)

	svc := service.NewAuthService(userRepo, tenantRepo, testJWTConfig())

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "not-the-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "nobody@acme.test").Return(nil, domain.ErrNotFound)

	svc := service.NewAuthService(userRepo, new(mocks.MockTenantRepo), testJWTConfig())

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@acme.test",
		Password: testPassword,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	user := testUser(t)
	user.IsActive = false

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := service.NewAuthService(userRepo, new(mocks.MockTenantRepo), testJWTConfig())

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: testPassword,
	})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestLogin_InactiveTenant(t *testing.T) {
	user := testUser(t)
	tenant := activeTenant(user.TenantID)
	tenant.IsActive = false

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	tenantRepo := new(mocks.MockTenantRepo)
	tenantRepo.On("GetByID", mock.Anything, user.TenantID).Return(tenant, nil)

	svc := service.NewAuthService(userRepo, tenantRepo, testJWTConfig())

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: testPassword,
	})
	assert.ErrorIs(t, err, domain.ErrTenantInactive)
}

func TestValidateToken_RejectsRefreshToken(t *testing.T) {
	user := testUser(t)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	tenantRepo := new(mocks.MockTenantRepo)
	tenantRepo.On("GetByID", mock.Anything, user.TenantID).Return(activeTenant(user.TenantID), nil)

	svc := service.NewAuthService(userRepo, tenantRepo, testJWTConfig())

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	svc := service.NewAuthService(new(mocks.MockUserRepo), new(mocks.MockTenantRepo), testJWTConfig())

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	user := testUser(t)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	tenantRepo := new(mocks.MockTenantRepo)
	tenantRepo.On("GetByID", mock.Anything, user.TenantID).Return(activeTenant(user.TenantID), nil)

	issuer := service.NewAuthService(userRepo, tenantRepo, testJWTConfig())
	pair, err := issuer.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "a-completely-different-signing-secret"
	verifier := service.NewAuthService(userRepo, tenantRepo, otherCfg)

	_, err = verifier.ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestRefreshToken_IssuesNewPair(t *testing.T) {
	user := testUser(t)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	tenantRepo := new(mocks.MockTenantRepo)
	tenantRepo.On("GetByID", mock.Anything, user.TenantID).Return(activeTenant(user.TenantID), nil)

	svc := service.NewAuthService(userRepo, tenantRepo, testJWTConfig())

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	user := testUser(t)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	tenantRepo := new(mocks.MockTenantRepo)
	tenantRepo.On("GetByID", mock.Anything, user.TenantID).Return(activeTenant(user.TenantID), nil)

	svc := service.NewAuthService(userRepo, tenantRepo, testJWTConfig())

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: testPassword,
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
