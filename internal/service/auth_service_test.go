package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/models"
)

func newAuthFixture() (AuthService, *memoryUserRepo) {
	users := newMemoryUserRepo()
	svc := NewAuthService(users, validator.New(validator.WithRequiredStructEnabled()), TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}, testLogger())
	return svc, users
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Email:    "Sara@Campus.test",
		Password: "s3cret-pass",
		Role:     "student",
		FullName: "Sara Student",
		RegNo:    "CS-001",
	})
	require.NoError(t, err)
	require.Equal(t, "sara@campus.test", registered.User.Email)
	require.Equal(t, "Bearer", registered.TokenType)

	stored, err := users.GetByEmail(ctx, "sara@campus.test")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", stored.PasswordHash)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(registered.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	require.NoError(t, err)
	require.Equal(t, "student", claims["role"])
	require.Equal(t, authz.TokenTypeAccess, claims["typ"])

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "sara@campus.test", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@campus.test", Password: "s3cret-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := svc.Login(ctx, dto.LoginRequest{Email: "sara@campus.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.Equal(t, stored.ID, loggedIn.User.ID)
}

func TestAuthServiceRegisterRules(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@campus.test", Password: "s3cret-pass", Role: "admin", FullName: "Ada"})
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs, "admins cannot self-register")

	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "s@campus.test", Password: "s3cret-pass", Role: "student", FullName: "Sam"})
	require.ErrorAs(t, err, &fieldErrs, "students need a registration number")

	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "v@campus.test", Password: "s3cret-pass", Role: "supervisor", FullName: "Victor"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "V@campus.test", Password: "s3cret-pass", Role: "supervisor", FullName: "Victor"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceRefreshRequiresRefreshToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	issued, err := svc.Register(ctx, dto.RegisterRequest{Email: "v@campus.test", Password: "s3cret-pass", Role: "supervisor", FullName: "Victor"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: issued.AccessToken})
	require.ErrorIs(t, err, ErrInvalidToken)

	refreshed, err := svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: issued.RefreshToken})
	require.NoError(t, err)
	require.Equal(t, issued.User.ID, refreshed.User.ID)
	require.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthServiceMe(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	issued, err := svc.Register(ctx, dto.RegisterRequest{Email: "v@campus.test", Password: "s3cret-pass", Role: "supervisor", FullName: "Victor", Department: "CS"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, authz.Identity{ID: issued.User.ID, Role: models.RoleSupervisor})
	require.NoError(t, err)
	require.Equal(t, "CS", me.Department)

	_, err = svc.Me(ctx, authz.Identity{ID: 999, Role: models.RoleSupervisor})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Me(ctx, authz.Identity{})
	require.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestMaskEmailAddress(t *testing.T) {
	require.Equal(t, "s***a@campus.test", maskEmailAddress(" Sara@Campus.test "))
	require.Equal(t, "j***@campus.test", maskEmailAddress("jo@campus.test"))
	require.Equal(t, "***", maskEmailAddress("not-an-email"))
	require.Equal(t, "***", maskEmailAddress("@campus.test"))
	require.Empty(t, maskEmailAddress(""))
}
