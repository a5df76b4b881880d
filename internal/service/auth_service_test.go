package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/survey-service/internal/auth"
	"github.com/spec-kit/survey-service/internal/config"
	"github.com/spec-kit/survey-service/internal/domain"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:             "test-secret",
	AccessTokenTTLMinutes: 10,
	BcryptCost:            4,
	UserDashboardURL:      "http://dash",
}

func newAuthFixture(t *testing.T) (*AuthService, *stubUserRepo) {
	t.Helper()
	hash, err := auth.HashPassword("pw", 4)
	if err != nil {
		t.Fatal(err)
	}
	users := &stubUserRepo{users: []domain.User{
		{ID: 1, Username: "root", Email: "root@x", Department: "IT", HashedPassword: hash, Role: "admin"},
		{ID: 2, Username: "eve", Email: "eve@x", Department: "HR", HashedPassword: hash, Role: "user"},
	}}
	return NewAuthService(testAuthConfig, users), users
}

func TestLoginNormalizesRole(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Login(context.Background(), "root", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Role != auth.FrontendRoleAdmin || res.User.Department != "IT" || res.Token == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	claims, err := svc.TokenManager().ParseToken(res.Token)
	if err != nil || claims.UserID != 1 {
		t.Fatalf("token claims %+v, %v", claims, err)
	}

	res, err = svc.Login(context.Background(), "eve", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Role != "http://dash" {
		t.Fatalf("role = %q", res.Role)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "", "pw")
	assertDomainError(t, err, apperrors.CodeValidation, http.StatusBadRequest)

	_, err = svc.Login(ctx, "nobody", "pw")
	assertDomainError(t, err, apperrors.CodeUnauthorized, http.StatusUnauthorized)

	_, err = svc.Login(ctx, "eve", "wrong")
	assertDomainError(t, err, apperrors.CodeUnauthorized, http.StatusUnauthorized)

	users.getErr = errors.New("db down")
	_, err = svc.Login(ctx, "eve", "pw")
	assertDomainError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
}

func TestProvisionUser(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.ProvisionUser(ctx, ProvisionInput{Username: "neo", Email: "neo@x", Department: "Ops", Password: "matrix"})
	if err != nil {
		t.Fatalf("ProvisionUser: %v", err)
	}
	if user.Role != "user" || user.Name != "neo" || !auth.VerifyPassword("matrix", user.HashedPassword) {
		t.Fatalf("unexpected user %+v", user)
	}
	if len(users.created) != 1 {
		t.Fatal("user not stored")
	}

	_, err = svc.ProvisionUser(ctx, ProvisionInput{Username: "neo"})
	assertDomainError(t, err, apperrors.CodeValidation, http.StatusBadRequest)

	users.createErr = &pgconn.PgError{Code: "23505"}
	_, err = svc.ProvisionUser(ctx, ProvisionInput{Username: "neo", Email: "neo@x", Password: "matrix"})
	assertDomainError(t, err, apperrors.CodeConflict, http.StatusConflict)
}
