package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)
	principal := domain.Principal{CustomerID: "cust-123", Role: domain.RoleCustomer}

	token, err := manager.Generate(principal)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.Subject != "cust-123" || claims.Role != domain.RoleCustomer {
		t.Fatalf("expected claims to match principal, got %+v", claims)
	}
	if claims.Principal() != principal {
		t.Fatalf("expected principal round trip, got %+v", claims.Principal())
	}
}

func TestJWTManagerAdminWithoutSubject(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	token, err := manager.Generate(domain.Principal{Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("failed to generate admin token: %v", err)
	}
	claims, err := manager.Verify(token)
	if err != nil || claims.Role != domain.RoleAdmin {
		t.Fatalf("expected admin claims, got %+v err=%v", claims, err)
	}
}

func TestJWTManagerGenerateRejects(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	if _, err := manager.Generate(domain.Principal{CustomerID: "c", Role: "root"}); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
	if _, err := manager.Generate(domain.Principal{Role: domain.RoleCustomer}); err == nil {
		t.Fatal("expected customer token without subject to be rejected")
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	sign := func(key string, claims auth.Claims, method jwt.SigningMethod) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	valid := func(exp time.Duration) auth.Claims {
		return auth.Claims{
			Role: domain.RoleCustomer,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "cust-1",
				Issuer:    "gofunds",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			},
		}
	}

	wrongIssuer := valid(time.Minute)
	wrongIssuer.Issuer = "someone-else"

	badRole := valid(time.Minute)
	badRole.Role = "root"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", sign("secret", valid(-time.Minute), jwt.SigningMethodHS256), auth.ErrExpiredToken},
		{"wrong key", sign("other", valid(time.Minute), jwt.SigningMethodHS256), auth.ErrInvalidToken},
		{"wrong issuer", sign("secret", wrongIssuer, jwt.SigningMethodHS256), auth.ErrInvalidToken},
		{"unknown role", sign("secret", badRole, jwt.SigningMethodHS256), auth.ErrInvalidToken},
		{"garbage", "not-a-token", auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.Verify(tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}
}
