package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "test-access-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RoleDoctor}
	user.ID = "user-123"

	access, refresh, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty tokens")
	}
	if access == refresh {
		t.Error("access and refresh tokens should differ")
	}

	claims, err := ValidateToken(access, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken(access): %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want user-123", claims.UserID)
	}
	if claims.Role != models.RoleDoctor {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleDoctor)
	}

	if _, err := ValidateToken(refresh, cfg.JWTRefreshSecret); err != nil {
		t.Errorf("ValidateToken(refresh): %v", err)
	}
}

func TestTokensCarryIssuer(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RoleStaff}
	user.ID = "user-iss"

	access, _, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	claims, err := ValidateToken(access, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Issuer != "clinic-management-server" {
		t.Errorf("Issuer = %q, want clinic-management-server", claims.Issuer)
	}

	// A token signed elsewhere with the right secret but a foreign
	// issuer must be rejected.
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := ValidateToken(signed, cfg.JWTSecret); err == nil {
		t.Error("expected foreign-issuer token to be rejected")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RolePatient}
	user.ID = "user-456"

	access, _, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := ValidateToken(access, "some-other-secret"); err == nil {
		t.Error("expected validation to fail with the wrong secret")
	}
	// An access token must not validate against the refresh secret.
	if _, err := ValidateToken(access, cfg.JWTRefreshSecret); err == nil {
		t.Error("access token validated with refresh secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-jwt", "secret"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpirationMinutes = -5

	user := &models.User{Role: models.RolePatient}
	user.ID = "user-789"

	access, _, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := ValidateToken(access, cfg.JWTSecret); err == nil {
		t.Error("expected expired token to be rejected")
	}
}
