package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("ops")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	if _, err := ExtractTokenFromHeader(""); err == nil {
		t.Fatalf("expected error for missing header")
	}
	if _, err := ExtractTokenFromHeader("Basic abc"); err == nil {
		t.Fatalf("expected error for non-bearer header")
	}
	token, err := ExtractTokenFromHeader("Bearer abc123")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("extracted %q", token)
	}
}
