package provider

import (
	"testing"

	"github.com/Codeseer/authbridge"
)

func TestEmailPassword(t *testing.T) {
	cred := EmailPassword("a@example.com", "pw")
	if cred.ProviderID != IDPassword {
		t.Fatalf("expected provider %q, got %q", IDPassword, cred.ProviderID)
	}
	if cred.Token != "a@example.com" || cred.Secret != "pw" {
		t.Fatalf("unexpected credential payload: %+v", cred)
	}
}

func TestOAuthProviders(t *testing.T) {
	cases := []struct {
		name     string
		cred     authbridge.Credential
		provider string
		token    string
		secret   string
	}{
		{"google", Google("id-token", "access-token"), IDGoogle, "id-token", "access-token"},
		{"facebook", Facebook("access-token"), IDFacebook, "access-token", ""},
		{"twitter", Twitter("token", "secret"), IDTwitter, "token", "secret"},
		{"github", GitHub("access-token"), IDGitHub, "access-token", ""},
		{"phone", Phone("verification-id", "123456"), IDPhone, "verification-id", "123456"},
	}

	for _, tc := range cases {
		if tc.cred.ProviderID != tc.provider {
			t.Fatalf("%s: expected provider %q, got %q", tc.name, tc.provider, tc.cred.ProviderID)
		}
		if tc.cred.Token != tc.token || tc.cred.Secret != tc.secret {
			t.Fatalf("%s: unexpected payload token=%q secret=%q", tc.name, tc.cred.Token, tc.cred.Secret)
		}
	}
}

func TestOAuthGeneric(t *testing.T) {
	cred := OAuth("oidc.custom", "t", "s")
	if cred.ProviderID != "oidc.custom" || cred.Token != "t" || cred.Secret != "s" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}
