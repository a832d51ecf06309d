// Package provider constructs well-formed [authbridge.Credential] values for
// the known identity providers. Constructors are stateless; the resulting
// credential is passed through to the bridge unmodified and never persisted.
package provider

import "github.com/Codeseer/authbridge"

// Provider identifiers as the native backends know them.
const (
	IDPassword = "password"
	IDGoogle   = "google.com"
	IDFacebook = "facebook.com"
	IDTwitter  = "twitter.com"
	IDGitHub   = "github.com"
	IDPhone    = "phone"
)

// EmailPassword builds a password credential for sign-in, reauthentication,
// or linking a password identity onto an existing account.
func EmailPassword(email, password string) authbridge.Credential {
	return authbridge.Credential{
		ProviderID: IDPassword,
		Token:      email,
		Secret:     password,
	}
}

// Google builds a credential from a Google ID token and access token.
func Google(idToken, accessToken string) authbridge.Credential {
	return authbridge.Credential{
		ProviderID: IDGoogle,
		Token:      idToken,
		Secret:     accessToken,
	}
}

// Facebook builds a credential from a Facebook access token.
func Facebook(accessToken string) authbridge.Credential {
	return authbridge.Credential{
		ProviderID: IDFacebook,
		Token:      accessToken,
	}
}

// Twitter builds a credential from a Twitter token/secret pair.
func Twitter(token, secret string) authbridge.Credential {
	return authbridge.Credential{
		ProviderID: IDTwitter,
		Token:      token,
		Secret:     secret,
	}
}

// GitHub builds a credential from a GitHub access token.
func GitHub(accessToken string) authbridge.Credential {
	return authbridge.Credential{
		ProviderID: IDGitHub,
		Token:      accessToken,
	}
}

// Phone builds a credential from a verification ID and the SMS code the user
// entered.
func Phone(verificationID, smsCode string) authbridge.Credential {
	return authbridge.Credential{
		ProviderID: IDPhone,
		Token:      verificationID,
		Secret:     smsCode,
	}
}

// OAuth builds a credential for an arbitrary OAuth provider identifier.
func OAuth(providerID, token, secret string) authbridge.Credential {
	return authbridge.Credential{
		ProviderID: providerID,
		Token:      token,
		Secret:     secret,
	}
}
