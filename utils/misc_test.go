package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Devworks Bootcamp":       "devworks-bootcamp",
		"  ModernTech   Bootcamp": "moderntech-bootcamp",
		"Codemasters' Bootcamp!":  "codemasters-bootcamp",
		"Café & Code":             "cafe-and-code",
		"UI/UX 2024":              "ui-ux-2024",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	require.NotNil(t, issuer)

	token, err := issuer.Issue("64b7f0c2a1b2c3d4e5f60718", "publisher")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "publisher", claims.Role)

	_, err = NewTokenIssuer("other-secret", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenIssuerDisabledWithoutSecret(t *testing.T) {
	assert.Nil(t, NewTokenIssuer("", time.Hour))
}

func TestEmailServiceDisabledWithoutToken(t *testing.T) {
	assert.Nil(t, NewEmailService("", "noreply@devcamper.io"))
}
