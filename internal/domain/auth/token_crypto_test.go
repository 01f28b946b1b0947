package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenSealRoundTrip(t *testing.T) {
	secret := "any passphrase works here"

	sealed, err := encryptToken(secret, "1//refresh-token-value")
	require.NoError(t, err)
	require.NotEmpty(t, sealed)
	require.NotContains(t, sealed, "refresh-token")

	opened, err := decryptToken(secret, sealed)
	require.NoError(t, err)
	require.Equal(t, "1//refresh-token-value", opened)
}

func TestTokenSealEmptyValuesPassThrough(t *testing.T) {
	sealed, err := encryptToken("secret", "")
	require.NoError(t, err)
	require.Empty(t, sealed)

	opened, err := decryptToken("secret", "")
	require.NoError(t, err)
	require.Empty(t, opened)
}

func TestTokenSealWrongSecret(t *testing.T) {
	sealed, err := encryptToken("secret-one", "1//refresh-token-value")
	require.NoError(t, err)

	_, err = decryptToken("secret-two", sealed)
	require.Error(t, err)
}

func TestTokenSealRejectsTampering(t *testing.T) {
	sealed, err := encryptToken("secret", "1//refresh-token-value")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01

	_, err = decryptToken("secret", base64.RawURLEncoding.EncodeToString(raw))
	require.Error(t, err)
}

func TestTokenSealEmptySecret(t *testing.T) {
	_, err := encryptToken("", "1//refresh-token-value")
	require.Error(t, err)
}
