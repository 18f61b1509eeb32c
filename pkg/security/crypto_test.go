package security

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Setenv("GAD_ENC_KEY", "")
	t.Setenv("JWT_SECRET", "test-secret")

	enc, err := EncryptString("09171234567")
	require.NoError(t, err)
	assert.NotEqual(t, "09171234567", enc)

	dec, err := DecryptString(enc)
	require.NoError(t, err)
	assert.Equal(t, "09171234567", dec)
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	t.Setenv("GAD_ENC_KEY", "")
	t.Setenv("JWT_SECRET", "test-secret")

	a, err := EncryptString("same input")
	require.NoError(t, err)
	b, err := EncryptString("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestKeyFromEnvExplicitKey(t *testing.T) {
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	t.Setenv("GAD_ENC_KEY", base64.StdEncoding.EncodeToString(raw))

	key, err := KeyFromEnv()
	require.NoError(t, err)
	assert.Equal(t, raw, key)
}

func TestKeyFromEnvRejectsWrongLength(t *testing.T) {
	t.Setenv("GAD_ENC_KEY", base64.StdEncoding.EncodeToString([]byte("short")))

	_, err := KeyFromEnv()
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Setenv("GAD_ENC_KEY", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := DecryptString("not base64!!!")
	assert.Error(t, err)

	_, err = DecryptString(base64.StdEncoding.EncodeToString([]byte("xx")))
	assert.Error(t, err)

	// Wrong key fails authentication.
	enc, err := EncryptString("secret contact")
	require.NoError(t, err)
	t.Setenv("JWT_SECRET", "different-secret")
	_, err = DecryptString(enc)
	assert.Error(t, err)
}
