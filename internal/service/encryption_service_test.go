package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAESEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	apiKey := "smm-provider-api-key-8f3a"
	enc, err := svc.Encrypt(apiKey)
	require.NoError(t, err)
	assert.NotContains(t, enc, apiKey)

	dec, err := svc.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, apiKey, dec)
}

func TestAESEncryptionService_NonDeterministic(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	e1, err := svc.Encrypt("same-key")
	require.NoError(t, err)
	e2, err := svc.Encrypt("same-key")
	require.NoError(t, err)

	assert.NotEqual(t, e1, e2, "GCM nonce must make ciphertexts unique")
}

func TestAESEncryptionService_InvalidKey(t *testing.T) {
	_, err := NewAESEncryptionService("deadbeef")
	assert.Error(t, err)

	_, err = NewAESEncryptionService("zz" + strings.Repeat("00", 31))
	assert.Error(t, err)
}

func TestAESEncryptionService_TamperedCiphertext(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	enc, err := svc.Encrypt("payload")
	require.NoError(t, err)

	tampered := enc[:len(enc)-2] + "00"
	if tampered == enc {
		tampered = enc[:len(enc)-2] + "11"
	}
	_, err = svc.Decrypt(tampered)
	assert.Error(t, err)

	_, err = svc.Decrypt("abcd")
	assert.Error(t, err)
}
