package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSourceCachesUntilNearExpiry(t *testing.T) {
	calls := 0
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	}
	assert.Equal(t, 1, calls)

	ts.expiry = time.Now().Add(30 * time.Second)
	_, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestServiceAccountTokenSourceRejectsBadCredentials(t *testing.T) {
	client := &http.Client{}

	_, err := newServiceAccountTokenSource(client, "not json")
	assert.Error(t, err)

	_, err = newServiceAccountTokenSource(client, `{"client_email":"","private_key":""}`)
	assert.Error(t, err)
}

func TestParsePrivateKeyAcceptsPKCS8(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	parsed, err := parsePrivateKey(string(pemData))
	require.NoError(t, err)
	assert.Equal(t, key.N, parsed.N)

	creds, err := json.Marshal(map[string]string{
		"client_email": "svc@test.iam.gserviceaccount.com",
		"private_key":  string(pemData),
	})
	require.NoError(t, err)

	ts, err := newServiceAccountTokenSource(&http.Client{}, string(creds))
	require.NoError(t, err)
	assert.NotNil(t, ts)
}

func TestSignJWTProducesVerifiableSignature(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	sig, err := signJWT("header.payload", key)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}
