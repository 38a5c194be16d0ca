// AngelaMos | 2026
// google_test.go

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/config"
)

const testClientID = "client-123.apps.googleusercontent.com"

type fakeGoogle struct {
	priv jwk.Key
	srv  *httptest.Server
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	priv, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, priv.Set(jwk.KeyIDKey, "test-kid"))
	require.NoError(t, priv.Set(jwk.AlgorithmKey, jwa.RS256()))

	pub, err := priv.PublicKey()
	require.NoError(t, err)
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))
	body, err := json.Marshal(set)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return &fakeGoogle{priv: priv, srv: srv}
}

func (f *fakeGoogle) sign(t *testing.T, mutate func(*jwt.Builder) *jwt.Builder) string {
	t.Helper()
	now := time.Now()
	b := jwt.NewBuilder().
		Issuer("https://accounts.google.com").
		Audience([]string{testClientID}).
		Subject("google-sub-1").
		IssuedAt(now).
		Expiration(now.Add(time.Hour)).
		Claim("email", "buyer@example.com").
		Claim("email_verified", true).
		Claim("name", "Buyer One")
	if mutate != nil {
		b = mutate(b)
	}
	tok, err := b.Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), f.priv))
	require.NoError(t, err)
	return string(signed)
}

func (f *fakeGoogle) verifier() *GoogleVerifier {
	return NewGoogleVerifier(config.OAuthConfig{
		GoogleClientID: testClientID,
		GoogleJWKSURL:  f.srv.URL,
	})
}

func TestGoogleVerifyAcceptsValidToken(t *testing.T) {
	g := newFakeGoogle(t)

	profile, err := g.verifier().Verify(context.Background(), g.sign(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "google-sub-1", profile.Subject)
	assert.Equal(t, "buyer@example.com", profile.Email)
	assert.Equal(t, "Buyer One", profile.Name)
}

func TestGoogleVerifyRejects(t *testing.T) {
	g := newFakeGoogle(t)
	v := g.verifier()
	ctx := context.Background()

	cases := map[string]func(*jwt.Builder) *jwt.Builder{
		"wrong audience": func(b *jwt.Builder) *jwt.Builder {
			return b.Audience([]string{"someone-else"})
		},
		"wrong issuer": func(b *jwt.Builder) *jwt.Builder {
			return b.Issuer("https://evil.example.com")
		},
		"unverified email": func(b *jwt.Builder) *jwt.Builder {
			return b.Claim("email_verified", false)
		},
		"expired": func(b *jwt.Builder) *jwt.Builder {
			return b.Expiration(time.Now().Add(-time.Hour))
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, g.sign(t, mutate))
			assert.ErrorIs(t, err, ErrGoogleTokenInvalid)
		})
	}
}

func TestGoogleDisabledWithoutClientID(t *testing.T) {
	v := NewGoogleVerifier(config.OAuthConfig{})
	assert.False(t, v.Enabled())

	_, err := v.Verify(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}
