// AngelaMos | 2026
// google.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/classifieds/internal/config"
)

const (
	defaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	googleKeysTTL        = time.Hour
)

var (
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
	ErrGoogleTokenInvalid = errors.New("google id token is invalid")
)

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

type GoogleProfile struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// GoogleVerifier validates Google ID tokens against Google's published
// signing keys. Keys are refetched after googleKeysTTL or when a token
// names a kid the cached set does not hold.
type GoogleVerifier struct {
	clientID string
	jwksURL  string

	mu        sync.Mutex
	keys      jwk.Set
	fetchedAt time.Time
}

func NewGoogleVerifier(cfg config.OAuthConfig) *GoogleVerifier {
	url := cfg.GoogleJWKSURL
	if url == "" {
		url = defaultGoogleJWKSURL
	}
	return &GoogleVerifier{
		clientID: cfg.GoogleClientID,
		jwksURL:  url,
	}
}

func (g *GoogleVerifier) Enabled() bool {
	return g != nil && g.clientID != ""
}

func (g *GoogleVerifier) Verify(
	ctx context.Context,
	idToken string,
) (*GoogleProfile, error) {
	if !g.Enabled() {
		return nil, ErrGoogleDisabled
	}

	keys, err := g.keySet(ctx, false)
	if err != nil {
		return nil, err
	}

	token, err := g.parse(idToken, keys)
	if err != nil {
		// Google rotates keys; retry once against a fresh set.
		keys, ferr := g.keySet(ctx, true)
		if ferr != nil {
			return nil, ferr
		}
		if token, err = g.parse(idToken, keys); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGoogleTokenInvalid, err)
		}
	}

	issuer, _ := token.Issuer()
	if _, ok := googleIssuers[issuer]; !ok {
		return nil, fmt.Errorf("%w: issuer %q", ErrGoogleTokenInvalid, issuer)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrGoogleTokenInvalid)
	}

	var email string
	if err := token.Get("email", &email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrGoogleTokenInvalid)
	}

	var verified bool
	if err := token.Get("email_verified", &verified); err != nil || !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrGoogleTokenInvalid)
	}

	profile := &GoogleProfile{Subject: subject, Email: email}
	//nolint:errcheck // optional claims
	_ = token.Get("name", &profile.Name)
	//nolint:errcheck // optional claims
	_ = token.Get("picture", &profile.AvatarURL)

	if profile.Name == "" {
		profile.Name = email
	}

	return profile, nil
}

func (g *GoogleVerifier) parse(idToken string, keys jwk.Set) (jwt.Token, error) {
	return jwt.Parse(
		[]byte(idToken),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAudience(g.clientID),
		jwt.WithAcceptableSkew(30*time.Second),
	)
}

func (g *GoogleVerifier) keySet(ctx context.Context, force bool) (jwk.Set, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !force && g.keys != nil && time.Since(g.fetchedAt) < googleKeysTTL {
		return g.keys, nil
	}

	keys, err := jwk.Fetch(ctx, g.jwksURL)
	if err != nil {
		if g.keys != nil {
			return g.keys, nil
		}
		return nil, fmt.Errorf("fetch google keys: %w", err)
	}

	g.keys = keys
	g.fetchedAt = time.Now()

	return keys, nil
}
