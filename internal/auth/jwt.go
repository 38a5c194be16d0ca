// AngelaMos | 2026
// jwt.go

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/classifieds/internal/config"
	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

const (
	claimRole    = "role"
	claimTier    = "tier"
	claimVersion = "token_version"
	claimKind    = "type"
	kindAccess   = "access"
)

// JWTManager signs ES256 access tokens and publishes the verifying key as
// a JWKS document for other services.
type JWTManager struct {
	signing jwk.Key
	verify  jwk.Key
	jwks    jwk.Set
	keyID   string
	cfg     config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	pemBytes, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	signing, err := jwk.ParseKey(pemBytes, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	keyID, ok := signing.KeyID()
	if !ok || keyID == "" {
		keyID = newKeyID()
	}
	if err := stamp(signing, keyID); err != nil {
		return nil, err
	}

	verify, err := signing.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive verifying key: %w", err)
	}
	if err := verify.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("mark key usage: %w", err)
	}

	jwks := jwk.NewSet()
	if err := jwks.AddKey(verify); err != nil {
		return nil, fmt.Errorf("build jwks: %w", err)
	}

	return &JWTManager{
		signing: signing,
		verify:  verify,
		jwks:    jwks,
		keyID:   keyID,
		cfg:     cfg,
	}, nil
}

func newKeyID() string {
	return uuid.NewString()[:8]
}

func stamp(key jwk.Key, keyID string) error {
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return fmt.Errorf("set key id: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return fmt.Errorf("set key algorithm: %w", err)
	}
	return nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM. The private half
// is readable by the owner only.
func GenerateKeyPair(privatePath, publicPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate p-256 key: %w", err)
	}

	private, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import key: %w", err)
	}
	if err := stamp(private, newKeyID()); err != nil {
		return err
	}
	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	for _, out := range []struct {
		path string
		key  jwk.Key
		mode os.FileMode
	}{
		{privatePath, private, 0o600},
		{publicPath, public, 0o644},
	} {
		encoded, err := jwk.Pem(out.key)
		if err != nil {
			return fmt.Errorf("encode %s: %w", out.path, err)
		}
		if err := os.WriteFile(out.path, encoded, out.mode); err != nil {
			return fmt.Errorf("write %s: %w", out.path, err)
		}
	}
	return nil
}

type AccessTokenClaims struct {
	UserID       string
	Role         string
	Tier         string
	TokenVersion int
}

func (m *JWTManager) CreateAccessToken(c AccessTokenClaims) (string, error) {
	now := time.Now()

	tok, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(m.cfg.Issuer).
		Audience([]string{m.cfg.Audience}).
		Subject(c.UserID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(m.cfg.AccessTokenExpire)).
		Claim(claimKind, kindAccess).
		Claim(claimRole, c.Role).
		Claim(claimTier, c.Tier).
		Claim(claimVersion, c.TokenVersion).
		Build()
	if err != nil {
		return "", fmt.Errorf("build access token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.ES256(), m.signing))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return string(signed), nil
}

// ParseAccessToken checks the signature and registered claims only.
// Revocation and account state are Service.VerifyAccessToken's job.
func (m *JWTManager) ParseAccessToken(raw string) (*middleware.Session, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verify),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(m.cfg.Audience),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("parse access token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse access token: %w", core.ErrTokenInvalid)
	}

	invalid := func(what string) error {
		return fmt.Errorf("parse access token: %s: %w", what, core.ErrTokenInvalid)
	}

	var kind, role, tier string
	var version float64
	if tok.Get(claimKind, &kind) != nil || kind != kindAccess {
		return nil, invalid("not an access token")
	}
	if tok.Get(claimRole, &role) != nil || tok.Get(claimTier, &tier) != nil {
		return nil, invalid("missing role or tier")
	}
	if tok.Get(claimVersion, &version) != nil {
		return nil, invalid("missing token version")
	}

	sub, _ := tok.Subject()
	jti, _ := tok.JwtID()
	if sub == "" || jti == "" {
		return nil, invalid("missing subject or id")
	}
	exp, _ := tok.Expiration()

	return &middleware.Session{
		UserID:       sub,
		Role:         role,
		Tier:         tier,
		TokenVersion: int(version),
		TokenID:      jti,
		ExpiresAt:    exp,
	}, nil
}

func (m *JWTManager) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/jwk-set+json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if err := json.NewEncoder(w).Encode(m.jwks); err != nil {
			core.InternalServerError(w, err)
		}
	}
}

func (m *JWTManager) KeyID() string {
	return m.keyID
}

func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.cfg.AccessTokenExpire
}

func (m *JWTManager) RefreshTokenTTL() time.Duration {
	return m.cfg.RefreshTokenExpire
}
