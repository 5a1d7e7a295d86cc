package casdoor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/config"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenParser is the slice of the Casdoor client the verifier needs.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// IdentityVerifier turns Casdoor-issued bearer tokens into identities and
// remembers the result per token hash until the token expires.
type IdentityVerifier struct {
	parser TokenParser
	cache  *cache.CacheHelper
	now    func() time.Time
}

// cachedIdentity carries the token expiry so a hit can be rejected once
// the token is no longer valid.
type cachedIdentity struct {
	Identity  models.Identity `json:"identity"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
}

func NewIdentityVerifier(parser TokenParser, cm *cache.CacheManager) *IdentityVerifier {
	return &IdentityVerifier{
		parser: parser,
		cache:  cm.Identity,
		now:    time.Now,
	}
}

// Verify checks the token signature and returns the identity it carries.
func (v *IdentityVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}

	key := tokenKey(token)
	var cached cachedIdentity
	if err := v.cache.Get(ctx, key, &cached); err == nil {
		if v.now().Before(cached.ExpiresAt) {
			return &cached.Identity, nil
		}
		cache.SafeDelete(ctx, v.cache, key)
	}

	claims, err := v.parser.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	identity, err := identityFromClaims(claims)
	if err != nil {
		return nil, err
	}

	// Tokens without an expiry are never cached.
	if claims.ExpiresAt == nil {
		return identity, nil
	}
	expiresAt := claims.ExpiresAt.Time
	ttl := expiresAt.Sub(v.now())
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	ttl = min(ttl, cache.IdentityCacheConfig.TTL)

	entry := cachedIdentity{Identity: *identity, ExpiresAt: expiresAt}
	if err := v.cache.Set(ctx, key, entry, ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache identity", "error", err)
	}
	return identity, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func identityFromClaims(claims *casdoorsdk.Claims) (*models.Identity, error) {
	if claims == nil {
		return nil, ErrInvalidToken
	}

	uid := claims.User.Id
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	name := claims.User.DisplayName
	if name == "" {
		name = claims.User.Name
	}

	return &models.Identity{
		UID:   uid,
		Email: claims.User.Email,
		Name:  name,
		Role:  mapCasdoorRole(claims.User.Type),
	}, nil
}

// mapCasdoorRole maps the Casdoor user type onto an application role. An
// unknown type yields no role; the profile decides in that case.
func mapCasdoorRole(casdoorType string) models.UserRole {
	switch strings.ToLower(casdoorType) {
	case "teacher", "instructor", "educator":
		return models.RoleTeacher
	case "student", "learner":
		return models.RoleStudent
	default:
		return ""
	}
}
