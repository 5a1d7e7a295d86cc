package casdoor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

type mockParser struct {
	claims map[string]*casdoorsdk.Claims
	calls  int
}

func (m *mockParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	m.calls++
	if c, ok := m.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("signature mismatch")
}

func newClaims(id, email, display, userType string) *casdoorsdk.Claims {
	c := &casdoorsdk.Claims{}
	c.User.Id = id
	c.User.Email = email
	c.User.DisplayName = display
	c.User.Type = userType
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	return c
}

func newCachedVerifier(t *testing.T, parser TokenParser) (*IdentityVerifier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewIdentityVerifier(parser, cache.NewCacheManager(client)), mr
}

func TestIdentityVerifier_Verify(t *testing.T) {
	parser := &mockParser{claims: map[string]*casdoorsdk.Claims{
		"teacher-token": newClaims("uid-1", "t@school.edu", "Ms T", "teacher"),
		"plain-token":   newClaims("uid-2", "p@school.edu", "", "normal-user"),
		"empty-token":   newClaims("", "", "", ""),
	}}
	v := NewIdentityVerifier(parser, cache.NewCacheManager(nil))

	tests := []struct {
		name     string
		token    string
		want     *models.Identity
		wantFail bool
	}{
		{
			name:  "teacher claims",
			token: "teacher-token",
			want:  &models.Identity{UID: "uid-1", Email: "t@school.edu", Name: "Ms T", Role: models.RoleTeacher},
		},
		{
			name:  "unknown type has no role",
			token: "plain-token",
			want:  &models.Identity{UID: "uid-2", Email: "p@school.edu"},
		},
		{name: "missing subject", token: "empty-token", wantFail: true},
		{name: "bad signature", token: "forged", wantFail: true},
		{name: "blank token", token: " ", wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(context.Background(), tt.token)
			if tt.wantFail {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if *got != *tt.want {
				t.Errorf("Verify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIdentityVerifier_CachesByToken(t *testing.T) {
	parser := &mockParser{claims: map[string]*casdoorsdk.Claims{
		"tok": newClaims("uid-1", "t@school.edu", "Ms T", "teacher"),
	}}
	v, mr := newCachedVerifier(t, parser)

	for i := 0; i < 3; i++ {
		if _, err := v.Verify(context.Background(), "tok"); err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
	}
	if parser.calls != 1 {
		t.Errorf("parser called %d times, want 1", parser.calls)
	}
	if !mr.Exists("identity:" + tokenKey("tok")) {
		t.Error("expected identity cached under token hash")
	}
}

func TestIdentityVerifier_ExpiredTokenNotServedFromCache(t *testing.T) {
	now := time.Now()
	claims := newClaims("uid-1", "t@school.edu", "Ms T", "teacher")
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Second))
	parser := &mockParser{claims: map[string]*casdoorsdk.Claims{"short": claims}}
	v, mr := newCachedVerifier(t, parser)
	v.now = func() time.Time { return now }

	if _, err := v.Verify(context.Background(), "short"); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	key := "identity:" + tokenKey("short")
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Second {
		t.Errorf("cache ttl = %v, want capped at token lifetime", ttl)
	}

	// The signature check rejects the token once it has expired.
	delete(parser.claims, "short")
	v.now = func() time.Time { return now.Add(2 * time.Second) }

	if _, err := v.Verify(context.Background(), "short"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify(expired) error = %v, want ErrInvalidToken", err)
	}
	if mr.Exists(key) {
		t.Error("expired identity still cached")
	}
}

func TestIdentityVerifier_CacheExpiry(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name       string
		expiresAt  *jwt.NumericDate
		wantErr    bool
		wantCached bool
	}{
		{name: "no expiry is not cached", expiresAt: nil, wantCached: false},
		{name: "already expired", expiresAt: jwt.NewNumericDate(now.Add(-time.Minute)), wantErr: true},
		{name: "long lived is cached", expiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)), wantCached: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := newClaims("uid-1", "t@school.edu", "Ms T", "teacher")
			claims.ExpiresAt = tt.expiresAt
			v, mr := newCachedVerifier(t, &mockParser{claims: map[string]*casdoorsdk.Claims{"tok": claims}})
			v.now = func() time.Time { return now }

			_, err := v.Verify(context.Background(), "tok")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			key := "identity:" + tokenKey("tok")
			if got := mr.Exists(key); got != tt.wantCached {
				t.Errorf("cached = %v, want %v", got, tt.wantCached)
			}
			if tt.wantCached {
				if ttl := mr.TTL(key); ttl > cache.IdentityCacheConfig.TTL {
					t.Errorf("cache ttl = %v, want at most %v", ttl, cache.IdentityCacheConfig.TTL)
				}
			}
		})
	}
}
