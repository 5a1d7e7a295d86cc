package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var ErrMissingSubject = errors.New("token carries no user id")

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// userDirectory is the part of the Casdoor admin API used for sign-up.
type userDirectory interface {
	AddUser(user *casdoorsdk.User) (bool, error)
	DeleteUser(user *casdoorsdk.User) (bool, error)
}

// CasdoorProvider signs users in with the OAuth password grant against a
// Casdoor application.
type CasdoorProvider struct {
	cfg   CasdoorConfig
	oauth *oauth2.Config
	users userDirectory

	mu     sync.Mutex
	tokens oauth2.TokenSource
	user   *ProviderUser
	subs   listeners
}

func NewCasdoorProvider(cfg CasdoorConfig) *CasdoorProvider {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return newCasdoorProvider(cfg, client)
}

func newCasdoorProvider(cfg CasdoorConfig, users userDirectory) *CasdoorProvider {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	return &CasdoorProvider{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   endpoint + "/login/oauth/authorize",
				TokenURL:  endpoint + "/api/login/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"openid", "profile", "email"},
		},
		users: users,
	}
}

func (p *CasdoorProvider) SignIn(ctx context.Context, email, password string) error {
	tok, err := p.oauth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return fmt.Errorf("casdoor sign-in failed: %w", err)
	}
	user, err := userFromToken(rawIDToken(tok))
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.tokens = p.oauth.TokenSource(context.Background(), tok)
	p.user = user
	fns := p.subs.snapshot()
	p.mu.Unlock()

	for _, fn := range fns {
		fn(copyUser(user))
	}
	return nil
}

// SignUp registers the account in the organization and signs it in.
func (p *CasdoorProvider) SignUp(ctx context.Context, email, password string) (*ProviderUser, error) {
	name := accountName(email)
	ok, err := p.users.AddUser(&casdoorsdk.User{
		Owner:       p.cfg.Organization,
		Name:        name,
		Email:       email,
		Password:    password,
		DisplayName: strings.SplitN(email, "@", 2)[0],
		Type:        "normal-user",
	})
	if err != nil {
		return nil, fmt.Errorf("casdoor sign-up failed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("casdoor rejected account %s", email)
	}

	if err := p.SignIn(ctx, name, password); err != nil {
		return nil, err
	}
	return p.CurrentUser(), nil
}

func (p *CasdoorProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	wasSignedIn := p.user != nil
	p.tokens = nil
	p.user = nil
	fns := p.subs.snapshot()
	p.mu.Unlock()

	if wasSignedIn {
		for _, fn := range fns {
			fn(nil)
		}
	}
	return nil
}

// DeleteCurrentUser removes the signed-in account and ends the session.
func (p *CasdoorProvider) DeleteCurrentUser(ctx context.Context) error {
	user := p.CurrentUser()
	if user == nil {
		return nil
	}
	if _, err := p.users.DeleteUser(&casdoorsdk.User{Owner: p.cfg.Organization, Name: user.Name}); err != nil {
		return fmt.Errorf("casdoor delete user failed: %w", err)
	}
	return p.SignOut(ctx)
}

func (p *CasdoorProvider) CurrentUser() *ProviderUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyUser(p.user)
}

// IDToken returns the current token, refreshing it when expired. It is
// empty when nobody is signed in.
func (p *CasdoorProvider) IDToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	ts := p.tokens
	p.mu.Unlock()
	if ts == nil {
		return "", nil
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("casdoor token refresh failed: %w", err)
	}
	return rawIDToken(tok), nil
}

func (p *CasdoorProvider) OnAuthStateChanged(fn func(*ProviderUser)) func() {
	p.mu.Lock()
	id := p.subs.add(fn)
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.subs.remove(id)
		p.mu.Unlock()
	}
}

type casdoorClaims struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	UserID      string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// userFromToken reads the identity out of a Casdoor JWT. The signature is
// checked by the service, not here.
func userFromToken(raw string) (*ProviderUser, error) {
	var claims casdoorClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode casdoor token: %w", err)
	}
	uid := claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, ErrMissingSubject
	}
	return &ProviderUser{
		UID:         uid,
		Email:       claims.Email,
		Name:        claims.Name,
		DisplayName: claims.DisplayName,
	}, nil
}

func rawIDToken(tok *oauth2.Token) string {
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		return idToken
	}
	return tok.AccessToken
}

func accountName(email string) string {
	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	return local + "-" + uuid.NewString()[:8]
}

func copyUser(u *ProviderUser) *ProviderUser {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
