// Package session keeps the signed-in user in step with the identity
// provider and the service profile.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
)

// ErrProfileUnavailable marks a provider sign-in whose service profile could
// not be loaded. The provider session is ended when it happens.
var ErrProfileUnavailable = errors.New("user profile unavailable")

type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// State is a snapshot of the session. User is set only when authenticated.
type State struct {
	Status Status
	User   *apiclient.User
	Err    error
}

// Profiles loads and creates service profiles with an explicit token, since
// the provider session may not be settled yet when they are called.
type Profiles interface {
	Me(ctx context.Context, token string) (*apiclient.User, error)
	CreateProfile(ctx context.Context, token string, req apiclient.CreateProfileRequest) (*apiclient.User, error)
}

type apiProfiles struct {
	client *apiclient.Client
}

// NewAPIProfiles serves Profiles from the REST API.
func NewAPIProfiles(client *apiclient.Client) Profiles {
	return &apiProfiles{client: client}
}

func (p *apiProfiles) Me(ctx context.Context, token string) (*apiclient.User, error) {
	return p.client.WithToken(token).Auth().Me(ctx)
}

func (p *apiProfiles) CreateProfile(ctx context.Context, token string, req apiclient.CreateProfileRequest) (*apiclient.User, error) {
	return p.client.WithToken(token).Auth().CreateProfile(ctx, req)
}

const profileLoadFailed = "Failed to load user profile. Please try logging in again."

type Store struct {
	provider IdentityProvider
	profiles Profiles
	notifier Notifier
	logger   *slog.Logger

	mu        sync.Mutex
	ctx       context.Context
	state     State
	signingUp bool
	observers map[int]func(State)
	nextObs   int
}

func NewStore(provider IdentityProvider, profiles Profiles, notifier Notifier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Store{
		provider:  provider,
		profiles:  profiles,
		notifier:  notifier,
		logger:    logger,
		ctx:       context.Background(),
		state:     State{Status: StatusLoading},
		observers: make(map[int]func(State)),
	}
}

// Start follows provider events and resolves the initial state from the
// provider's current user. The returned func stops following.
func (s *Store) Start(ctx context.Context) (stop func()) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	unsubscribe := s.provider.OnAuthStateChanged(s.handleProviderChange)
	s.handleProviderChange(s.provider.CurrentUser())
	return unsubscribe
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the signed-in profile or nil.
func (s *Store) User() *apiclient.User {
	return s.State().User
}

// IDToken lets the store act as the API client's token source.
func (s *Store) IDToken(ctx context.Context) (string, error) {
	if s.provider.CurrentUser() == nil {
		return "", nil
	}
	return s.provider.IDToken(ctx)
}

// Subscribe registers fn for every state change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextObs++
	id := s.nextObs
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Login signs in with the provider. The profile is loaded by the resulting
// provider event.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	if err := s.provider.SignIn(ctx, email, password); err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		s.notifier.Notify(LevelError, userMessage(err, "Login failed"))
		return false
	}
	return true
}

// Signup creates the provider account and then the service profile. A
// profile failure deletes the provider account again.
func (s *Store) Signup(ctx context.Context, name, email, password string, role apiclient.Role) bool {
	s.setSigningUp(true)
	defer s.setSigningUp(false)

	account, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		s.logger.Warn("Provider sign-up failed", "email", email, "error", err)
		s.notifier.Notify(LevelError, userMessage(err, "Signup failed"))
		return false
	}

	user, err := s.createProfile(ctx, account, name, email, role)
	if err != nil {
		s.logger.Error("Profile creation failed", "uid", account.UID, "error", err)
		s.notifier.Notify(LevelError, userMessage(err, "Signup failed"))
		if derr := s.provider.DeleteCurrentUser(ctx); derr != nil {
			s.logger.Debug("Provider account cleanup failed", "uid", account.UID, "error", derr)
		}
		s.set(State{Status: StatusUnauthenticated})
		return false
	}

	s.set(State{Status: StatusAuthenticated, User: user})
	return true
}

func (s *Store) createProfile(ctx context.Context, account *ProviderUser, name, email string, role apiclient.Role) (*apiclient.User, error) {
	token, err := s.provider.IDToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get id token: %w", err)
	}
	return s.profiles.CreateProfile(ctx, token, apiclient.CreateProfileRequest{
		ProviderUID: account.UID,
		Email:       email,
		Name:        name,
		Role:        role,
	})
}

func (s *Store) Logout(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	if s.State().Status != StatusUnauthenticated {
		s.set(State{Status: StatusUnauthenticated})
	}
	if err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *Store) handleProviderChange(account *ProviderUser) {
	s.mu.Lock()
	if s.signingUp {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	current := s.state.Status
	s.mu.Unlock()

	if account == nil {
		if current != StatusUnauthenticated {
			s.set(State{Status: StatusUnauthenticated})
		}
		return
	}

	user, err := s.loadProfile(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
		s.logger.Error("Failed to load profile", "uid", account.UID, "error", err)
		s.notifier.Notify(LevelError, profileLoadFailed)
		s.set(State{Status: StatusUnauthenticated, Err: err})
		if serr := s.provider.SignOut(ctx); serr != nil {
			s.logger.Warn("Provider sign-out failed", "uid", account.UID, "error", serr)
		}
		return
	}
	s.set(State{Status: StatusAuthenticated, User: user})
}

func (s *Store) loadProfile(ctx context.Context) (*apiclient.User, error) {
	token, err := s.provider.IDToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.profiles.Me(ctx, token)
}

func (s *Store) setSigningUp(v bool) {
	s.mu.Lock()
	s.signingUp = v
	s.mu.Unlock()
}

func (s *Store) set(state State) {
	s.mu.Lock()
	s.state = state
	observers := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

// userMessage prefers the service's error detail over the raw error text.
func userMessage(err error, fallback string) string {
	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
