package session

import "context"

// ProviderUser is the identity as the provider sees it, before any profile
// lookup.
type ProviderUser struct {
	UID         string
	Email       string
	Name        string
	DisplayName string
}

// IdentityProvider abstracts the hosted identity service. OnAuthStateChanged
// delivers nil when the provider signs out.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (*ProviderUser, error)
	SignOut(ctx context.Context) error
	DeleteCurrentUser(ctx context.Context) error
	CurrentUser() *ProviderUser
	IDToken(ctx context.Context) (string, error)
	OnAuthStateChanged(fn func(*ProviderUser)) (unsubscribe func())
}

// listeners is the subscription list shared by providers.
type listeners struct {
	next int
	fns  map[int]func(*ProviderUser)
}

func (l *listeners) add(fn func(*ProviderUser)) int {
	if l.fns == nil {
		l.fns = make(map[int]func(*ProviderUser))
	}
	l.next++
	l.fns[l.next] = fn
	return l.next
}

func (l *listeners) remove(id int) {
	delete(l.fns, id)
}

func (l *listeners) snapshot() []func(*ProviderUser) {
	out := make([]func(*ProviderUser), 0, len(l.fns))
	for _, fn := range l.fns {
		out = append(out, fn)
	}
	return out
}
