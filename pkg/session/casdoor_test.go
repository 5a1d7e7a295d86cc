package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/golang-jwt/jwt/v4"
)

type fakeDirectory struct {
	added   []*casdoorsdk.User
	deleted []*casdoorsdk.User
}

func (d *fakeDirectory) AddUser(user *casdoorsdk.User) (bool, error) {
	d.added = append(d.added, user)
	return true, nil
}

func (d *fakeDirectory) DeleteUser(user *casdoorsdk.User) (bool, error) {
	d.deleted = append(d.deleted, user)
	return true, nil
}

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func newCasdoorServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login/oauth/access_token" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		username := r.PostForm.Get("username")
		if r.PostForm.Get("grant_type") != "password" || r.PostForm.Get("password") != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		access := mintToken(t, jwt.MapClaims{
			"id":          "uid-" + username,
			"name":        username,
			"email":       username + "@school.edu",
			"displayName": "Ana",
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": access,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCasdoorProvider_SignInAndOut(t *testing.T) {
	srv := newCasdoorServer(t)
	p := newCasdoorProvider(CasdoorConfig{Endpoint: srv.URL, ClientID: "id", ClientSecret: "s", Organization: "edunexus"}, &fakeDirectory{})

	var events []*ProviderUser
	unsubscribe := p.OnAuthStateChanged(func(u *ProviderUser) { events = append(events, u) })
	defer unsubscribe()

	if err := p.SignIn(context.Background(), "ana", "secret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	user := p.CurrentUser()
	if user == nil || user.UID != "uid-ana" || user.Email != "ana@school.edu" || user.DisplayName != "Ana" {
		t.Fatalf("CurrentUser() = %+v", user)
	}
	token, err := p.IDToken(context.Background())
	if err != nil || strings.Count(token, ".") != 2 {
		t.Errorf("IDToken() = %q, %v", token, err)
	}

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if p.CurrentUser() != nil {
		t.Error("still signed in")
	}
	if token, _ := p.IDToken(context.Background()); token != "" {
		t.Errorf("IDToken() after sign-out = %q", token)
	}
	if len(events) != 2 || events[0] == nil || events[1] != nil {
		t.Errorf("events = %v", events)
	}
}

func TestCasdoorProvider_SignInRejected(t *testing.T) {
	srv := newCasdoorServer(t)
	p := newCasdoorProvider(CasdoorConfig{Endpoint: srv.URL}, &fakeDirectory{})

	called := false
	p.OnAuthStateChanged(func(*ProviderUser) { called = true })

	if err := p.SignIn(context.Background(), "ana", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if called || p.CurrentUser() != nil {
		t.Error("rejected sign-in changed state")
	}
}

func TestCasdoorProvider_SignUpAndDelete(t *testing.T) {
	srv := newCasdoorServer(t)
	dir := &fakeDirectory{}
	p := newCasdoorProvider(CasdoorConfig{Endpoint: srv.URL, Organization: "edunexus"}, dir)

	user, err := p.SignUp(context.Background(), "Ana@school.edu", "secret")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if len(dir.added) != 1 {
		t.Fatalf("added = %d", len(dir.added))
	}
	added := dir.added[0]
	if added.Owner != "edunexus" || added.Email != "Ana@school.edu" || !strings.HasPrefix(added.Name, "ana-") {
		t.Errorf("added = %+v", added)
	}
	if user.UID != "uid-"+added.Name {
		t.Errorf("UID = %q", user.UID)
	}

	if err := p.DeleteCurrentUser(context.Background()); err != nil {
		t.Fatalf("DeleteCurrentUser() error = %v", err)
	}
	if len(dir.deleted) != 1 || dir.deleted[0].Name != added.Name {
		t.Errorf("deleted = %+v", dir.deleted)
	}
	if p.CurrentUser() != nil {
		t.Error("still signed in after delete")
	}
}

func TestUserFromToken(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantUID string
		wantErr error
	}{
		{name: "casdoor id", claims: jwt.MapClaims{"id": "u1", "sub": "other"}, wantUID: "u1"},
		{name: "subject fallback", claims: jwt.MapClaims{"sub": "u2"}, wantUID: "u2"},
		{name: "no subject", claims: jwt.MapClaims{"email": "a@b.c"}, wantErr: ErrMissingSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := userFromToken(mintToken(t, tt.claims))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("userFromToken() error = %v", err)
			}
			if user.UID != tt.wantUID {
				t.Errorf("UID = %q, want %q", user.UID, tt.wantUID)
			}
		})
	}

	if _, err := userFromToken("not-a-jwt"); err == nil {
		t.Error("expected decode error")
	}
}
