package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/authn"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

type fakeUsers map[int64]*models.User

type failingUsers struct{ err error }

func (f failingUsers) Get(ctx context.Context, id int64) (*models.User, error) {
	return nil, f.err
}

func (f fakeUsers) Get(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func TestMiddleware(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	require.NoError(t, err)

	users := fakeUsers{
		1: {ID: 1, Name: "Ana", Role: models.RoleRadiologist, UnitID: unit(5), IsActive: true},
		2: {ID: 2, Name: "Old", Role: models.RoleRadiologist, UnitID: unit(5), IsActive: false},
	}

	var seen *Principal
	handler := Middleware(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	issue := func(id int64) string {
		tok, err := tokens.Issue(id)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{"active user", issue(1), http.StatusOK},
		{"inactive user", issue(2), http.StatusUnauthorized},
		{"unknown user", issue(3), http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest(http.MethodPost, "/pacsgate.v1.UnitService/ListUnits", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			require.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusOK {
				require.NotNil(t, seen)
				require.Equal(t, int64(1), seen.UserID)
				require.Equal(t, int64(5), *seen.UnitID)
			} else {
				require.Nil(t, seen)
			}
		})
	}
}

func TestPrincipalFromContext(t *testing.T) {
	require.Nil(t, PrincipalFromContext(context.Background()))

	p := &Principal{UserID: 9, Role: models.RoleAdminMaster, Active: true}
	ctx := WithPrincipal(context.Background(), p)
	require.Equal(t, p, PrincipalFromContext(ctx))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{name: "bearer", header: "Bearer abc.def", token: "abc.def", ok: true},
		{name: "surrounding space", header: "Bearer  abc ", token: "abc", ok: true},
		{name: "empty token", header: "Bearer ", ok: false},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", ok: false},
		{name: "no header", header: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			token, ok := bearerToken(h)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.token, token)
			}
		})
	}
}

func TestNewAuthFunc(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	require.NoError(t, err)
	tok, err := tokens.Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		users    UserLookup
		header   string
		expected int
	}{
		{name: "valid token", users: fakeUsers{1: {ID: 1, Role: models.RoleAdminMaster, IsActive: true}}, header: "Bearer " + tok, expected: http.StatusOK},
		{name: "basic credentials", users: fakeUsers{}, header: "Basic dXNlcjpwYXNz", expected: http.StatusUnauthorized},
		{name: "store unavailable", users: failingUsers{err: store.ErrUnavailable}, header: "Bearer " + tok, expected: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *Principal
			handler := authn.NewMiddleware(NewAuthFunc(tokens, tt.users)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			r := httptest.NewRequest(http.MethodPost, "/pacsgate.v1.AuthService/Me", nil)
			r.Header.Set("Content-Type", "application/json")
			r.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			require.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusOK {
				require.NotNil(t, seen)
				require.True(t, seen.IsMaster())
			} else {
				require.Nil(t, seen)
			}
		})
	}
}
