package sec

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stolasapp/whisper/internal/storage"
	"github.com/stolasapp/whisper/internal/storage/db"
)

type fakeUsers map[string]db.User

func (f fakeUsers) GetUserByName(_ context.Context, name string) (db.User, error) {
	if name == "broken" {
		return db.User{}, errors.New("database is locked")
	}
	user, ok := f[name]
	if !ok {
		return db.User{}, storage.ErrNotFound
	}
	return user, nil
}

func newFakeUsers(t *testing.T) fakeUsers {
	t.Helper()
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	return fakeUsers{
		"alice":   {ID: 1, Name: "alice", Role: db.RoleUser, PasswordHash: hash},
		"corrupt": {ID: 2, Name: "corrupt", Role: db.RoleUser, PasswordHash: []byte("garbage")},
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	users := newFakeUsers(t)
	hasher := NewHasher(bcrypt.MinCost, 1)

	tests := []struct {
		name    string
		header  string
		wantID  uint64
		kind    Kind
		message string
	}{
		{name: "valid", header: EncodeBasicAuth("alice", "secret"), wantID: 1},
		{name: "wrong password", header: EncodeBasicAuth("alice", "nope"), kind: KindUnauthorized, message: invalidCredentials},
		{name: "unknown user", header: EncodeBasicAuth("mallory", "secret"), kind: KindUnauthorized, message: invalidCredentials},
		{name: "empty password", header: EncodeBasicAuth("alice", ""), kind: KindUnauthorized, message: invalidCredentials},
		{name: "missing header", header: "", kind: KindUnauthorized, message: "missing header"},
		{name: "wrong scheme", header: "Bearer xyz", kind: KindUnauthorized, message: "invalid scheme"},
		{name: "malformed", header: "Basic " + b64("nocolon"), kind: KindBadRequest, message: "malformed credentials"},
		{name: "corrupt hash", header: EncodeBasicAuth("corrupt", "secret"), kind: KindHashing, message: "failed to verify password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user, err := Authenticate(t.Context(), tt.header, users, hasher)
			if tt.kind != KindUnknown {
				require.EqualError(t, err, tt.message)
				assert.Equal(t, tt.kind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
		})
	}

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()
		_, err := Authenticate(t.Context(), EncodeBasicAuth("broken", "secret"), users, hasher)
		require.Error(t, err)
		assert.Equal(t, KindUnknown, KindOf(err))
		assert.Contains(t, err.Error(), "database is locked")
	})
}

func TestAuthorizeAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		kind   Kind
	}{
		{name: "valid", header: EncodeBasicAuth("root", "toor")},
		{name: "wrong password", header: EncodeBasicAuth("root", "nope"), kind: KindForbidden},
		{name: "wrong username", header: EncodeBasicAuth("admin", "toor"), kind: KindForbidden},
		{name: "case sensitive", header: EncodeBasicAuth("Root", "toor"), kind: KindForbidden},
		{name: "missing header", header: "", kind: KindUnauthorized},
		{name: "bad encoding", header: "Basic ###", kind: KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := AuthorizeAdmin(tt.header, "root", "toor")
			if tt.kind == KindUnknown {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func serve(t *testing.T, handler http.Handler, header string) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body errorBody
	if rec.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestNewUserAuthMiddleware(t *testing.T) {
	t.Parallel()

	var seen db.User
	handler := NewUserAuthMiddleware(newFakeUsers(t), NewHasher(bcrypt.MinCost, 1)).
		Wrap(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = GetAuthenticatedUser(r.Context())
		}))

	rec, _ := serve(t, handler, EncodeBasicAuth("alice", "secret"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", seen.Name)

	rec, body := serve(t, handler, EncodeBasicAuth("alice", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", body.Code)
	assert.Equal(t, invalidCredentials, body.Message)

	rec, body = serve(t, handler, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing header", body.Message)

	rec, body = serve(t, handler, "Basic "+b64("nocolon"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", body.Code)
}

func TestNewAdminAuthMiddleware(t *testing.T) {
	t.Parallel()

	var (
		op    Operator
		found bool
	)
	handler := NewAdminAuthMiddleware("root", "toor").
		Wrap(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			op, found = GetOperator(r.Context())
		}))

	rec, _ := serve(t, handler, EncodeBasicAuth("root", "toor"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, "root", op.Name)

	rec, body := serve(t, handler, EncodeBasicAuth("root", "nope"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "permission_denied", body.Code)
	assert.Equal(t, "not authorized", body.Message)
}

func TestAuthenticatedUserContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, db.User{}, GetAuthenticatedUser(t.Context()))
	_, ok := GetOperator(t.Context())
	assert.False(t, ok)

	user := db.User{ID: 7, Name: "bob"}
	ctx := SetAuthenticatedUser(t.Context(), user)
	assert.Equal(t, user, GetAuthenticatedUser(ctx))
	_, ok = GetOperator(ctx)
	assert.False(t, ok)
}
