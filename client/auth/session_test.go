package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/lore/client"
	"github.com/viant/lore/client/auth/mock"
	"github.com/viant/lore/client/auth/store"
	"github.com/viant/lore/client/auth/transport"
	"github.com/viant/lore/schema"
)

type fixture struct {
	service *mock.HTTPTestService
	store   store.Store
	client  *client.Client
	session *Session
	expired atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	ret := &fixture{service: mock.NewHTTPTestService(), store: store.NewMemoryStore()}
	t.Cleanup(ret.service.Close)
	rt, err := transport.New(transport.WithStore(ret.store), transport.WithOnExpired(func() {
		ret.session.Invalidate()
	}))
	require.NoError(t, err)
	ret.client, err = client.New(ret.service.URL, client.WithTransport(rt))
	require.NoError(t, err)
	ret.session = NewSession(ret.client, ret.store)
	require.NoError(t, ret.session.OnInvalidate(func() { ret.expired.Add(1) }))
	return ret
}

func TestSession_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.session.Login(ctx, "ada@lore.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@lore.test", user.Email)
	assert.Same(t, user, f.session.User())

	pair, err := store.LoadPair(ctx, f.store)
	require.NoError(t, err)
	assert.Equal(t, f.service.Tokens(), *pair)
	signedIn, err := f.session.SignedIn(ctx)
	require.NoError(t, err)
	assert.True(t, signedIn)

	reloaded, err := f.session.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, reloaded.ID)
}

func TestSession_LoginRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.Login(ctx, "ada@lore.test", "wrong")
	var validationErr *schema.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"Unable to log in with provided credentials."}, validationErr.Field("non_field_errors"))
	assert.Nil(t, f.session.User())
	signedIn, err := f.session.SignedIn(ctx)
	require.NoError(t, err)
	assert.False(t, signedIn)
	assert.EqualValues(t, 0, f.expired.Load())
}

func TestSession_Register(t *testing.T) {
	var testCases = []struct {
		description string
		form        *schema.Registration
		expectErr   map[string][]string
		hasAvatar   bool
	}{
		{
			description: "json registration",
			form:        &schema.Registration{FirstName: "Grace", LastName: "Hopper", Email: "grace@lore.test", Password1: "cobol-1959", Password2: "cobol-1959"},
		},
		{
			description: "multipart registration with avatar",
			form:        &schema.Registration{FirstName: "Alan", Email: "alan@lore.test", Password1: "enigma-1941", Password2: "enigma-1941", Avatar: []byte("png"), AvatarName: "alan.png"},
			hasAvatar:   true,
		},
		{
			description: "field errors",
			form:        &schema.Registration{Email: "ada@lore.test", Password1: "short", Password2: "other"},
			expectErr: map[string][]string{
				"email":            {"A user is already registered with this e-mail address."},
				"password1":        {"This password is too short. It must contain at least 8 characters."},
				"non_field_errors": {"The two password fields didn't match."},
			},
		},
	}
	for _, testCase := range testCases {
		f := newFixture(t)
		ctx := context.Background()
		user, err := f.session.Register(ctx, testCase.form)
		if testCase.expectErr != nil {
			var validationErr *schema.ValidationError
			require.True(t, errors.As(err, &validationErr), testCase.description)
			assert.Equal(t, testCase.expectErr, validationErr.Fields, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.form.Email, user.Email, testCase.description)
		assert.Equal(t, testCase.hasAvatar, user.Avatar != nil, testCase.description)
		signedIn, err := f.session.SignedIn(ctx)
		require.NoError(t, err)
		assert.True(t, signedIn, testCase.description)
	}
}

func TestSession_RegisterWithoutTokens(t *testing.T) {
	var testCases = []struct {
		description string
		response    string
		expectUser  bool
		expectErr   error
	}{
		{description: "verification pending", response: `{"detail":"Verification e-mail sent."}`, expectErr: ErrVerificationPending},
		{description: "created user", response: `{"user":{"id":42,"first_name":"Grace","last_name":"Hopper","email":"new@lore.test","avatar":null}}`, expectUser: true},
	}
	for _, testCase := range testCases {
		f := newFixture(t)
		response := testCase.response
		f.service.RegistrationHandler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(response))
		}
		user, err := f.session.Register(context.Background(), &schema.Registration{Email: "new@lore.test", Password1: "password-1", Password2: "password-1"})
		if testCase.expectErr != nil {
			assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
			assert.Nil(t, user, testCase.description)
		} else {
			require.NoError(t, err, testCase.description)
			require.NotNil(t, user, testCase.description)
			assert.Equal(t, 42, user.ID, testCase.description)
			assert.Nil(t, f.session.User(), testCase.description)
		}
		signedIn, err := f.session.SignedIn(context.Background())
		require.NoError(t, err)
		assert.False(t, signedIn, testCase.description)
	}
}

func TestSession_DeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.Login(ctx, f.service.Email, f.service.Password)
	require.NoError(t, err)
	f.service.AddGroups(schema.Group{ID: 1, Name: "Book club"})
	groups := client.InfiniteQuery[schema.Group](f.client, client.Get(schema.PathGroups))
	require.NoError(t, groups.FetchNextPage(ctx))

	require.NoError(t, f.session.DeleteAccount(ctx))
	assert.Nil(t, f.session.User())
	pair, err := store.LoadPair(ctx, f.store)
	require.NoError(t, err)
	assert.Empty(t, pair.Access)
	assert.Empty(t, pair.Refresh)
	assert.Empty(t, groups.Data().Pages)
	assert.Equal(t, client.StatusIdle, groups.Status())
	assert.EqualValues(t, 0, f.expired.Load())

	_, err = f.session.Login(ctx, f.service.Email, f.service.Password)
	assert.Error(t, err, "deleted account cannot sign in")
}

func TestSession_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.Login(ctx, f.service.Email, f.service.Password)
	require.NoError(t, err)
	f.service.AddGroups(schema.Group{ID: 1, Name: "Book club"})
	groups := client.InfiniteQuery[schema.Group](f.client, client.Get(schema.PathGroups))
	require.NoError(t, groups.FetchNextPage(ctx))

	require.NoError(t, f.session.Logout(ctx))
	assert.Nil(t, f.session.User())
	pair, err := store.LoadPair(ctx, f.store)
	require.NoError(t, err)
	assert.Equal(t, &schema.TokenPair{}, pair)
	assert.Equal(t, client.StatusIdle, groups.Status())
	assert.Equal(t, schema.TokenPair{}, f.service.Tokens(), "server side logout")

	f.service.LogoutHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	_, err = f.session.Login(ctx, f.service.Email, f.service.Password)
	require.NoError(t, err)
	require.NoError(t, f.session.Logout(ctx), "logout is best effort")
	signedIn, err := f.session.SignedIn(ctx)
	require.NoError(t, err)
	assert.False(t, signedIn)
}

func TestSession_InvalidatedOnRefreshFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.Login(ctx, f.service.Email, f.service.Password)
	require.NoError(t, err)

	f.service.Accept("", "")
	_, err = f.session.Reload(ctx)
	assert.True(t, schema.IsAuthExpired(err))
	assert.EqualValues(t, 1, f.expired.Load())
	assert.Nil(t, f.session.User())
	pair, err := store.LoadPair(ctx, f.store)
	require.NoError(t, err)
	assert.Equal(t, &schema.TokenPair{}, pair)

	_, err = f.session.Reload(ctx)
	assert.True(t, schema.IsAuthExpired(err))
	assert.EqualValues(t, 1, f.expired.Load(), "nothing left to expire")
}

func TestSession_OnInvalidate(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.session.OnInvalidate(func() {}), ErrListenerRegistered)
	f.session.Invalidate()
	assert.EqualValues(t, 1, f.expired.Load())

	session := NewSession(f.client, f.store)
	session.Invalidate()
	require.NoError(t, session.OnInvalidate(func() {}))
}

func TestSession_Claims(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.Claims(ctx)
	assert.Error(t, err)

	user, err := f.session.Login(ctx, f.service.Email, f.service.Password)
	require.NoError(t, err)
	claims, err := f.session.Claims(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, strconv.Itoa(user.ID), claims.Subject)
	assert.Equal(t, "access", claims.TokenType)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(f.service.AccessTTL), claims.ExpiresAt.Time, time.Minute)

	token, err := f.session.TokenSource(ctx).Token()
	require.NoError(t, err)
	assert.Equal(t, f.service.Tokens().Access, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.Valid())
	assert.Equal(t, claims.ExpiresAt.Time, token.Expiry)

	_, err = ParseClaims("not-a-jwt")
	assert.Error(t, err)
}
