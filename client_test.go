package lore

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/lore/client/auth/mock"
	"github.com/viant/lore/client/auth/store"
	"github.com/viant/lore/schema"
)

func TestClientOptionsFromEnv(t *testing.T) {
	t.Setenv(EnvHost, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvScheme, "")
	_, err := ClientOptionsFromEnv()
	assert.ErrorIs(t, err, ErrMissingHost)

	t.Setenv(EnvHost, "192.168.1.20")
	options, err := ClientOptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:8000", options.BaseURL())
	assert.Equal(t, "memory", options.Auth.StoreType)

	t.Setenv(EnvPort, "abc")
	_, err = ClientOptionsFromEnv()
	assert.Error(t, err)

	t.Setenv(EnvPort, "9443")
	t.Setenv(EnvScheme, "https")
	options, err = ClientOptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://192.168.1.20:9443", options.BaseURL())
}

func TestClientOptionsFromEnv_DotEnv(t *testing.T) {
	t.Setenv(EnvHost, "")
	t.Setenv(EnvPort, "")
	require.NoError(t, os.Unsetenv(EnvHost))
	require.NoError(t, os.Unsetenv(EnvPort))
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LORE_HOST=lore.local\nLORE_PORT=8080\n"), 0o600))

	options, err := ClientOptionsFromEnv(envFile, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://lore.local:8080", options.BaseURL())
}

func TestClientAuth_TokenStore(t *testing.T) {
	dir := t.TempDir()
	var testCases = []struct {
		description string
		auth        *ClientAuth
		expectType  interface{}
		expectErr   bool
	}{
		{description: "memory", auth: &ClientAuth{StoreType: "memory"}},
		{description: "file", auth: &ClientAuth{StoreType: "file", StoreURL: filepath.Join(dir, "file")}, expectType: &store.FileStore{}},
		{description: "secure", auth: &ClientAuth{StoreType: "secure", StoreURL: filepath.Join(dir, "secure")}, expectType: &store.SecureStore{}},
		{description: "file without url", auth: &ClientAuth{StoreType: "file"}, expectErr: true},
		{description: "unknown", auth: &ClientAuth{StoreType: "keychain"}, expectErr: true},
	}
	for _, testCase := range testCases {
		aStore, err := testCase.auth.tokenStore()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		if testCase.expectType != nil {
			assert.IsType(t, testCase.expectType, aStore, testCase.description)
		}
		ctx := context.Background()
		require.NoError(t, aStore.Set(ctx, store.Access, "A1"), testCase.description)
		value, ok, err := aStore.Get(ctx, store.Access)
		require.NoError(t, err, testCase.description)
		assert.True(t, ok, testCase.description)
		assert.Equal(t, "A1", value, testCase.description)
	}
}

func newOptions(t *testing.T, service *mock.HTTPTestService) *ClientOptions {
	URL, err := url.Parse(service.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(URL.Port())
	require.NoError(t, err)
	return &ClientOptions{Host: URL.Hostname(), Port: port, Registerer: prometheus.NewRegistry()}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(&ClientOptions{})
	assert.ErrorIs(t, err, ErrMissingHost)

	service := mock.NewHTTPTestService()
	defer service.Close()
	service.AddQuotes(schema.Quote{ID: 1, Text: "a", Group: 1}, schema.Quote{ID: 2, Text: "b", Group: 1}, schema.Quote{ID: 3, Text: "c", Group: 1})
	options := newOptions(t, service)
	ctx := context.Background()

	cli, err := NewClient(options)
	require.NoError(t, err)
	_, err = cli.Session.Login(ctx, service.Email, service.Password)
	require.NoError(t, err)

	count, err := cli.CountQuotes(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	other, err := NewClient(options)
	require.NoError(t, err)
	assert.Same(t, cli.Transport, other.Transport, "refresh coordinator shared")
	assert.Same(t, options.AuthStore(), other.Transport.Store())
	user, err := other.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.User().ID, user.ID)

	service.Expire()
	_, err = other.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, service.RefreshCalls())
}

func TestNewClient_SessionExpired(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	options := newOptions(t, service)
	ctx := context.Background()

	first, err := NewClient(options)
	require.NoError(t, err)
	second, err := NewClient(options)
	require.NoError(t, err)
	var invalidated atomic.Int32
	require.NoError(t, first.Session.OnInvalidate(func() { invalidated.Add(1) }))
	require.NoError(t, second.Session.OnInvalidate(func() { invalidated.Add(1) }))

	_, err = first.Session.Login(ctx, service.Email, service.Password)
	require.NoError(t, err)
	service.Accept("", "")
	_, err = second.CurrentUser(ctx)
	assert.True(t, schema.IsAuthExpired(err))
	assert.EqualValues(t, 2, invalidated.Load())
	assert.Nil(t, first.Session.User())
}

func TestNewClient_Metrics(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	registry := prometheus.NewRegistry()
	options := newOptions(t, service)
	options.Registerer = registry

	cli, err := NewClient(options)
	require.NoError(t, err)
	_, err = cli.Session.Login(context.Background(), service.Email, service.Password)
	require.NoError(t, err)
	_, err = cli.CurrentUser(context.Background())
	require.NoError(t, err)
	families, err := registry.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, family := range families {
		if family.GetName() != "lore_client_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, total)
}
