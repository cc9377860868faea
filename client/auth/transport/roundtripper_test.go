package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/lore/client/auth/mock"
	"github.com/viant/lore/client/auth/store"
	"github.com/viant/lore/schema"
)

func newTestClient(t *testing.T, aStore store.Store, options ...Option) (*http.Client, *RoundTripper) {
	rt, err := New(append([]Option{WithStore(aStore)}, options...)...)
	require.NoError(t, err)
	return &http.Client{Transport: rt}, rt
}

func rotateTo(service *mock.HTTPTestService, access, refresh string) http.HandlerFunc {
	return service.CountRefresh(func(w http.ResponseWriter, r *http.Request) {
		service.Accept(access, refresh)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&schema.TokenPair{Access: access, Refresh: refresh})
	})
}

func TestRoundTripper_AttachesBearer(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.Accept("A1", "R1")

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(ctx, aStore, "A1", "R1"))
	client, _ := newTestClient(t, aStore)

	resp, err := client.Get(service.URL + schema.PathCurrentUser)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"A1"}, service.Seen(schema.PathCurrentUser))
	assert.Equal(t, 0, service.RefreshCalls())
}

// access token present, request returns 401, refresh returns a new pair
func TestRoundTripper_RefreshAndRetry(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.Accept("", "R1")
	var refreshRequest schema.RefreshRequest
	rotate := rotateTo(service, "A2", "R2")
	service.RefreshHandler = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&refreshRequest)
		rotate(w, r)
	}

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(ctx, aStore, "A1", "R1"))
	metrics := NewMetrics(prometheus.NewRegistry())
	client, _ := newTestClient(t, aStore, WithMetrics(metrics))

	resp, err := client.Get(service.URL + schema.PathCurrentUser)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"A1", "A2"}, service.Seen(schema.PathCurrentUser))
	assert.Equal(t, 1, service.RefreshCalls())
	assert.Equal(t, schema.RefreshRequest{Access: "A1", Refresh: "R1"}, refreshRequest)

	pair, err := store.LoadPair(ctx, aStore)
	require.NoError(t, err)
	assert.Equal(t, &schema.TokenPair{Access: "A2", Refresh: "R2"}, pair)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Refreshes.WithLabelValues(outcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("200")))
}

// access token present, request returns 401, refresh endpoint returns 400
func TestRoundTripper_RefreshRejected(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.RefreshHandler = service.CountRefresh(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"refresh":["This field is required."]}`, http.StatusBadRequest)
	})

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(ctx, aStore, "A1", "R1"))
	var expired atomic.Int32
	client, _ := newTestClient(t, aStore, WithOnExpired(func() { expired.Add(1) }))

	resp, err := client.Get(service.URL + schema.PathCurrentUser)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body), "original 401 body is intact")
	assert.Equal(t, "token_not_valid", body["code"])

	assert.Equal(t, []string{"A1"}, service.Seen(schema.PathCurrentUser), "no retry after failed refresh")
	assert.Equal(t, 1, service.RefreshCalls())
	assert.EqualValues(t, 1, expired.Load())
	for _, name := range []store.Name{store.Access, store.Refresh} {
		_, ok, err := aStore.Get(ctx, name)
		require.NoError(t, err)
		assert.False(t, ok, name)
	}
}

// two requests both get 401 before any refresh starts
func TestRoundTripper_CoalescesConcurrentRefresh(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.Accept("", "R1")
	service.RefreshHandler = rotateTo(service, "A2", "R2")
	var arrived atomic.Int32
	release := make(chan struct{})
	service.OnUnauthorized = func(*http.Request) {
		if arrived.Add(1) == 2 {
			close(release)
		}
		<-release
	}

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(ctx, aStore, "A1", "R1"))
	client, _ := newTestClient(t, aStore)

	var wg sync.WaitGroup
	statuses := make([]int, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(service.URL + schema.PathCurrentUser)
			if err != nil {
				errs[i] = err
				return
			}
			statuses[i] = resp.StatusCode
			_ = resp.Body.Close()
		}(i)
	}
	wg.Wait()

	require.NoError(t, errors.Join(errs...))
	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, statuses)
	assert.Equal(t, 1, service.RefreshCalls())
	assert.ElementsMatch(t, []string{"A1", "A1", "A2", "A2"}, service.Seen(schema.PathCurrentUser))
}

// three requests get 401 before any refresh starts, refresh endpoint returns 400
func TestRoundTripper_CoalescesConcurrentRefreshFailure(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.RefreshHandler = service.CountRefresh(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Token is blacklisted","code":"token_not_valid"}`, http.StatusBadRequest)
	})
	const callers = 3
	var arrived atomic.Int32
	release := make(chan struct{})
	service.OnUnauthorized = func(*http.Request) {
		if arrived.Add(1) == callers {
			close(release)
		}
		<-release
	}

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(ctx, aStore, "A1", "R1"))
	var expired atomic.Int32
	client, _ := newTestClient(t, aStore, WithOnExpired(func() { expired.Add(1) }))

	var wg sync.WaitGroup
	statuses := make([]int, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(service.URL + schema.PathCurrentUser)
			if err != nil {
				errs[i] = err
				return
			}
			statuses[i] = resp.StatusCode
			_ = resp.Body.Close()
		}(i)
	}
	wg.Wait()

	require.NoError(t, errors.Join(errs...))
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized}, statuses)
	assert.Equal(t, 1, service.RefreshCalls())
	assert.EqualValues(t, 1, expired.Load())
	assert.Equal(t, []string{"A1", "A1", "A1"}, service.Seen(schema.PathCurrentUser), "no request replayed")
	for _, name := range []store.Name{store.Access, store.Refresh} {
		_, ok, err := aStore.Get(ctx, name)
		require.NoError(t, err)
		assert.False(t, ok, name)
	}
}

func TestRoundTripper_MissingRefreshToken(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, aStore.Set(ctx, store.Access, "A1"))
	var expired atomic.Int32
	client, _ := newTestClient(t, aStore, WithOnExpired(func() { expired.Add(1) }))

	resp, err := client.Get(service.URL + schema.PathCurrentUser)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, service.RefreshCalls())
	assert.EqualValues(t, 1, expired.Load())
	_, ok, err := aStore.Get(ctx, store.Access)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoundTripper_AnonymousRequest(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	var expired atomic.Int32
	client, _ := newTestClient(t, store.NewMemoryStore(), WithOnExpired(func() { expired.Add(1) }))

	resp, err := client.Get(service.URL + schema.PathGroups)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, []string{""}, service.Seen(schema.PathGroups))
	assert.Equal(t, 0, service.RefreshCalls())
	assert.EqualValues(t, 0, expired.Load(), "nothing to expire without a session")
}

func TestRoundTripper_AuthEndpointsBypass(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	var authorization []string
	service.LoginHandler = func(w http.ResponseWriter, r *http.Request) {
		authorization = append(authorization, r.Header.Get("Authorization"))
		http.Error(w, `{"non_field_errors":["Unable to log in with provided credentials."]}`, http.StatusUnauthorized)
	}

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(ctx, aStore, "A1", "R1"))
	client, _ := newTestClient(t, aStore)

	resp, err := client.Post(service.URL+schema.PathLogin, "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, []string{""}, authorization)
	assert.Equal(t, 0, service.RefreshCalls(), "auth endpoints never trigger refresh")
}

func TestRoundTripper_ReplaysBody(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.Accept("", "R1")
	service.RefreshHandler = rotateTo(service, "A2", "R2")

	ctx := context.Background()
	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(ctx, aStore, "A1", "R1"))
	client, _ := newTestClient(t, aStore)

	payload, _ := json.Marshal(&schema.QuoteInput{Text: "to be or not to be", SaidBy: 1})
	resp, err := client.Post(service.URL+"/api/v1/groups/7/quotes/", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	quotes := service.Quotes()
	require.Len(t, quotes, 1)
	assert.Equal(t, "to be or not to be", quotes[0].Text)
	assert.Equal(t, 7, quotes[0].Group)
}

func TestRoundTripper_RefreshOutlivesCaller(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	tokens, err := service.Issue()
	require.NoError(t, err)
	service.Expire()
	gate := make(chan struct{})
	service.OnRefresh = func(*http.Request) { <-gate }

	aStore := store.NewMemoryStore()
	require.NoError(t, store.SavePair(context.Background(), aStore, "A1", tokens.Refresh))
	client, _ := newTestClient(t, aStore)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for service.RefreshCalls() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service.URL+schema.PathCurrentUser, nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	close(gate)
	require.Eventually(t, func() bool {
		access, _, _ := aStore.Get(context.Background(), store.Access)
		return access != "" && access == service.Tokens().Access
	}, 5*time.Second, 10*time.Millisecond)
}

type failingStore struct{ store.Store }

func (f *failingStore) Get(context.Context, store.Name) (string, bool, error) {
	return "", false, schema.NewStorageError("get", "access_token", errors.New("keychain locked"))
}

func TestRoundTripper_StorageError(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	client, _ := newTestClient(t, &failingStore{Store: store.NewMemoryStore()})

	_, err := client.Get(service.URL + schema.PathCurrentUser)
	require.Error(t, err)
	var storageErr *schema.StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.Empty(t, service.Seen(schema.PathCurrentUser), "no request without a readable token")
}
