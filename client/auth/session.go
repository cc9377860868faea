package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/viant/lore/client"
	"github.com/viant/lore/client/auth/store"
	"github.com/viant/lore/schema"
)

var ErrListenerRegistered = errors.New("invalidate listener already registered")

// ErrVerificationPending is returned by Register when the account was created but the
// server issued no tokens and no user, typically until the e-mail address is verified.
var ErrVerificationPending = errors.New("registration pending e-mail verification")

// registration is the registration endpoint response, tokens are optional
type registration struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *schema.User `json:"user"`
}

// Session holds the signed in user and its tokens.
type Session struct {
	client   client.Interface
	store    store.Store
	logger   zerolog.Logger
	mux      sync.RWMutex
	user     *schema.User
	listener func()
}

func NewSession(aClient client.Interface, aStore store.Store, options ...Option) *Session {
	ret := &Session{client: aClient, store: aStore, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Login exchanges credentials for a token pair and loads the user
func (s *Session) Login(ctx context.Context, email, password string) (*schema.User, error) {
	resp, err := client.Mutate[schema.LoginResponse](ctx, s.client, client.Post(schema.PathLogin, &schema.LoginRequest{Email: email, Password: password}), nil)
	if err != nil {
		return nil, err
	}
	if err = store.SavePair(ctx, s.store, resp.Access, resp.Refresh); err != nil {
		return nil, err
	}
	s.logger.Debug().Msg("signed in")
	if resp.User == nil {
		return s.Reload(ctx)
	}
	s.setUser(resp.User)
	return resp.User, nil
}

// Register creates an account, signing in when the server returns tokens. Without tokens
// the created user is returned signed out, or ErrVerificationPending when the response
// carries no user. A registration with an avatar is sent as multipart form data.
func (s *Session) Register(ctx context.Context, form *schema.Registration) (*schema.User, error) {
	descriptor := client.Post(schema.PathRegistration, form)
	if len(form.Avatar) > 0 {
		name := form.AvatarName
		if name == "" {
			name = "avatar"
		}
		descriptor = &client.Descriptor{Method: descriptor.Method, Path: descriptor.Path, Form: &client.Form{
			Fields: form.Fields(),
			Files:  []client.FormFile{{Field: "avatar", Name: name, Data: form.Avatar}},
		}}
	}
	resp, err := client.Mutate[registration](ctx, s.client, descriptor, nil)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Access == "" {
		if resp == nil || resp.User == nil {
			return nil, ErrVerificationPending
		}
		if err = schema.Validate(resp.User); err != nil {
			return nil, err
		}
		return resp.User, nil
	}
	if err = store.SavePair(ctx, s.store, resp.Access, resp.Refresh); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return s.Reload(ctx)
	}
	if err = schema.Validate(resp.User); err != nil {
		return nil, err
	}
	s.setUser(resp.User)
	return resp.User, nil
}

// Logout notifies the server (best effort), then clears tokens and cached queries.
func (s *Session) Logout(ctx context.Context) error {
	refresh, _, err := s.store.Get(ctx, store.Refresh)
	if err != nil {
		return err
	}
	if _, err = client.Mutate[struct{}](ctx, s.client, client.Post(schema.PathLogout, &schema.LogoutRequest{Refresh: refresh}), nil); err != nil {
		s.logger.Warn().Err(err).Msg("logout request failed")
	}
	if err = store.ClearPair(ctx, s.store); err != nil {
		return err
	}
	s.setUser(nil)
	s.client.Invalidate("")
	return nil
}

// DeleteAccount deletes the signed in user, then clears tokens and cached queries.
func (s *Session) DeleteAccount(ctx context.Context) error {
	user := s.User()
	if user == nil {
		var err error
		if user, err = s.Reload(ctx); err != nil {
			return err
		}
	}
	if _, err := client.Mutate[struct{}](ctx, s.client, client.Delete(schema.PathUser, "id", strconv.Itoa(user.ID)), nil); err != nil {
		return err
	}
	if err := store.ClearPair(ctx, s.store); err != nil {
		return err
	}
	s.setUser(nil)
	s.client.Invalidate("")
	s.logger.Info().Int("user", user.ID).Msg("account deleted")
	return nil
}

// Reload fetches the current user
func (s *Session) Reload(ctx context.Context) (*schema.User, error) {
	user, err := client.Query[schema.User](ctx, s.client, client.Get(schema.PathCurrentUser))
	if err != nil {
		return nil, err
	}
	s.setUser(user)
	return user, nil
}

// User returns the cached current user, nil when signed out or not loaded
func (s *Session) User() *schema.User {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.user
}

// SignedIn reports whether an access token is stored
func (s *Session) SignedIn(ctx context.Context) (bool, error) {
	_, ok, err := s.store.Get(ctx, store.Access)
	return ok, err
}

// OnInvalidate registers the only session end listener.
func (s *Session) OnInvalidate(listener func()) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		return ErrListenerRegistered
	}
	s.listener = listener
	return nil
}

// Invalidate ends the session locally and notifies the listener.
func (s *Session) Invalidate() {
	s.mux.Lock()
	s.user = nil
	listener := s.listener
	s.mux.Unlock()
	s.client.Invalidate("")
	s.logger.Info().Msg("session invalidated")
	if listener != nil {
		listener()
	}
}

func (s *Session) setUser(user *schema.User) {
	s.mux.Lock()
	s.user = user
	s.mux.Unlock()
}
