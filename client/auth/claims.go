package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/lore/client/auth/store"
	"golang.org/x/oauth2"
)

// Claims are the access token claims issued by the lore API.
type Claims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Claims decodes the stored access token without verifying its signature.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	token, ok, err := s.store.Get(ctx, store.Access)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no access token")
	}
	return ParseClaims(token)
}

// ParseClaims decodes token claims, the signature is not verified
func ParseClaims(token string) (*Claims, error) {
	ret := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, ret); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	return ret, nil
}

// TokenSource exposes stored tokens as an oauth2.TokenSource
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, store: s.store}
}

type tokenSource struct {
	ctx   context.Context
	store store.Store
}

func (t *tokenSource) Token() (*oauth2.Token, error) {
	pair, err := store.LoadPair(t.ctx, t.store)
	if err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("no access token")
	}
	ret := &oauth2.Token{AccessToken: pair.Access, RefreshToken: pair.Refresh, TokenType: "Bearer"}
	if claims, err := ParseClaims(pair.Access); err == nil && claims.ExpiresAt != nil {
		ret.Expiry = claims.ExpiresAt.Time
	}
	return ret, nil
}
