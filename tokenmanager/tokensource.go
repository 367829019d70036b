package tokenmanager

import (
	"context"

	"golang.org/x/oauth2"
)

// ClientTokenSource returns an oauth2.TokenSource that draws
// client-credentials tokens from the manager, for use with oauth2.Transport
// or oauth2.NewClient.
//
// oauth2.TokenSource.Token has no context parameter, so the given context is
// captured at construction and used for every acquisition.
func (m *Manager) ClientTokenSource(ctx context.Context) oauth2.TokenSource {
	return &clientTokenSource{
		ctx:     ctx,
		manager: m,
	}
}

// UserTokenSource returns an oauth2.TokenSource for a user's tokens, seeded
// with the given refresh token. See ClientTokenSource for context handling.
func (m *Manager) UserTokenSource(ctx context.Context, refreshToken, userID string) oauth2.TokenSource {
	return &userTokenSource{
		ctx:          ctx,
		manager:      m,
		refreshToken: refreshToken,
		userID:       userID,
	}
}

type clientTokenSource struct {
	ctx     context.Context
	manager *Manager
}

// Compile-time check to ensure clientTokenSource implements oauth2.TokenSource
var _ oauth2.TokenSource = (*clientTokenSource)(nil)

// Token returns a valid token, refreshing through the manager if needed.
func (s *clientTokenSource) Token() (*oauth2.Token, error) {
	record, err := s.manager.clientRecord(s.ctx)
	if err != nil {
		return nil, err
	}
	return record.OAuth2Token(), nil
}

type userTokenSource struct {
	ctx          context.Context
	manager      *Manager
	refreshToken string
	userID       string
}

// Compile-time check to ensure userTokenSource implements oauth2.TokenSource
var _ oauth2.TokenSource = (*userTokenSource)(nil)

// Token returns a valid token, refreshing through the manager if needed.
func (s *userTokenSource) Token() (*oauth2.Token, error) {
	record, err := s.manager.userRecord(s.ctx, s.refreshToken, s.userID)
	if err != nil {
		return nil, err
	}
	return record.OAuth2Token(), nil
}
