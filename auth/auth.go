// Package auth adapts OAuth2 token sources to the viewer engine's
// access-token provider callback.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/binzume/sceneview/engine"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	ErrNoToken      = errors.New("access token provider returned no token")
	ErrTokenTimeout = errors.New("access token provider did not respond")
)

// DefaultTimeout bounds how long TokenSource waits for a provider.
var DefaultTimeout = 30 * time.Second

// Provider returns a provider that reports tokens from ts.
// Failures are reported as an empty token with zero lifetime.
func Provider(ts oauth2.TokenSource) engine.AccessTokenProvider {
	return func(done func(token string, expiresIn int)) {
		tok, err := ts.Token()
		if err != nil {
			done("", 0)
			return
		}
		done(tok.AccessToken, expiresIn(tok))
	}
}

// ClientCredentials fetches two-legged tokens from cfg.TokenURL.
func ClientCredentials(ctx context.Context, cfg *clientcredentials.Config) engine.AccessTokenProvider {
	return Provider(cfg.TokenSource(ctx))
}

func Static(token string, expiresIn int) engine.AccessTokenProvider {
	return func(done func(string, int)) {
		done(token, expiresIn)
	}
}

func expiresIn(tok *oauth2.Token) int {
	if tok.Expiry.IsZero() {
		return 0
	}
	s := int(time.Until(tok.Expiry) / time.Second)
	if s < 0 {
		return 0
	}
	return s
}

type providerSource struct {
	provider engine.AccessTokenProvider
	timeout  time.Duration
}

// TokenSource turns a provider back into an oauth2.TokenSource.
// Wrap it with oauth2.ReuseTokenSource to cache tokens until they expire.
func TokenSource(p engine.AccessTokenProvider) oauth2.TokenSource {
	return &providerSource{provider: p, timeout: DefaultTimeout}
}

func (s *providerSource) Token() (*oauth2.Token, error) {
	ch := make(chan *oauth2.Token, 1)
	var once sync.Once
	s.provider(func(token string, expiresIn int) {
		once.Do(func() {
			tok := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
			// zero Expiry: no known expiry, reused until replaced
			if expiresIn > 0 {
				tok.Expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
			}
			ch <- tok
		})
	})

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case tok := <-ch:
		if tok.AccessToken == "" {
			return nil, ErrNoToken
		}
		return tok, nil
	case <-timer.C:
		return nil, ErrTokenTimeout
	}
}
