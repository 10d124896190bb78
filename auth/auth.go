// Package auth obtains OAuth2 client-credentials tokens for the MQTT broker.
package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// ClientCred caches a client-credentials token and refreshes it on expiry.
type ClientCred struct {
	src oauth2.TokenSource

	mu    sync.Mutex
	token *oauth2.Token
}

// NewClientCred returns a ClientCred for conf.
func NewClientCred(conf Conf) *ClientCred {
	cc := conf.toOauth2Config()
	return &ClientCred{src: cc.TokenSource(context.Background())}
}

// Token returns a valid access token, requesting a new one when the cached
// token has expired.
func (c *ClientCred) Token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Valid() {
		return c.token.AccessToken, nil
	}
	tok, err := c.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	c.token = tok
	return tok.AccessToken, nil
}

// CredentialsProvider returns a provider presenting the access token as the
// password of username on every (re)connection. A failed token request
// yields an empty password and lets the broker reject the connection.
func (c *ClientCred) CredentialsProvider(username string, onErr func(error)) func() (string, string) {
	return func() (string, string) {
		tok, err := c.Token()
		if err != nil && onErr != nil {
			onErr(err)
		}
		return username, tok
	}
}
