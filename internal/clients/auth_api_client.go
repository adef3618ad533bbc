// internal/clients/auth_api_client.go
package clients

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

// DefaultLoginPath is where the catalog API exchanges credentials for a token.
const DefaultLoginPath = "/auth/login"

// AuthAPIClient obtains bearer tokens from the remote catalog API.
type AuthAPIClient struct {
	remote
	loginPath string
}

// NewAuthAPIClient creates an auth client. An empty loginPath uses DefaultLoginPath.
func NewAuthAPIClient(baseURL, loginPath string, httpClient *http.Client, logger *slog.Logger) *AuthAPIClient {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &AuthAPIClient{remote: newRemote(baseURL, httpClient, logger), loginPath: loginPath}
}

// Login exchanges an email and password for a bearer token.
func (c *AuthAPIClient) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	url := c.baseURL + c.loginPath
	creds := map[string]string{"email": email, "password": password}

	var res domain.LoginResult
	if err := c.call(ctx, "login", http.MethodPost, url, "", creds, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		c.logger.WarnContext(ctx, "Login succeeded without a token", slog.String("email", email))
		return nil, &TransportError{Op: "login", URL: url, Err: ErrEmptyToken}
	}
	if res.Email == "" {
		res.Email = email
	}
	c.logger.InfoContext(ctx, "User logged in against film API", slog.String("email", res.Email))
	return &res, nil
}
