package githubapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kfcampbell/ghinstallation"

	"github.com/DataDog/releaser-token/pkg/provision"
)

// Authenticator requests installation tokens through ghinstallation and
// sorts its failures into the provision error kinds.
type Authenticator struct {
	transport      *ghinstallation.Transport
	installationID int64
}

// New builds an Authenticator. A nil base uses http.DefaultTransport and an
// empty apiURL keeps the library's default endpoint. The JWT is issued for
// creds.ClientID.
func New(base http.RoundTripper, creds provision.AppCredentials, req provision.InstallationRequest, apiURL string) (*Authenticator, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	tr, err := ghinstallation.NewTransport(base, creds.ClientID, req.InstallationID, creds.PrivateKey)
	if err != nil {
		return nil, &provision.ConfigurationError{Name: provision.EnvPrivateKey, Err: fmt.Errorf("github app transport: %w", err)}
	}
	if apiURL != "" {
		tr.BaseURL = strings.TrimRight(apiURL, "/")
	}
	return &Authenticator{transport: tr, installationID: req.InstallationID}, nil
}

// Factory adapts New to provision.AuthenticatorFactory.
func Factory(base http.RoundTripper) provision.AuthenticatorFactory {
	return func(creds provision.AppCredentials, req provision.InstallationRequest, apiURL string) (provision.Authenticator, error) {
		return New(base, creds, req, apiURL)
	}
}

func (a *Authenticator) InstallationToken(ctx context.Context) (*provision.IssuedToken, error) {
	token, err := a.transport.Token(ctx)
	if err != nil {
		return nil, classify(err)
	}
	expiresAt, _, err := a.transport.Expiry()
	if err != nil {
		return nil, &provision.AuthorizationError{Err: fmt.Errorf("token expiry: %w", err)}
	}
	return &provision.IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

func classify(err error) error {
	var herr *ghinstallation.HTTPError
	if !errors.As(err, &herr) {
		// 2xx with a body the library could not decode
		return &provision.AuthorizationError{Err: err}
	}
	if herr.Response == nil {
		return &provision.NetworkError{Err: err}
	}
	// the library only closes the body on success
	if herr.Response.Body != nil {
		_ = herr.Response.Body.Close()
	}
	return &provision.AuthorizationError{StatusCode: herr.Response.StatusCode, Err: err}
}
