package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// TokenEnvName is the variable later steps read the token from.
const TokenEnvName = "RELEASE_TOKEN"

// IssuedToken is an installation access token as returned by the provider.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticator exchanges app credentials for an installation token.
type Authenticator interface {
	InstallationToken(ctx context.Context) (*IssuedToken, error)
}

// AuthenticatorFactory binds an Authenticator to validated credentials.
type AuthenticatorFactory func(creds AppCredentials, req InstallationRequest, apiURL string) (Authenticator, error)

// Host is the CI runtime the token is published to.
type Host interface {
	AddMask(value string)
	SetEnv(name, value string)
	Infof(msg string, args ...any)
}

// Provisioner requests one installation token and hands it to the host.
type Provisioner struct {
	cfg     Config
	newAuth AuthenticatorFactory
	host    Host
}

func New(cfg Config, newAuth AuthenticatorFactory, host Host) *Provisioner {
	return &Provisioner{cfg: cfg, newAuth: newAuth, host: host}
}

// Provision validates the configuration, requests a token, masks it and
// exports it as TokenEnvName. Nothing is exported unless every step succeeds.
func (p *Provisioner) Provision(ctx context.Context) error {
	creds, req, err := p.cfg.Validate()
	if err != nil {
		return err
	}

	auth, err := p.newAuth(creds, req, p.cfg.APIURL)
	if err != nil {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) {
			return err
		}
		return &ConfigurationError{Name: EnvPrivateKey, Err: err}
	}

	p.host.Infof("requesting %s token for installation %d of %s", req.Type, req.InstallationID, creds)
	issued, err := auth.InstallationToken(ctx)
	if err != nil {
		return fmt.Errorf("installation %d token: %w", req.InstallationID, err)
	}
	if issued == nil || issued.Token == "" {
		return &AuthorizationError{Err: fmt.Errorf("installation %d: provider returned an empty token", req.InstallationID)}
	}

	p.host.AddMask(issued.Token)
	p.host.SetEnv(TokenEnvName, issued.Token)

	if issued.ExpiresAt.IsZero() {
		p.host.Infof("exported %s", TokenEnvName)
	} else {
		p.host.Infof("exported %s, expires %s", TokenEnvName, humanize.Time(issued.ExpiresAt))
	}
	return nil
}
