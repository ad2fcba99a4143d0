package provision

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	EnvAppID          = "RELEASER_APP_ID"
	EnvPrivateKey     = "RELEASER_PRIVATE_KEY"
	EnvClientID       = "RELEASER_CLIENT_ID"
	EnvClientSecret   = "RELEASER_CLIENT_SECRET"
	EnvInstallationID = "RELEASER_INSTALLATION_ID"

	// EnvAPIURL overrides the REST endpoint, e.g. for GitHub Enterprise Server.
	EnvAPIURL = "RELEASER_API_URL"
	// EnvRunnerAPIURL is set by the Actions runner itself.
	EnvRunnerAPIURL = "GITHUB_API_URL"
)

// Config holds the raw values read from the environment.
type Config struct {
	AppID          string
	PrivateKey     string
	ClientID       string
	ClientSecret   string
	InstallationID string
	APIURL         string
}

// AppCredentials identify the GitHub App. The app JWT is issued for
// ClientID; AppID only identifies the app in log output, and ClientSecret is
// checked for presence but never sent.
type AppCredentials struct {
	AppID        int64
	PrivateKey   []byte
	ClientID     string
	ClientSecret string
}

// String keeps the key and secret out of formatted output.
func (c AppCredentials) String() string {
	return fmt.Sprintf("app %d (client %s)", c.AppID, c.ClientID)
}

// InstallationRequest selects the installation the token is scoped to.
type InstallationRequest struct {
	Type           string
	InstallationID int64
}

const installationType = "installation"

// ConfigFromEnv reads a Config using getenv, normally os.Getenv.
func ConfigFromEnv(getenv func(string) string) Config {
	apiURL := getenv(EnvAPIURL)
	if apiURL == "" {
		apiURL = getenv(EnvRunnerAPIURL)
	}
	return Config{
		AppID:          getenv(EnvAppID),
		PrivateKey:     getenv(EnvPrivateKey),
		ClientID:       getenv(EnvClientID),
		ClientSecret:   getenv(EnvClientSecret),
		InstallationID: getenv(EnvInstallationID),
		APIURL:         apiURL,
	}
}

// Validate checks every required value and parses the numeric ids and the
// signing key. All failures are *ConfigurationError.
func (c Config) Validate() (AppCredentials, InstallationRequest, error) {
	required := []struct{ name, value string }{
		{EnvAppID, c.AppID},
		{EnvPrivateKey, c.PrivateKey},
		{EnvClientID, c.ClientID},
		{EnvClientSecret, c.ClientSecret},
		{EnvInstallationID, c.InstallationID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return AppCredentials{}, InstallationRequest{}, &ConfigurationError{Name: r.name, Err: ErrMissing}
		}
	}

	appID, err := parseID(c.AppID)
	if err != nil {
		return AppCredentials{}, InstallationRequest{}, &ConfigurationError{Name: EnvAppID, Err: err}
	}
	installationID, err := parseID(c.InstallationID)
	if err != nil {
		return AppCredentials{}, InstallationRequest{}, &ConfigurationError{Name: EnvInstallationID, Err: err}
	}

	key := normalizeKey(c.PrivateKey)
	if _, err := jwt.ParseRSAPrivateKeyFromPEM(key); err != nil {
		// the parse error never echoes key material
		return AppCredentials{}, InstallationRequest{}, &ConfigurationError{Name: EnvPrivateKey, Err: fmt.Errorf("parse RSA private key: %w", err)}
	}

	creds := AppCredentials{
		AppID:        appID,
		PrivateKey:   key,
		ClientID:     strings.TrimSpace(c.ClientID),
		ClientSecret: c.ClientSecret,
	}
	return creds, InstallationRequest{Type: installationType, InstallationID: installationID}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.New("not an integer id")
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// normalizeKey accepts keys stored with literal "\n" sequences, which some
// secret stores produce for single-line values.
func normalizeKey(s string) []byte {
	key := []byte(strings.TrimSpace(s))
	if !bytes.Contains(key, []byte("\n")) {
		key = bytes.ReplaceAll(key, []byte(`\n`), []byte("\n"))
	}
	return key
}
