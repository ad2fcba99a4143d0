package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sethvargo/go-githubactions"

	"github.com/DataDog/releaser-token/pkg/githubapp"
	"github.com/DataDog/releaser-token/pkg/provision"
)

var timeout time.Duration

func init() {
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "deadline for the installation token request")
}

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	action := githubactions.New()
	if err := run(ctx, action, os.Getenv, http.DefaultTransport); err != nil {
		action.Errorf("%s", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, action *githubactions.Action, getenv func(string) string, base http.RoundTripper) error {
	// without GITHUB_ENV the library falls back to printing the value as a
	// workflow command, which later steps never see
	if getenv("GITHUB_ENV") == "" {
		return &provision.ConfigurationError{Name: "GITHUB_ENV", Err: provision.ErrMissing}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p := provision.New(provision.ConfigFromEnv(getenv), githubapp.Factory(base), action)
	return p.Provision(ctx)
}
