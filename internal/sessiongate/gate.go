// Package sessiongate resolves whether a shop has authorized the app before
// any dashboard data is shown. An unauthorized shop is sent to the install
// endpoint; a failed check fails open to unauthorized.
package sessiongate

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/browser"
	"golang.org/x/term"
)

// Status is the outcome of an authorization check.
type Status int

const (
	// StatusAuthorized unblocks the dashboard.
	StatusAuthorized Status = iota
	// StatusUnauthorized blocks the dashboard without a redirect: the shop
	// was missing or the check itself failed (fail open).
	StatusUnauthorized
	// StatusRedirected blocks the dashboard and points at the install URL.
	StatusRedirected
)

// AuthChecker is the slice of the backend client the gate needs.
type AuthChecker interface {
	CheckAuth(ctx context.Context, shop string) (bool, error)
	InstallURL(shop string) string
}

// Result reports one check outcome.
type Result struct {
	Status     Status
	InstallURL string
	// Navigated is set when this check performed the install navigation.
	// At most one check in the gate's lifetime does.
	Navigated bool
	// Err carries a failed auth check. It is informational; the gate has
	// already failed open to StatusUnauthorized.
	Err error
}

// Gate checks authorization and performs at most one install navigation no
// matter how often Check is invoked.
type Gate struct {
	Checker AuthChecker

	// OpenURL performs the navigation. Defaults to opening the operator's
	// browser.
	OpenURL func(url string) error

	// Interactive controls whether the gate may navigate at all. When the
	// process is not attached to a terminal the gate only reports the
	// install URL and leaves navigation to the caller.
	Interactive bool

	navOnce sync.Once
}

// New creates a gate around the given checker with default navigation.
func New(checker AuthChecker) *Gate {
	return &Gate{
		Checker:     checker,
		OpenURL:     browser.OpenURL,
		Interactive: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Check resolves authorization for the shop. An empty shop short-circuits to
// unauthorized without touching the network.
func (g *Gate) Check(ctx context.Context, shop string) Result {
	if shop == "" {
		return Result{Status: StatusUnauthorized}
	}

	authorized, err := g.Checker.CheckAuth(ctx, shop)
	if err != nil {
		slog.Debug("auth check failed", "shop", shop, "err", err)
		return Result{Status: StatusUnauthorized, Err: err}
	}
	if authorized {
		return Result{Status: StatusAuthorized}
	}

	res := Result{
		Status:     StatusRedirected,
		InstallURL: g.Checker.InstallURL(shop),
	}
	if g.Interactive {
		g.navOnce.Do(func() {
			res.Navigated = true
			if err := g.OpenURL(res.InstallURL); err != nil {
				slog.Debug("open install url failed", "url", res.InstallURL, "err", err)
			}
		})
	}
	return res
}
