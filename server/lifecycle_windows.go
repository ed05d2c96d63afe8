//go:build windows

package server

import (
	"context"
	"net/http"
)

func (l *Lifecycle) serveWithSignals(srv *http.Server, serveFn func() error) error {
	// Signals are not reliably injectable on windows. Run under a plain
	// context: no signal starts the graceful drain on this platform.
	return l.ServeContext(context.Background(), srv, serveFn)
}
