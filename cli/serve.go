package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/opensync/topicsync/server"
)

// NewServe creates the serve command.
func NewServe() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the topic state machine server",
		Long: `Starts the HTTP server exposing the topic state machine: a
WebSocket endpoint for action/request traffic and broadcast updates, and
a health check for orchestrators.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ui := NewUI()

	ui.Header(iconEngine, "Starting topicsync server")
	ui.Blank()

	ui.StartSpinner("Initializing state machine...")
	start := time.Now()

	srv := server.New()

	ui.StopSpinner("State machine initialized", time.Since(start))

	lifecycle := server.NewLifecycle()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.ClientManager().HandleWebSocket)
	mux.Handle("/healthz", lifecycle.HealthzHandler())

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ui.Summary([][2]string{
		{"Address", addr},
		{"Data Dir", dataDir},
		{"Mode", modeString(dev)},
	})

	ui.Blank()
	ui.Hint("Press Ctrl+C to stop the server")
	ui.Blank()
	ui.Step("Listening on " + addr)

	return lifecycle.Listen(httpSrv)
}

func modeString(dev bool) string {
	if dev {
		return "development"
	}
	return "production"
}
