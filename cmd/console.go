package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/Rorical/GhostDeck/internal/app"
	"github.com/Rorical/GhostDeck/internal/logging"
	"github.com/Rorical/GhostDeck/internal/metrics"
	"github.com/Rorical/GhostDeck/internal/modal"
)

// connectCLI builds the transport stack for one-shot commands. Escalated
// failures are printed to stderr instead of opening a dialog on screen.
func connectCLI() (*app.Backend, *slog.Logger) {
	cfg := mustLoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	store := modal.NewStore(
		modal.WithGrace(0),
		modal.WithLogger(logger),
		modal.WithNotify(func(snap modal.Snapshot) {
			printDialog(os.Stderr, snap)
		}),
	)
	return app.Connect(cfg, logger, store, metrics.NewTransport(nil)), logger
}

func printDialog(w io.Writer, snap modal.Snapshot) {
	if snap.State != modal.Open || snap.Request == nil {
		return
	}
	fmt.Fprintf(w, "! %s\n  %s\n", snap.Request.Title, snap.Request.Message)
	if snap.Request.Component == modal.ComponentNetworkError {
		fmt.Fprintln(w, "  The backend could not be reached; check the active profile with 'ghostdeck profile show'.")
	}
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}
