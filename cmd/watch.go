package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/archive"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/model"
	"github.com/civica-dev/civica/internal/push"
	"github.com/civica-dev/civica/internal/tui"
)

// NewCmdWatch creates the watch command.
func NewCmdWatch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live notices from the service",
		Long: `Hold the notice stream open and show notices as they arrive. Opening
the stream is what registers this device for delivery; close it and the
service stops sending here. Reconnects automatically with backoff.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable the live inbox view (default: auto-detect)")
	addCommonFlags(cmd, opts)
	return cmd
}

// fanoutSink feeds every decoded notice to each sink in order.
type fanoutSink []push.Sink

func (f fanoutSink) Ingest(notice model.Notice) {
	for _, sink := range f {
		sink.Ingest(notice)
	}
}

// printSink writes each notice to stdout for headless runs.
type printSink struct{}

func (printSink) Ingest(notice model.Notice) {
	fmt.Printf("[%s] %s: %s\n",
		notice.ReceivedAt.Format(time.TimeOnly), notice.Title, notice.Body)
}

func runWatch(cmd *cobra.Command, opts *Options) error {
	useTUI := shouldUseTUI(opts)
	cleanup, err := setupRuntime(opts, useTUI)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := buildEnv()
	if err != nil {
		return err
	}
	if err := e.signIn(cmd.Context()); err != nil {
		return err
	}

	deviceID, err := e.creds.DeviceID()
	if err != nil {
		return fmt.Errorf("could not establish a device id: %w", err)
	}

	sinks := fanoutSink{e.app.Inbox}
	if store, err := archive.NewStore(); err != nil {
		log.Warn("notice archive unavailable, history will not persist", "error", err)
	} else {
		sinks = append(sinks, store)
	}
	if !useTUI {
		sinks = append(sinks, printSink{})
	}

	listener := push.NewListener(e.cfg.ServerURL(), deviceID, e.app.Session, sinks, e.cfg.GetPushSettings())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useTUI {
		streamErr := make(chan error, 1)
		go func() {
			streamErr <- listener.Run(ctx)
		}()

		if err := tui.RunInboxUI(e.app.Inbox); err != nil {
			stop()
			<-streamErr
			return err
		}
		stop()
		return watchResult(<-streamErr)
	}

	fmt.Println("Watching for notices. Press Ctrl+C to stop.")
	return watchResult(listener.Run(ctx))
}

// watchResult maps the listener's exit into the command result: a cancelled
// context is a clean stop, a signed-out session is reported as such.
func watchResult(err error) error {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, faults.ErrNotAuthenticated):
		return fmt.Errorf("session signed out, notice stream closed")
	default:
		return err
	}
}
