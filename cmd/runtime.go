package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/config"
	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/credstore"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/output"
	"github.com/civica-dev/civica/internal/state"
)

// env bundles the wired collaborators every command works against: the
// merged config, the REST client, the credential store, and the state
// containers built on top of them.
type env struct {
	cfg    *config.Config
	client *civicapi.Client
	creds  *credstore.Store
	app    *state.App
}

// buildEnv loads config and wires the transport, credential store, and
// state containers. Nothing here touches the network.
func buildEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := credstore.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	deviceID, err := creds.DeviceID()
	if err != nil {
		log.Warn("could not establish a device id", "error", err)
	}

	timeouts := cfg.GetTimeouts()
	client := civicapi.NewClient(cfg.ServerURL(),
		civicapi.WithDeviceID(deviceID),
		civicapi.WithTimeouts(timeouts.Request, timeouts.Upload),
	)

	return &env{
		cfg:    cfg,
		client: client,
		creds:  creds,
		app:    state.NewApp(client, creds),
	}, nil
}

// signIn establishes the session: a CIVICA_TOKEN environment override is
// adopted directly, otherwise the persisted credential is restored and
// validated against the service.
func (e *env) signIn(ctx context.Context) error {
	if token := e.cfg.TokenFromEnv(); token != "" {
		return e.app.Session.AdoptToken(ctx, token)
	}

	if err := e.app.Session.Restore(ctx); err != nil {
		return err
	}
	if !e.app.Session.State().Authenticated {
		return fmt.Errorf("not signed in. Run 'civica login' first")
	}
	return nil
}

// identityLabel names the signed-in account for display.
func (e *env) identityLabel() string {
	st := e.app.Session.State()
	if st.Identity == nil {
		return ""
	}
	if st.Identity.FullName != "" {
		return st.Identity.FullName
	}
	return st.Identity.Email
}

// formatter resolves the output format from the flag, then the config
// default.
func (e *env) formatter(opts *Options) output.Formatter {
	format := output.Format(opts.Format)
	if format == "" {
		format = output.Format(e.cfg.DefaultFormat)
	}
	return output.NewFormatter(format)
}

// setupRuntime starts profiling and logging for a command run. The
// returned cleanup stops the profiler and must run even on error paths.
func setupRuntime(opts *Options, useTUI bool) (func(), error) {
	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return nil, err
	}

	// Suppress logs during TUI to avoid interleaving with the display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	return profiler.Stop, nil
}

// addCommonFlags wires the flags shared by every fetching command.
func addCommonFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

// addProfilingFlags wires the profiling flags onto fetch-heavy commands.
func addProfilingFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}
