// Package cli defines the malkhana command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/malkhana/internal/config"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/logging"
	"github.com/example/malkhana/internal/version"
	"github.com/example/malkhana/internal/wire"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	actorID    string
	actorRole  string
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "malkhana",
		Short:   "Seized-property custody and disposal ledger",
		Version: version.String(),
		Long: `malkhana records seized property against police cases, tracks every
custody transfer, records disposals, and keeps an append-only audit ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "path to the YAML config file")
	flags.StringVar(&opts.actorID, "as", "", "actor id performing the command (overrides actor.id)")
	flags.StringVar(&opts.actorRole, "role", "", "actor role, ADMIN or OFFICER (overrides actor.role)")

	rootCmd.AddCommand(initCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))

	// Ledger commands
	rootCmd.AddCommand(caseCmd(opts))
	rootCmd.AddCommand(propertyCmd(opts))
	rootCmd.AddCommand(custodyCmd(opts))
	rootCmd.AddCommand(disposeCmd(opts))
	rootCmd.AddCommand(disposalCmd(opts))
	rootCmd.AddCommand(auditCmd(opts))
	rootCmd.AddCommand(notifyCmd(opts))
	rootCmd.AddCommand(sweepCmd(opts))
	rootCmd.AddCommand(reconcileCmd(opts))
	rootCmd.AddCommand(officerCmd(opts))
	rootCmd.AddCommand(dashboardCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// session is an opened ledger plus the resolved actor.
type session struct {
	*wire.App
	actor ctxutil.Actor
}

// loadConfig reads the config file and applies the actor flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.actorID != "" {
		cfg.Actor.ID = o.actorID
	}
	if o.actorRole != "" {
		cfg.Actor.Role = strings.ToUpper(o.actorRole)
	}
	return cfg, nil
}

// open loads config, builds the logger and wires the ledger.
func (o *globalOptions) open(ctx context.Context) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return openWith(ctx, cfg)
}

func openWith(ctx context.Context, cfg *config.Config) (*session, error) {
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	a, err := wire.Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{
		App:   a,
		actor: ctxutil.Actor{ID: cfg.Actor.ID, Role: strings.ToUpper(cfg.Actor.Role)},
	}, nil
}

// run opens a session, calls fn and closes the session.
func (o *globalOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctxutil.WithActor(ctx, s.actor), s)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
