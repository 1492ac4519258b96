package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/malkhana/internal/config"
)

func initCmd(opts *globalOptions) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the ledger store",
		Long: `Create the config file (if missing) and the record store with its schema.
With --seed, also create a development admin (ADMIN-001) and officer (OFF-001).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if _, err := os.Stat(opts.configPath); errors.Is(err, fs.ErrNotExist) {
				if err := config.SaveConfig(opts.configPath, config.Default()); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Wrote default config to %s\n", opts.configPath)
			}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				fmt.Fprintf(out, "✓ Store ready (%s)\n", s.Config.Store.Driver)
				if !seed {
					return nil
				}

				created, err := s.Seed(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Seeded %d officer account(s)\n", created)
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Next steps:")
				fmt.Fprintln(out, "  malkhana officer list")
				fmt.Fprintln(out, "  malkhana --as <id> --role OFFICER case create --station Central --crime-number 1/24")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "create development officer accounts")
	return cmd
}
