package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/malkhana/internal/ports/primary"
)

func propertyCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "property",
		Aliases: []string{"prop"},
		Short:   "Register and inspect seized property",
	}

	cmd.AddCommand(propertyAddCmd(opts))
	cmd.AddCommand(propertyListCmd(opts))
	cmd.AddCommand(propertyShowCmd(opts))

	return cmd
}

func propertyAddCmd(opts *globalOptions) *cobra.Command {
	var req primary.AddPropertyRequest

	cmd := &cobra.Command{
		Use:   "add [case-id]",
		Short: "Register a seized property under a case",
		Example: `  malkhana property add CASE-ID --category Vehicle --belongs-to accused \
      --nature "Motorcycle" --quantity 1 --location "Store Room A"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.CaseID = args[0]
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CustodyAdapter(cmd.OutOrStdout()).Add(ctx, req, s.actor)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&req.Category, "category", "", "property category")
	cmd.Flags().StringVar(&req.BelongsTo, "belongs-to", "", "ACCUSED, VICTIM or UNKNOWN")
	cmd.Flags().StringVar(&req.Nature, "nature", "", "nature of the property")
	cmd.Flags().StringVar(&req.Quantity, "quantity", "", "quantity, free text")
	cmd.Flags().StringVarP(&req.Location, "location", "l", "", "initial storage location (required)")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "description")
	cmd.MarkFlagRequired("location")

	return cmd
}

func propertyListCmd(opts *globalOptions) *cobra.Command {
	var filters primary.PropertyFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CustodyAdapter(cmd.OutOrStdout()).List(ctx, filters)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&filters.CaseID, "case", "", "filter by case id")
	cmd.Flags().StringVar(&filters.Status, "status", "", "IN_CUSTODY or DISPOSED")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "maximum rows")

	return cmd
}

func propertyShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [property-id]",
		Short: "Show property details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CustodyAdapter(cmd.OutOrStdout()).Show(ctx, args[0])
				return err
			})
		},
	}
}
