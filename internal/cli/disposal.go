package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/malkhana/internal/ports/primary"
)

func disposeCmd(opts *globalOptions) *cobra.Command {
	var req primary.DisposeRequest

	cmd := &cobra.Command{
		Use:   "dispose [property-id]",
		Short: "Record the final disposal of a property (ADMIN)",
		Long: `Record the final disposal of a property. A property is disposed at most once.
When the last property of a case is disposed the case is closed.`,
		Example: `  malkhana --role ADMIN dispose PROPERTY-ID --type DESTROYED --court-order ORD-7`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.PropertyID = args[0]
			req.DisposalType = strings.ToUpper(req.DisposalType)
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.DisposalAdapter(cmd.OutOrStdout()).Dispose(ctx, req, s.actor)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&req.DisposalType, "type", "t", "", "RETURNED, DESTROYED, AUCTIONED or COURT_CUSTODY (required)")
	cmd.Flags().StringVar(&req.CourtOrderRef, "court-order", "", "court order reference")
	cmd.Flags().StringVar(&req.Remarks, "remarks", "", "remarks")
	cmd.MarkFlagRequired("type")

	return cmd
}

func disposalCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disposal",
		Short: "Inspect recorded disposals",
	}

	var filters primary.DisposalFilters
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List disposals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.DisposalAdapter(cmd.OutOrStdout()).List(ctx, filters)
				return err
			})
		},
	}
	listCmd.Flags().StringVar(&filters.PropertyID, "property", "", "filter by property id")
	listCmd.Flags().IntVar(&filters.Limit, "limit", 0, "maximum rows")

	cmd.AddCommand(listCmd)
	return cmd
}
