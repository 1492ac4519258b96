package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/malkhana/internal/ports/primary"
)

func custodyCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custody",
		Short: "Move property and read its chain of custody",
	}

	cmd.AddCommand(custodyTransferCmd(opts))
	cmd.AddCommand(custodyHistoryCmd(opts))

	return cmd
}

func custodyTransferCmd(opts *globalOptions) *cobra.Command {
	var req primary.TransferRequest

	cmd := &cobra.Command{
		Use:   "transfer [property-id]",
		Short: "Record a custody transfer to a new location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.PropertyID = args[0]
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CustodyAdapter(cmd.OutOrStdout()).Transfer(ctx, req, s.actor)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&req.ToLocation, "to", "", "destination location (required)")
	cmd.Flags().StringVar(&req.Purpose, "purpose", "", "purpose of the movement")
	cmd.Flags().StringVar(&req.Remarks, "remarks", "", "remarks")
	cmd.MarkFlagRequired("to")

	return cmd
}

func custodyHistoryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [property-id]",
		Short: "Show the chain of custody, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CustodyAdapter(cmd.OutOrStdout()).History(ctx, args[0])
				return err
			})
		},
	}
}
