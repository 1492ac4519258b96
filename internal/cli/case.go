package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
)

func caseCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Register and inspect cases",
	}

	cmd.AddCommand(caseCreateCmd(opts))
	cmd.AddCommand(caseListCmd(opts))
	cmd.AddCommand(caseShowCmd(opts))
	cmd.AddCommand(caseCloseCheckCmd(opts))

	return cmd
}

func caseCreateCmd(opts *globalOptions) *cobra.Command {
	var (
		req         primary.CreateCaseRequest
		firDate     string
		seizureDate string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new case",
		Example: `  malkhana case create --station Central --crime-number 123/24 --year 2024 \
      --fir-date 2024-05-02 --act-law IPC --section 379 --section 411`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fir, err := parseDateFlag("firDate", firDate)
			if err != nil {
				return err
			}
			req.FIRDate = fir
			if seizureDate != "" {
				seized, err := parseDateFlag("seizureDate", seizureDate)
				if err != nil {
					return err
				}
				req.SeizureDate = &seized
			}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CaseAdapter(cmd.OutOrStdout()).Create(ctx, req, s.actor)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&req.Station, "station", "", "police station (required)")
	cmd.Flags().StringVar(&req.CrimeNumber, "crime-number", "", "crime number (required)")
	cmd.Flags().IntVar(&req.Year, "year", time.Now().Year(), "registration year")
	cmd.Flags().StringVar(&firDate, "fir-date", "", "FIR date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&seizureDate, "seizure-date", "", "seizure date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.ActLaw, "act-law", "", "act or law invoked")
	cmd.Flags().StringSliceVar(&req.Sections, "section", nil, "section invoked (repeatable)")
	cmd.MarkFlagRequired("station")
	cmd.MarkFlagRequired("crime-number")
	cmd.MarkFlagRequired("fir-date")

	return cmd
}

func caseListCmd(opts *globalOptions) *cobra.Command {
	var filters primary.CaseFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CaseAdapter(cmd.OutOrStdout()).List(ctx, filters)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&filters.Search, "search", "s", "", "match crime number or station")
	cmd.Flags().StringVar(&filters.Status, "status", "", "PENDING or DISPOSED")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "maximum rows")

	return cmd
}

func caseShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [case-id]",
		Short: "Show case details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CaseAdapter(cmd.OutOrStdout()).Show(ctx, args[0])
				return err
			})
		},
	}
}

func caseCloseCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "close-check [case-id]",
		Short: "Close the case if every property has been disposed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := access.CanPerform(s.actor.ID, s.actor.Role, access.ActionCloseCase).Error(); err != nil {
					return err
				}
				_, err := s.CaseAdapter(cmd.OutOrStdout()).CloseCheck(ctx, args[0], s.actor)
				return err
			})
		},
	}
}

func reconcileCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Close pending cases whose properties are all disposed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.CaseAdapter(cmd.OutOrStdout()).Reconcile(ctx)
				return err
			})
		},
	}
}

// parseDateFlag accepts YYYY-MM-DD or RFC3339.
func parseDateFlag(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ledgererr.Validation(ledgererr.FieldError{
			Field:   field,
			Message: fmt.Sprintf("%q is not a date (want YYYY-MM-DD)", value),
		})
	}
	return t, nil
}
