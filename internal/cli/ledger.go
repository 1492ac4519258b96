package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/ports/primary"
)

func auditCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit ledger (ADMIN)",
	}

	var query primary.AuditQuery
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query.EntityType = strings.ToUpper(query.EntityType)
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.AuditAdapter(cmd.OutOrStdout()).List(ctx, query, s.actor)
				return err
			})
		},
	}
	listCmd.Flags().StringVar(&query.EntityID, "entity", "", "filter by entity id")
	listCmd.Flags().StringVar(&query.EntityType, "type", "", "filter by entity type: CASE, PROPERTY, USER")
	listCmd.Flags().IntVar(&query.Limit, "limit", 0, "maximum rows (default 50, max 200)")

	cmd.AddCommand(listCmd)
	return cmd
}

func notifyCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notify",
		Aliases: []string{"notifications"},
		Short:   "Read pending-case notifications",
	}

	var (
		userID string
		limit  int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications for a user, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				target := userID
				if target == "" {
					target = s.actor.ID
				}
				if target == "" {
					return fmt.Errorf("no user: pass --user or --as")
				}
				_, err := s.NotificationAdapter(cmd.OutOrStdout()).List(ctx, target, limit)
				return err
			})
		},
	}
	listCmd.Flags().StringVar(&userID, "user", "", "user id (defaults to the acting user)")
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (default 20)")

	readCmd := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return s.NotificationAdapter(cmd.OutOrStdout()).Read(ctx, args[0], s.actor)
			})
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(readCmd)
	return cmd
}

func sweepCmd(opts *globalOptions) *cobra.Command {
	var threshold time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Notify every officer about cases pending past the threshold",
		Long: `Run the pending-case alert sweep once. Each (user, case) pair is notified
at most once, so repeated sweeps only add alerts for newly stale cases.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := access.CanPerform(s.actor.ID, s.actor.Role, access.ActionRunSweep).Error(); err != nil {
					return err
				}
				t := s.Config.Sweep.Threshold
				if cmd.Flags().Changed("threshold") {
					t = threshold
				}
				_, err := s.NotificationAdapter(cmd.OutOrStdout()).Sweep(ctx, t)
				return err
			})
		},
	}

	cmd.Flags().DurationVar(&threshold, "threshold", 0, "pending age that triggers an alert (defaults to sweep.threshold)")
	return cmd
}

func officerCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "officer",
		Short: "Manage officer accounts",
	}

	var (
		req          primary.AddOfficerRequest
		passwordFile string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create an officer account (ADMIN)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordFile != "" {
				data, err := os.ReadFile(passwordFile)
				if err != nil {
					return fmt.Errorf("failed to read password file: %w", err)
				}
				req.Password = strings.TrimSpace(string(data))
			}
			if req.Password == "" {
				req.Password = os.Getenv("MALKHANA_OFFICER_PASSWORD")
			}
			req.Role = strings.ToUpper(req.Role)
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.OfficerAdapter(cmd.OutOrStdout()).Add(ctx, req, s.actor)
				return err
			})
		},
	}
	addCmd.Flags().StringVar(&req.Name, "name", "", "full name (required)")
	addCmd.Flags().StringVar(&req.OfficerID, "officer-id", "", "officer id, unique (required)")
	addCmd.Flags().StringVar(&req.Station, "station", "", "police station")
	addCmd.Flags().StringVar(&req.Role, "officer-role", "", "ADMIN or OFFICER (default OFFICER)")
	addCmd.Flags().StringVar(&passwordFile, "password-file", "", "read the password from a file")
	addCmd.Flags().StringVar(&req.Password, "password", "", "password (prefer --password-file or MALKHANA_OFFICER_PASSWORD)")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("officer-id")

	var role string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List officer accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.OfficerAdapter(cmd.OutOrStdout()).List(ctx, strings.ToUpper(role))
				return err
			})
		},
	}
	listCmd.Flags().StringVar(&role, "officer-role", "", "filter by role")

	cmd.AddCommand(addCmd)
	cmd.AddCommand(listCmd)
	return cmd
}

func dashboardCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show ledger totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				_, err := s.DashboardAdapter(cmd.OutOrStdout()).Show(ctx)
				return err
			})
		},
	}
}
