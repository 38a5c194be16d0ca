// AngelaMos | 2026
// tx.go

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/classifieds/internal/notification"
	"github.com/carterperez-dev/classifieds/internal/realtime"
	"github.com/carterperez-dev/classifieds/internal/settings"
	"github.com/carterperez-dev/classifieds/internal/wallet"
)

func newTxCmd(opts *rootOptions) *cobra.Command {
	var adminID string

	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Decide pending wallet transactions",
	}
	cmd.PersistentFlags().StringVar(&adminID, "admin", "", "id of the admin recorded as the decider")
	_ = cmd.MarkPersistentFlagRequired("admin")

	approve := &cobra.Command{
		Use:   "approve <transaction-id>",
		Short: "Approve a pending deposit or subscription transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd.Context(), opts, func(svc *wallet.Service) error {
				t, err := svc.ApproveTransaction(cmd.Context(), args[0], adminID)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s -> %s\n", t.ID, t.Type, t.UserID, t.Status)
				return nil
			})
		},
	}

	var note string
	reject := &cobra.Command{
		Use:   "reject <transaction-id>",
		Short: "Reject a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd.Context(), opts, func(svc *wallet.Service) error {
				t, err := svc.RejectTransaction(cmd.Context(), args[0], adminID, note)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s -> %s\n", t.ID, t.Type, t.UserID, t.Status)
				return nil
			})
		},
	}
	reject.Flags().StringVar(&note, "note", "", "reason shown to the user")

	cmd.AddCommand(approve, reject)
	return cmd
}

// withWallet builds the same wallet service the API uses so decisions
// made here notify users and reach their live streams.
func withWallet(ctx context.Context, opts *rootOptions, fn func(*wallet.Service) error) error {
	e, err := opts.open(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	broker := realtime.NewRedisBroker(e.redis.Client, e.cfg.Realtime.BufferSize)
	defer broker.Close()

	svc := wallet.NewService(wallet.Deps{
		DB:   e.db,
		Repo: wallet.NewRepository(e.db.DB),
		Plans: settings.NewService(
			settings.NewRepository(e.db.DB),
			settings.NewRedisCache(e.redis.Client),
			e.logger,
		),
		Notifier: notification.NewService(notification.NewRepository(e.db.DB), broker, e.logger),
		Broker:   broker,
		Logger:   e.logger,
		Period:   e.cfg.Wallet.SubscriptionPeriod,
	})
	return fn(svc)
}

func explain(err error) error {
	if wallet.IsDecisionError(err) {
		return fmt.Errorf("not applied: %w", err)
	}
	return err
}
