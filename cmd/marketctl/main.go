// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/classifieds/internal/config"
	"github.com/carterperez-dev/classifieds/internal/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "marketctl",
		Short:         "Operator tooling for the classifieds API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "optional YAML config file")

	root.AddCommand(
		newKeygenCmd(),
		newMigrateCmd(opts),
		newTxCmd(opts),
		newUserCmd(opts),
		newTokensCmd(opts),
	)
	return root
}

// env holds the connections a command needs. Close releases them.
type env struct {
	cfg    *config.Config
	db     *core.Database
	redis  *core.Redis
	logger *slog.Logger
}

func (o *rootOptions) open(ctx context.Context, withRedis bool) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	e := &env{cfg: cfg, db: db, logger: logger}
	if withRedis {
		e.redis, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}
	return e, nil
}

func (e *env) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	_ = e.db.Close()
}
