// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avocado-market/avocado-api/internal/config"
	"github.com/avocado-market/avocado-api/internal/core"
)

func main() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type cli struct {
	configPath string
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "avocadoctl",
		Short:         "Operator tooling for the Avocado API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to an optional YAML config file")

	root.AddCommand(
		c.migrateCmd(),
		c.checkCmd(),
		c.dashboardCmd(),
	)

	return root
}

func (c *cli) config() (*config.Config, error) {
	return config.Parse(c.configPath)
}

func (c *cli) database(ctx context.Context) (*core.Database, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return core.NewDatabase(ctx, cfg.Database)
}
