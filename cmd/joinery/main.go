// Command joinery evaluates joinery documents, runs the join commands on
// them and exports the resulting solids.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/joinery/pkg/config"
	"github.com/chazu/joinery/pkg/kernel"
	"github.com/chazu/joinery/pkg/kernel/backend"
	"github.com/chazu/joinery/pkg/logging"
	"github.com/chazu/joinery/pkg/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds the global flags and everything built from them.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "joinery",
		Short: "Join solids while preserving their voids",
		Long: `joinery evaluates documents written in the joinery Lisp DSL and
computes Connect, Embed and Cutout features with a solid kernel.

Documents are plain text. Join commands append features to the document,
so every result can be reproduced from the source alone.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log, c.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.evalCmd(),
		c.exportCmd(),
		c.commandsCmd(),
		c.runCmd(),
		c.watchCmd(),
	)
	return root
}

// open builds the kernel and a session for the configured backend.
// Command warnings are written to warnings.
func (c *cli) open(warnings io.Writer) (kernel.Kernel, *session.Session, error) {
	k, err := backend.Open(c.cfg.Kernel)
	if err != nil {
		return nil, nil, err
	}
	s, err := session.FromConfig(*c.cfg, k, c.logger, session.WithNotifier(session.NotifierFunc(func(title, text string) {
		fmt.Fprintf(warnings, "%s: %s\n", title, text)
	})))
	if err != nil {
		return nil, nil, err
	}
	return k, s, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
