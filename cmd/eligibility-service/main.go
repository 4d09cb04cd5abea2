// cmd/eligibility-service/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scheme-eligibility/internal/catalog"
	"scheme-eligibility/internal/common/config"
	"scheme-eligibility/internal/common/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath  string
	catalogPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "eligibility-service",
		Short: "Welfare scheme eligibility assessment",
		Long: `Assess a citizen profile against government welfare schemes.

Available subcommands:
  serve    - Run the HTTP API, metrics and the Zeebe job workers
  schemes  - List or search the scheme catalog
  evaluate - Evaluate a profile file against one scheme`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "Scheme catalog file (default: embedded catalog)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSchemesCmd(opts))
	cmd.AddCommand(newEvaluateCmd(opts))
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.catalogPath != "" {
		cfg.Catalog.Path = o.catalogPath
	}
	return cfg, nil
}

func (o *rootOptions) loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.Catalog.Path)
}

func newLogger(cfg *config.Config) (*zap.Logger, logger.Logger) {
	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	return zapLog, logger.NewZapAdapter(zapLog)
}
