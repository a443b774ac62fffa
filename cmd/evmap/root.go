package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/workspace"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/config"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/di"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/gateway"
)

// app is the state shared by every subcommand once flags are parsed
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	gateway *gateway.Client
	cleanup func()
}

type rootFlags struct {
	apiURL   string
	token    string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     = &app{cleanup: func() {}}
	)

	root := &cobra.Command{
		Use:           "evmap",
		Short:         "Inspect, import into and export case evidence maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.cleanup()
		},
	}

	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Base URL of the evidence map API (overrides API_BASE_URL)")
	root.PersistentFlags().StringVar(&flags.token, "token", "", "Bearer token for the API (overrides API_TOKEN)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newShowCmd(a),
		newImportCmd(a),
		newReportCmd(a),
		newImageCmd(a),
		newDraftWaitCmd(a),
	)
	return root
}

func (a *app) init(flags rootFlags) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.apiURL != "" {
		cfg.APIBaseURL = flags.apiURL
	}
	if flags.token != "" {
		cfg.APIToken = flags.token
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	level, err := di.ProvideLogLevel(cfg)
	if err != nil {
		return err
	}
	logger, cleanup, err := di.ProvideLogger(cfg, level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.cleanup = cleanup
	a.gateway = gateway.New(gateway.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.ClientTimeout,
	}, logger)
	return nil
}

func (a *app) workspace() (*workspace.Workspace, error) {
	opts, err := di.ProvideImportOptions(a.cfg)
	if err != nil {
		return nil, err
	}
	return workspace.New(a.gateway, opts, a.logger), nil
}
