package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/transport/tui"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
)

var logFileFlag string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the filter panel in the terminal",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&logFileFlag, "log-file", "", "log file (overrides logging.file)")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	env := resolveEnv()
	cfg, err := loadConfig(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logFileFlag != "" {
		cfg.Logging.File = logFileFlag
	}

	logger, err := logpkg.NewFileLogger(env, cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	renderer := tui.NewTextRenderer()
	p := panel.New(uuid.NewString(), a.deps, renderer, logger)
	logger.Info("Starting terminal panel", zap.String("session", p.ID()), zap.String("catalog", cfg.Catalog.BaseURL))

	prog := tea.NewProgram(tui.New(ctx, p, renderer), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("terminal panel: %w", err)
	}
	return nil
}
