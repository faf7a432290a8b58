// Package cli implements the nevora command tree.
package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nevora/english-to-code/internal/config"
	"github.com/nevora/english-to-code/internal/logging"
	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/translator"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	verbose bool
	logJSON bool
	planner string

	cfg        *config.Config
	logger     *zap.Logger
	translator *translator.Translator
}

// NewRootCommand builds the nevora command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "nevora",
		Short: "Translate English feature descriptions into starter code",
		Long: `nevora turns a short English description of a feature into a generation
plan and renders it as starter code for python, javascript, csharp, cpp or
gdscript. It can also scaffold a project, check syntax with local toolchains,
export a Blueprint graph payload and push files to GitHub.

Set GEMINI_API_KEY or OPENAI_API_KEY for LLM-assisted planning; without a key
the built-in heuristic planner is used.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "write logs as JSON")
	root.PersistentFlags().StringVar(&a.planner, "planner", "", "planner backend: auto, heuristic, gemini or openai (overrides NEVORA_PLANNER)")

	root.AddCommand(
		a.translateCommand(),
		a.planCommand(),
		a.exportCommand(),
		a.scaffoldCommand(),
		a.verifyCommand(),
		a.pushCommand(),
		a.worldCommand(),
		a.evalCommand(),
		a.serveCommand(),
		a.interactiveCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if a.planner != "" {
		cfg.Planner = a.planner
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.logJSON {
		cfg.LogJSON = true
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("request_id", uuid.NewString()), zap.String("command", cmd.Name()))

	tr, err := translator.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.translator = tr
	logger.Debug("configured", zap.String("planner", cfg.Planner))
	return nil
}

func (a *app) teardown() {
	if a.translator != nil {
		if err := a.translator.Close(); err != nil {
			a.logger.Warn("closing translator", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// modeFlag registers the shared --mode flag.
func modeFlag(cmd *cobra.Command, mode *string) {
	cmd.Flags().StringVar(mode, "mode", string(models.DefaultMode), "one of: automation, gameplay, video-processing, web-backend")
}
