package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nevora/english-to-code/internal/api"
	"github.com/nevora/english-to-code/internal/eval"
	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/targets"
	"github.com/nevora/english-to-code/internal/tui"
)

func (a *app) evalCommand() *cobra.Command {
	var (
		casesPath   string
		concurrency int
		asJSON      bool
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score the translator against a golden prompt set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cases []eval.Case
				err   error
			)
			if casesPath == "" {
				cases, err = eval.DefaultCases()
			} else {
				cases, err = eval.LoadCases(casesPath)
			}
			if err != nil {
				return err
			}

			report, err := eval.Run(cmd.Context(), a.translator, cases, concurrency)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(out, report.String())
			}

			if strict && report.Passed != report.Total {
				return errors.Newf("%d of %d eval cases failed", report.Total-report.Passed, report.Total)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&casesPath, "cases", "", "YAML or JSON case list (default: built-in golden set)")
	f.IntVar(&concurrency, "concurrency", 4, "cases translated in parallel")
	f.BoolVar(&asJSON, "json", false, "print the report as JSON")
	f.BoolVar(&strict, "strict", false, "exit non-zero unless every case passes")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translator over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(a.translator, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return errors.Wrap(err, "serve")
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func (a *app) interactiveCommand() *cobra.Command {
	var target, mode string

	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"repl"},
		Short:   "Translate prompts in an interactive terminal session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(a.translator, targets.Normalize(target), models.Mode(mode))
		},
	}

	cmd.Flags().StringVar(&target, "target", "python", "initial output language")
	modeFlag(cmd, &mode)
	return cmd
}
