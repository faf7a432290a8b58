package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nevora/english-to-code/internal/engine"
	"github.com/nevora/english-to-code/internal/github"
	"github.com/nevora/english-to-code/internal/worldbuilder"
)

func (a *app) pushCommand() *cobra.Command {
	var req github.PushRequest
	var file string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Create or update one file in a GitHub repository",
		Example: `  nevora translate --target python --prompt "jump" > feature.py
  nevora push --repo me/game --path src/feature.py --file feature.py`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return errors.Wrap(err, "read file to push")
			}
			req.Content = string(data)

			url, err := github.NewClient(a.cfg.GitHubToken).PushFile(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.logger.Info("pushed", zap.String("repo", req.Repo), zap.String("path", req.Path))
			fmt.Fprintf(cmd.OutOrStdout(), "[push] %s\n", url)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Repo, "repo", "", "repository as owner/repo")
	f.StringVar(&req.Path, "path", "", "path of the file inside the repository")
	f.StringVar(&file, "file", "-", "local file to upload, - for stdin")
	f.StringVar(&req.Message, "message", "Add generated code", "commit message")
	f.StringVar(&req.Branch, "branch", github.DefaultBranch, "target branch")
	f.StringVar(&req.Token, "token", "", "token to use instead of GITHUB_TOKEN")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func (a *app) worldCommand() *cobra.Command {
	var stages worldbuilder.Stages
	var out string

	cmd := &cobra.Command{
		Use:   "world",
		Short: "Generate a Pygame starter project from four design stages",
		Long: `world asks the configured LLM backend for a runnable Python + Pygame
project split into environment, characters, rules, events and main modules.
It needs GEMINI_API_KEY or OPENAI_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			gen, err := engine.New(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer gen.Close()

			a.logger.Info("generating world", zap.String("backend", gen.Name()))
			world, err := worldbuilder.Generate(ctx, gen, stages)
			if err != nil {
				return err
			}

			written, err := world.Write(out)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "[world] wrote %s\n", path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&stages.Environment, "environment", "", "stage 1: the world and its setting")
	f.StringVar(&stages.Characters, "characters", "", "stage 2: player and other characters")
	f.StringVar(&stages.Rules, "rules", "", "stage 3: rules and win/lose conditions")
	f.StringVar(&stages.Events, "events", "", "stage 4: events and triggers")
	f.StringVar(&out, "out", "world", "output directory")
	for _, name := range []string{"environment", "characters", "rules", "events"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
