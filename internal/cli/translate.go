package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/translator"
)

func (a *app) translateCommand() *cobra.Command {
	var (
		target, prompt, mode  string
		contextFile           string
		refine, verify        bool
		scaffoldDir, exportTo string
		blueprintName         string
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a prompt into source code for one target",
		Example: `  nevora translate --target cpp --prompt "Spawn enemy when timer reaches zero"
  nevora translate --target python --prompt "Add a cooldown" --refine --context-file previous.py`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var previous string
			if contextFile != "" {
				data, err := os.ReadFile(contextFile)
				if err != nil {
					return errors.Wrap(err, "read context file")
				}
				previous = string(data)
			}

			code, err := a.translator.Translate(ctx, translator.Request{
				Prompt:  prompt,
				Target:  target,
				Mode:    models.Mode(mode),
				Context: previous,
				Refine:  refine,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, code)

			if verify {
				ok, msg := a.translator.VerifyOutput(ctx, code, target)
				status := "ok"
				if !ok {
					status = "warn"
				}
				fmt.Fprintf(out, "\n[verify:%s] %s\n", status, msg)
			}

			if scaffoldDir != "" {
				root, err := a.translator.ScaffoldCode(scaffoldDir, target, code)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n[scaffold] created at: %s\n", root)
			}

			if exportTo != "" {
				path, err := a.translator.ExportBlueprint(ctx, prompt, exportTo, blueprintName, models.Mode(mode))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n[export] Unreal graph payload written to: %s\n", path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&target, "target", "", "output language: cpp, csharp, gdscript, javascript or python")
	f.StringVar(&prompt, "prompt", "", "English description to translate")
	modeFlag(cmd, &mode)
	f.StringVar(&contextFile, "context-file", "", "previous output used as context for refinement")
	f.BoolVar(&refine, "refine", false, "append the context file to the prompt before planning")
	f.BoolVar(&verify, "verify", false, "run a syntax check with the local toolchain")
	f.StringVar(&scaffoldDir, "scaffold-dir", "", "also write a starter project into this directory")
	f.StringVar(&exportTo, "export-uasset-json", "", "also write the Blueprint graph payload to this path")
	f.StringVar(&blueprintName, "blueprint-name", translator.DefaultBlueprintName, "blueprint name for --export-uasset-json")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func (a *app) planCommand() *cobra.Command {
	var prompt, mode, save, load string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the generation plan for a prompt without rendering code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var plan models.GenerationPlan
			switch {
			case load != "":
				loaded, err := models.LoadPlan(load)
				if err != nil {
					return err
				}
				plan = *loaded
			case prompt != "":
				built, err := a.translator.BuildGenerationPlan(cmd.Context(), prompt, models.Mode(mode))
				if err != nil {
					return err
				}
				plan = built
			default:
				return errors.New("either --prompt or --load is required")
			}

			if save != "" {
				if err := models.SavePlan(save, plan); err != nil {
					return err
				}
				a.logger.Info("plan saved")
			}
			return printPlan(cmd.OutOrStdout(), plan, asJSON)
		},
	}

	f := cmd.Flags()
	f.StringVar(&prompt, "prompt", "", "English description to plan")
	modeFlag(cmd, &mode)
	f.StringVar(&save, "save", "", "write the plan as YAML to this path")
	f.StringVar(&load, "load", "", "show a plan previously written with --save")
	f.BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func printPlan(w io.Writer, plan models.GenerationPlan, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprint(w, plan.Explain())
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func (a *app) exportCommand() *cobra.Command {
	var prompt, output, name, mode string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the Blueprint graph payload for a prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.translator.ExportBlueprint(cmd.Context(), prompt, output, name, models.Mode(mode))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[export] Unreal graph payload written to: %s\n", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&prompt, "prompt", "", "English description to export")
	f.StringVarP(&output, "output", "o", "", "path of the JSON payload")
	f.StringVar(&name, "name", translator.DefaultBlueprintName, "blueprint name")
	modeFlag(cmd, &mode)
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) scaffoldCommand() *cobra.Command {
	var prompt, target, dir, mode string

	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Write a starter project around the generated code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.translator.ScaffoldProject(cmd.Context(), prompt, target, dir, models.Mode(mode))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[scaffold] created at: %s\n", root)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&prompt, "prompt", "", "English description to translate")
	f.StringVar(&target, "target", "", "output language")
	f.StringVar(&dir, "dir", "", "project directory, created if missing")
	modeFlag(cmd, &mode)
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (a *app) verifyCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Syntax-check a source file with the local toolchain (FILE may be -)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return errors.Wrap(err, "read source")
			}

			ok, msg := a.translator.VerifyOutput(cmd.Context(), string(data), target)
			status := "ok"
			if !ok {
				status = "warn"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[verify:%s] %s\n", status, msg)
			if !ok {
				return errors.Newf("verification not confirmed: %s", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "language of the file")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
