// Command simulate_refine drives the translator with an LLM playing the user:
// it asks for a feature idea, translates it, then asks for follow-up changes
// and feeds each one back as a refinement of the previous output.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/nevora/english-to-code/internal/config"
	"github.com/nevora/english-to-code/internal/engine"
	"github.com/nevora/english-to-code/internal/logging"
	"github.com/nevora/english-to-code/internal/translator"
)

const userSystem = "You are a developer describing features to a code generator. " +
	"Reply with ONE short English sentence and nothing else."

func main() {
	target := flag.String("target", "python", "output language")
	rounds := flag.Int("rounds", 3, "refinement rounds after the first translation")
	flag.Parse()

	ctx := context.Background()
	logger, err := logging.New("info", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	user, err := engine.New(ctx, cfg)
	if err != nil {
		logger.Fatal("create user backend", zap.Error(err))
	}
	defer user.Close()

	tr, err := translator.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("create translator", zap.Error(err))
	}
	defer tr.Close()

	fmt.Println("--- Step 1: Requesting a feature from the user LLM ---")
	prompt := ask(ctx, user, "Describe a small gameplay feature, e.g. 'Spawn enemy when timer reaches zero'.", "Spawn enemy when timer reaches zero")
	fmt.Printf("User asked for: %s\n\n", prompt)

	code, plan, err := tr.TranslateWithPlan(ctx, translator.Request{Prompt: prompt, Target: *target})
	if err != nil {
		logger.Fatal("translate", zap.Error(err))
	}
	fmt.Print(plan.Explain())
	fmt.Printf("\n%s\n\n", code)

	for round := 1; round <= *rounds; round++ {
		fmt.Printf("--- Round %d ---\n", round)
		followUp := ask(ctx, user, fmt.Sprintf(
			"You asked for: %q. The generator produced:\n\n%s\n\nWhat single change do you want next?", prompt, code),
			"Also play a sound when it happens")
		fmt.Printf("User follow-up: %s\n", followUp)

		code, plan, err = tr.TranslateWithPlan(ctx, translator.Request{
			Prompt:  followUp,
			Target:  *target,
			Refine:  true,
			Context: code,
		})
		if err != nil {
			logger.Error("refine failed", zap.Int("round", round), zap.Error(err))
			break
		}
		fmt.Printf("Actions: %v  Conditions: %v\n\n", plan.Intent.Actions, plan.Intent.Conditions)
	}

	ok, msg := tr.VerifyOutput(ctx, code, *target)
	fmt.Printf("Final verification: ok=%t %s\n", ok, msg)
}

// ask returns the backend's one-line reply, or fallback when it fails.
func ask(ctx context.Context, gen engine.Generator, question, fallback string) string {
	reply, err := gen.Generate(ctx, userSystem, question)
	if err != nil {
		return fallback
	}
	line, _, _ := strings.Cut(strings.TrimSpace(engine.StripFences(reply)), "\n")
	if line == "" {
		return fallback
	}
	return line
}
