package translator

import (
	"fmt"

	"github.com/nevora/english-to-code/internal/models"
)

// BuildPlan wraps intent in the fixed five-stage plan. Only step details
// vary with the input.
func BuildPlan(intent models.ParsedIntent, mode models.Mode) models.GenerationPlan {
	intent = intent.Normalized()
	return models.GenerationPlan{
		Mode:   mode,
		Intent: intent,
		Steps: []models.PlanStep{
			{
				Name:    models.StepIntentParse,
				Details: fmt.Sprintf("entities=%s, actions=%s", models.FormatList(intent.Entities), models.FormatList(intent.Actions)),
			},
			{
				Name:    models.StepTaskDecompose,
				Details: "Split into event handling, state transitions, and outputs",
			},
			{
				Name:    models.StepTargetDesign,
				Details: fmt.Sprintf("Use templates optimized for mode=%s", mode),
			},
			{
				Name:    models.StepGenerate,
				Details: "Render target code",
			},
			{
				Name:    models.StepSelfCheck,
				Details: "Optional syntax verification and basic lint checks",
			},
		},
		StateModel: models.StateModel(),
	}
}
