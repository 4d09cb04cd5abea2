// cmd/eligibility-service/evaluate.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"scheme-eligibility/internal/common/logger"
	"scheme-eligibility/internal/eligibility"
	"scheme-eligibility/internal/explanation"
	"scheme-eligibility/internal/models"
)

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		schemeID    string
		profilePath string
		explain     bool
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a profile file against one scheme",
		Long: `Evaluate a YAML or JSON profile against a scheme's criteria and print
the ordered rule results and the score. With --explain the configured
explanation service is asked for a plain-language explanation as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cat, err := root.loadCatalog(cfg)
			if err != nil {
				return err
			}
			scheme, err := cat.MustGet(schemeID)
			if err != nil {
				return err
			}
			profile, err := readProfile(profilePath)
			if err != nil {
				return err
			}

			// Diagnostics go to stderr so stdout stays machine-readable.
			log := logger.NewZapAdapter(logger.NewWithOutput(cfg.Logging.Level, "console", "stderr"))
			outcome := eligibility.NewSequencer(log).Run(scheme, profile)

			if !explain {
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), outcome)
				}
				printOutcome(cmd.OutOrStdout(), scheme, outcome)
				return nil
			}

			explainer, err := explanation.New(cmd.Context(), cfg.Explanation, nil, nil, log)
			if err != nil {
				return err
			}
			req := explanation.NewRequest(scheme, profile, outcome.Results)
			payload, err := explainer.Explain(cmd.Context(), req)
			if err != nil {
				return err
			}
			result := explanation.BuildResult(req, payload, cfg.Explanation.FallbackAlternatives)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printOutcome(cmd.OutOrStdout(), scheme, outcome)
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemeID, "scheme", "s", "", "Scheme id, e.g. pm-kisan")
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (YAML or JSON)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Ask the explanation service for an explanation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	_ = cmd.MarkFlagRequired("scheme")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// readProfile decodes a profile file. JSON is valid YAML, so one decoder
// serves both.
func readProfile(path string) (models.UserProfile, error) {
	var profile models.UserProfile
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return profile, err
	}
	return profile, nil
}

func printOutcome(w io.Writer, scheme *models.Scheme, outcome *eligibility.Outcome) {
	fmt.Fprintf(w, "%s (%s)\n", scheme.Name, scheme.ID)
	for _, r := range outcome.Results {
		mark := "✗"
		if r.Passed {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", mark, r.CriterionID, r.Reason)
	}
	verdict := "NOT FULLY ELIGIBLE"
	if outcome.IsEligible {
		verdict = "ELIGIBLE"
	}
	fmt.Fprintf(w, "Passed %d/%d, score %d%%: %s\n", outcome.PassedCount, outcome.TotalCount, outcome.OverallScore, verdict)
}

func printResult(w io.Writer, result models.EligibilityResult) {
	fmt.Fprintf(w, "\n%s\n\nNext steps:\n", result.AIExplanation)
	for i, step := range result.NextSteps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
	if len(result.AlternativeSchemes) > 0 {
		fmt.Fprintf(w, "Alternatives: %v\n", result.AlternativeSchemes)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
