package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate topics against the indexed references",
	Long: `Reads one topic (JSON object) or several (JSON array) from a file
and validates them against the indexed reference corpus. Use "-" to
read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := setupServices(cmd); err != nil {
		return err
	}

	topics, err := readTopics(args[0])
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return errors.New("no topics to validate")
	}

	results, err := validationService.ValidateTopics(cmd.Context(), topics)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if validateJSON {
		return outputResultsJSON(cmd, results)
	}
	return outputResultsText(cmd, results)
}

// readTopics parses a single topic object or an array of topics.
func readTopics(path string) ([]domain.Topic, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading topics: %w", err)
	}

	var topics []domain.Topic
	if err := json.Unmarshal(data, &topics); err == nil {
		return topics, nil
	}

	var single domain.Topic
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parsing topics from %s: %w", path, err)
	}
	return []domain.Topic{single}, nil
}

func outputResultsJSON(cmd *cobra.Command, results []*domain.ValidationResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultsText(cmd *cobra.Command, results []*domain.ValidationResult) error {
	for _, r := range results {
		cmd.Printf("Topic %s\n", r.TopicID)
		cmd.Printf("  Overall      %.2f\n", r.OverallScore)
		cmd.Printf("  Completeness %.2f  Accuracy %.2f  Coverage %.2f\n",
			r.FieldCompletenessScore, r.ContentAccuracyScore, r.ReferenceCoverageScore)

		if len(r.MatchedReferences) > 0 {
			cmd.Println("  References:")
			for _, m := range r.MatchedReferences {
				cmd.Printf("    %s (%s) similarity %.2f final %.2f\n",
					m.ReferenceID, m.SourceType, m.SimilarityScore, m.FinalScore)
			}
		}
		if len(r.Gaps) > 0 {
			cmd.Println("  Gaps:")
			for _, g := range r.Gaps {
				line := fmt.Sprintf("    [%s] %s", g.Type.Priority(), g.Type)
				if g.FieldName != "" {
					line += fmt.Sprintf(" (%s)", g.FieldName)
				}
				cmd.Printf("%s: %s\n", line, g.Reasoning)
			}
		}
		cmd.Println()
	}
	return nil
}
