package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Categorize transaction descriptions",
		Long: `Categorize free-text transaction descriptions against the loaded
taxonomy and trained model.

Texts are taken from the arguments, from --file (one per line), or from
stdin when neither is given.

Examples:
  fincat classify "STARBUCKS 123" "SHELL OIL 4521"
  fincat classify --file descriptions.txt --top-k 5
  cat descriptions.txt | fincat classify --json`,
		RunE: runClassify,
	}

	cmd.Flags().IntP("top-k", "k", 3, "Number of candidates to return per text")
	cmd.Flags().StringP("file", "f", "", "Read descriptions from a file, one per line")
	cmd.Flags().Bool("json", false, "Emit results as JSON")

	_ = viper.BindPFlag("classification.top_k", cmd.Flags().Lookup("top-k"))

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	topK := viper.GetInt("classification.top_k")
	file, _ := cmd.Flags().GetString("file")
	asJSON, _ := cmd.Flags().GetBool("json")

	texts, err := gatherTexts(args, file, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no texts to classify")
	}

	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	results, err := eng.Classify(ctx, texts, topK)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	for _, r := range results {
		printResult(cmd, r)
	}
	return nil
}

func gatherTexts(args []string, file string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var scanner *bufio.Scanner
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		scanner = bufio.NewScanner(f)
	} else {
		scanner = bufio.NewScanner(stdin)
	}

	var texts []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return texts, nil
}

func printResult(cmd *cobra.Command, r model.ClassificationResult) {
	marker := ""
	switch {
	case r.AliasOverride:
		marker = " (alias)"
	case r.Degenerate():
		marker = " (no confident prediction)"
	}
	cmd.Printf("%s -> %s (%.3f)%s\n", r.Text, r.Prediction, r.Confidence, marker)
	for _, c := range r.Candidates {
		cmd.Printf("    %-20s %.3f\n", c.CategoryID, c.Probability)
	}
}

func writeJSON(w io.Writer, results []model.ClassificationResult) error {
	type candidateOut struct {
		Category    string  `json:"category"`
		Probability float64 `json:"probability"`
	}
	type resultOut struct {
		Text          string         `json:"text"`
		Prediction    string         `json:"pred"`
		Confidence    float64        `json:"conf"`
		Candidates    []candidateOut `json:"candidates"`
		AliasOverride bool           `json:"alias_override"`
	}

	out := make([]resultOut, len(results))
	for i, r := range results {
		candidates := make([]candidateOut, len(r.Candidates))
		for j, c := range r.Candidates {
			candidates[j] = candidateOut{Category: c.CategoryID, Probability: c.Probability}
		}
		out[i] = resultOut{
			Text:          r.Text,
			Prediction:    r.Prediction,
			Confidence:    r.Confidence,
			Candidates:    candidates,
			AliasOverride: r.AliasOverride,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
