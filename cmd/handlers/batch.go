package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"postforge/internal/briefs"
	"postforge/internal/config"
	"postforge/internal/core"
	"postforge/internal/logger"
)

// batchFile is the YAML shape of a batch run definition.
type batchFile struct {
	Items []batchItem `yaml:"items"`
}

// batchItem is one post request in a batch file.
type batchItem struct {
	Topic             string   `yaml:"topic"`
	Neighborhood      string   `yaml:"neighborhood"`
	Borough           string   `yaml:"borough"`
	State             string   `yaml:"state"`
	Keyword           string   `yaml:"keyword"`
	SecondaryKeywords []string `yaml:"secondary_keywords"`
	Intent            string   `yaml:"intent"`
	Audience          string   `yaml:"audience"`
	Length            int      `yaml:"length"`
	PhotoCategory     string   `yaml:"photo_category"`
}

// batchOutcome tallies one item for the run summary.
type batchOutcome struct {
	Topic    string
	Location string
	Status   string // published, skipped, failed
	Detail   string
}

// NewBatchCmd creates the batch generation command
func NewBatchCmd() *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Generate posts for every item in a YAML batch file",
		Long: `Run the full generation pipeline for each item in a batch definition,
sequentially, with a courtesy delay between items. A failed item is
logged and skipped; the rest of the batch continues.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			strict, _ := cmd.Flags().GetBool("strict")
			if err := runBatch(cmd.Context(), args[0], strict); err != nil {
				logger.Error("Batch run failed", err)
				os.Exit(1)
			}
		},
	}

	batchCmd.Flags().Bool("strict", false, "Fail items instead of publishing best-effort posts below threshold")
	return batchCmd
}

func runBatch(ctx context.Context, path string, strict bool) error {
	items, err := loadBatchFile(path)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("batch file %s contains no items", path)
	}

	// Console progress for the operator; structured logs still go to the
	// shared logger.
	console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	pipe, err := buildPipeline(ctx, strict)
	if err != nil {
		return err
	}
	defer pipe.Close()

	delay := config.Duration(pipe.cfg.Generation.ItemDelay, 30*time.Second)
	outcomes := make([]batchOutcome, 0, len(items))

	for i, item := range items {
		if i > 0 {
			console.Info().Dur("delay", delay).Msg("waiting before next item")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, categoryHint := item.toRequest(pipe.cfg.Generation.ContentLength)
		console.Info().
			Int("item", i+1).
			Int("of", len(items)).
			Str("topic", req.Topic).
			Str("location", req.Location.Name).
			Msg("generating")

		result, err := pipe.publish(ctx, req, categoryHint)
		outcome := batchOutcome{Topic: req.Topic, Location: req.Location.Name}
		switch {
		case err != nil:
			outcome.Status = "failed"
			outcome.Detail = err.Error()
			console.Error().Err(err).Str("topic", req.Topic).Msg("item failed")
		case result.Skipped != "":
			outcome.Status = "skipped"
			outcome.Detail = result.Skipped
			console.Warn().Str("reason", result.Skipped).Msg("item skipped")
		default:
			outcome.Status = "published"
			outcome.Detail = result.Path
			console.Info().
				Str("slug", result.Post.Slug).
				Str("template", result.Post.TemplateID).
				Int("attempts", result.Post.Attempts).
				Msg("published")
		}
		outcomes = append(outcomes, outcome)
	}

	fmt.Println(renderBatchSummary(outcomes))
	return nil
}

func loadBatchFile(path string) ([]batchItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	var parsed batchFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}
	for i, item := range parsed.Items {
		if item.Topic == "" || item.Neighborhood == "" {
			return nil, fmt.Errorf("batch item %d is missing topic or neighborhood", i+1)
		}
	}
	return parsed.Items, nil
}

func (item batchItem) toRequest(defaultLength int) (briefs.Request, string) {
	keyword := item.Keyword
	if keyword == "" {
		keyword = fmt.Sprintf("%s %s", item.Topic, item.Neighborhood)
	}
	intent := item.Intent
	if intent == "" {
		intent = "informational"
	}
	audience := item.Audience
	if audience == "" {
		audience = "residents and visitors"
	}
	length := item.Length
	if length == 0 {
		length = defaultLength
	}

	return briefs.Request{
		Topic:             item.Topic,
		Location:          core.Location{Name: item.Neighborhood, Qualifier: item.Borough, Region: item.State},
		TargetKeyword:     keyword,
		SecondaryKeywords: item.SecondaryKeywords,
		SearchIntent:      core.SearchIntent(strings.ToLower(intent)),
		Audience:          audience,
		ContentLength:     length,
	}, item.PhotoCategory
}

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	publishedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skippedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderBatchSummary formats the per-item results and totals.
func renderBatchSummary(outcomes []batchOutcome) string {
	var b strings.Builder
	b.WriteString(summaryTitleStyle.Render("Batch Summary"))
	b.WriteString("\n\n")

	published, skipped, failed := 0, 0, 0
	for _, outcome := range outcomes {
		var style lipgloss.Style
		switch outcome.Status {
		case "published":
			style = publishedStyle
			published++
		case "skipped":
			style = skippedStyle
			skipped++
		default:
			style = failedStyle
			failed++
		}
		b.WriteString(fmt.Sprintf("  %s  %s / %s — %s\n",
			style.Render(fmt.Sprintf("%-9s", outcome.Status)),
			outcome.Topic, outcome.Location, outcome.Detail))
	}

	b.WriteString(fmt.Sprintf("\n  %d published, %d skipped, %d failed of %d total",
		published, skipped, failed, len(outcomes)))
	return b.String()
}
