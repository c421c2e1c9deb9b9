package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"postforge/internal/briefs"
	"postforge/internal/core"
	"postforge/internal/generator"
	"postforge/internal/logger"
)

// NewGenerateCmd creates the single-post generation command
func NewGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and publish one blog post",
		Long: `Generate a single post for a topic and location, score it against the
published corpus, and write it to the primary content tree. The post is
regenerated under an alternative angle if it scores too close to
existing content.`,
		Run: func(cmd *cobra.Command, args []string) {
			req, categoryHint, strict := requestFromFlags(cmd)
			if err := runGenerate(cmd.Context(), req, categoryHint, strict); err != nil {
				logger.Error("Generation failed", err)
				os.Exit(1)
			}
		},
	}

	generateCmd.Flags().String("topic", "", "Subject of the post (required)")
	generateCmd.Flags().String("neighborhood", "", "Target neighborhood or city (required)")
	generateCmd.Flags().String("borough", "", "Borough or district qualifier")
	generateCmd.Flags().String("state", "", "State or region")
	generateCmd.Flags().String("keyword", "", "Primary SEO keyword (defaults to \"<topic> <neighborhood>\")")
	generateCmd.Flags().StringSlice("secondary-keywords", nil, "Supporting keywords")
	generateCmd.Flags().String("intent", "informational", "Search intent: informational, transactional, navigational, or commercial")
	generateCmd.Flags().String("audience", "residents and visitors", "Who the post is written for")
	generateCmd.Flags().Int("length", 0, "Target word count (defaults to generation.content_length)")
	generateCmd.Flags().String("photo-category", "", "Preferred curated photo bucket (cityscape, residential, nature, food)")
	generateCmd.Flags().Bool("strict", false, "Fail instead of publishing a best-effort post below threshold")
	_ = generateCmd.MarkFlagRequired("topic")
	_ = generateCmd.MarkFlagRequired("neighborhood")

	return generateCmd
}

// requestFromFlags assembles a brief request from the command line.
func requestFromFlags(cmd *cobra.Command) (briefs.Request, string, bool) {
	topic, _ := cmd.Flags().GetString("topic")
	neighborhood, _ := cmd.Flags().GetString("neighborhood")
	borough, _ := cmd.Flags().GetString("borough")
	state, _ := cmd.Flags().GetString("state")
	keyword, _ := cmd.Flags().GetString("keyword")
	secondary, _ := cmd.Flags().GetStringSlice("secondary-keywords")
	intent, _ := cmd.Flags().GetString("intent")
	audience, _ := cmd.Flags().GetString("audience")
	length, _ := cmd.Flags().GetInt("length")
	categoryHint, _ := cmd.Flags().GetString("photo-category")
	strict, _ := cmd.Flags().GetBool("strict")

	if keyword == "" {
		keyword = fmt.Sprintf("%s %s", topic, neighborhood)
	}

	req := briefs.Request{
		Topic:             topic,
		Location:          core.Location{Name: neighborhood, Qualifier: borough, Region: state},
		TargetKeyword:     keyword,
		SecondaryKeywords: secondary,
		SearchIntent:      core.SearchIntent(strings.ToLower(intent)),
		Audience:          audience,
		ContentLength:     length,
	}
	return req, categoryHint, strict
}

func runGenerate(ctx context.Context, req briefs.Request, categoryHint string, strict bool) error {
	pipe, err := buildPipeline(ctx, strict)
	if err != nil {
		return err
	}
	defer pipe.Close()

	if req.ContentLength == 0 {
		req.ContentLength = pipe.cfg.Generation.ContentLength
	}

	fmt.Printf("📝 Generating post: %s / %s\n", req.Topic, req.Location.Name)

	result, err := pipe.publish(ctx, req, categoryHint)
	if err != nil {
		return describeFailure(err)
	}
	if result.Skipped != "" {
		fmt.Printf("⏭️  Skipped: %s\n", result.Skipped)
		return nil
	}

	printPublished(result)
	return nil
}

// printPublished shows the outcome of one successful publication.
func printPublished(result *publishResult) {
	post := result.Post
	fmt.Printf("✅ Published: %s\n", result.Path)
	fmt.Printf("   Slug:      %s\n", post.Slug)
	fmt.Printf("   Template:  %s  Angle: %s\n", post.TemplateID, post.ContentAngle)
	fmt.Printf("   Photo:     %s\n", result.Photo.ID)
	fmt.Printf("   Words:     %d  Attempts: %d\n", post.WordCount, post.Attempts)
	if post.Differentiation != nil {
		fmt.Printf("   Scores:    differentiation %.2f, quality %.2f\n",
			post.Differentiation.OverallScore, post.QualityScore)
	}
	for _, warning := range post.Warnings {
		fmt.Printf("⚠️  %s\n", warning)
	}
}

// describeFailure attaches actionable context to the well-known failure
// modes before passing the error up.
func describeFailure(err error) error {
	var exhausted *generator.ExhaustionError
	if errors.As(err, &exhausted) {
		return fmt.Errorf("%w\nEvery angle for this topic has been published; pick a new topic or a different search intent", err)
	}
	var threshold *generator.ThresholdError
	if errors.As(err, &threshold) {
		return fmt.Errorf("%w\nRe-run without --strict to publish the best effort with warnings", err)
	}
	return err
}
