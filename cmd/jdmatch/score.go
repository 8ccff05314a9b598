package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/services"
)

var (
	resumePath string
	jobPath    string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one resume against one job description",
	RunE:  runScore,
}

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List the job's skills a resume does not show",
	RunE:  runMissing,
}

func init() {
	for _, c := range []*cobra.Command{scoreCmd, missingCmd} {
		c.Flags().StringVar(&resumePath, "resume", "", "Path to the resume PDF")
		c.Flags().StringVar(&jobPath, "jd", "", "Path to the job description PDF")
		_ = c.MarkFlagRequired("resume")
		_ = c.MarkFlagRequired("jd")
		rootCmd.AddCommand(c)
	}
}

// readPair extracts the text of the resume and job description PDFs.
func readPair(parser services.PDFParserService) (string, string, error) {
	resumeText, err := parser.ExtractText(resumePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read resume: %w", err)
	}
	jobText, err := parser.ExtractText(jobPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read job description: %w", err)
	}
	return resumeText, jobText, nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	resumeText, jobText, err := readPair(services.NewPDFParserService())
	if err != nil {
		return err
	}

	core, err := newCore(cmd.Context())
	if err != nil {
		return err
	}
	matcher := core.Pipeline.Matcher

	profile := matcher.ExtractProfile(cmd.Context(), resumeText, models.DocTypeResume)
	if profile.IsEmpty() {
		return services.ErrEmptyExtraction
	}

	result := matcher.ScoreOne(cmd.Context(), profile, jobText)
	result.Name = resumePath
	return printJSON(cmd.OutOrStdout(), result)
}

func runMissing(cmd *cobra.Command, _ []string) error {
	resumeText, jobText, err := readPair(services.NewPDFParserService())
	if err != nil {
		return err
	}

	core, err := newCore(cmd.Context())
	if err != nil {
		return err
	}

	report, err := core.Pipeline.Matcher.SkillGap(cmd.Context(), resumeText, jobText)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
