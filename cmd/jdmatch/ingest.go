package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <folder>",
	Short: "Index every job description PDF in a folder",
	Long:  "Walk a folder, extract text from every PDF and store it in the job catalog. Near-duplicates of stored postings are reported and left out.",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

type ingestSummary struct {
	Stored     int
	Duplicates int
	TooShort   int
	Failed     int
}

func runIngest(cmd *cobra.Command, args []string) error {
	core, err := newCore(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	summary, err := ingestFolder(cmd.Context(), args[0], core.Catalog, services.NewPDFParserService(), cfg.Scoring.MinJobTextLength, out, appLog)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nstored %d, duplicates %d, too short %d, failed %d\n",
		summary.Stored, summary.Duplicates, summary.TooShort, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to ingest", summary.Failed)
	}
	return nil
}

func ingestFolder(
	ctx context.Context,
	dir string,
	catalog services.JobCatalogService,
	parser services.PDFParserService,
	minTextLength int,
	out io.Writer,
	log *zap.Logger,
) (ingestSummary, error) {
	log = logger.OrNop(log)
	var summary ingestSummary

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "no PDF files found in %s\n", dir)
		return summary, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := filepath.Base(path)

		text, err := parser.ExtractText(path)
		if err != nil && !errors.Is(err, services.ErrNoPDFText) {
			log.Warn("failed to read pdf", zap.String(logger.FieldDocument, name), zap.Error(err))
			fmt.Fprintf(out, "failed     %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		if len(strings.TrimSpace(text)) < minTextLength {
			fmt.Fprintf(out, "too short  %s\n", name)
			summary.TooShort++
			continue
		}

		job, err := catalog.AddJob(ctx, name, text)
		var dup *services.DuplicateJobError
		switch {
		case errors.As(err, &dup):
			fmt.Fprintf(out, "duplicate  %s matches %s (%.4f)\n", name, dup.FileName, dup.Score)
			summary.Duplicates++
		case err != nil:
			log.Warn("failed to store job description", zap.String(logger.FieldDocument, name), zap.Error(err))
			fmt.Fprintf(out, "failed     %s: %v\n", name, err)
			summary.Failed++
		default:
			fmt.Fprintf(out, "stored     %s (%s)\n", name, job.ID)
			summary.Stored++
		}
	}
	return summary, nil
}
