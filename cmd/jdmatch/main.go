// Command jdmatch indexes job descriptions and scores resumes from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/bootstrap"
	"talentalign/jd-matcher/internal/config"
	"talentalign/jd-matcher/internal/logger"
)

var (
	debugLogs bool
	jsonLogs  bool

	cfg    *config.Config
	appLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "jdmatch",
	Short:         "Match resumes against job descriptions",
	Long:          "jdmatch indexes job description PDFs into the vector store and scores resumes against them with the same pipeline the API uses.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg = config.Load()

		l, err := logger.NewStderr(jsonLogs, debugLogs || cfg.Log.Debug)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		appLog = l

		return cfg.Validate()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Emit logs as JSON")
}

func newCore(ctx context.Context) (*bootstrap.Core, error) {
	return bootstrap.NewCore(ctx, cfg, appLog)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
