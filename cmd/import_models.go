package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"invigil.io/application/repository"
	"invigil.io/application/services/enrollment"
	"invigil.io/infrastructure/database"
	"invigil.io/infrastructure/env"
	"invigil.io/infrastructure/logger"
)

var importModelsCmd = &cobra.Command{
	Use:   "import-models <dir>",
	Short: "Import user_<uuid>.pt detection artifacts into the database",
	Long: `Import detection artifacts produced outside the enrollment pipeline.
Each user_<uuid>.pt file is stored with the optional user_<uuid>_metadata.txt beside it.
Files whose name is not a valid UUID are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportModels,
}

func init() {
	rootCmd.AddCommand(importModelsCmd)
}

func runImportModels(cmd *cobra.Command, args []string) error {
	dir := args[0]
	files, err := enrollment.ModelFiles(dir)
	if err != nil {
		return fmt.Errorf("read model directory: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("No model files found in %s\n", dir)
		return nil
	}

	logger.InitializeLogger()
	defer logger.Sync()
	if err := database.SetUpDatabase(env.Settings); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.CleanUp()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Importing models"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("models"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)
	summary := enrollment.ImportModels(context.Background(), repository.NewCandidateStore(), dir, files, func() {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	fmt.Printf("\nImported: %d, Failed: %d, Skipped: %d\n", summary.Imported, summary.Failed, summary.Skipped)
	if summary.Failed > 0 {
		return fmt.Errorf("%d model imports failed", summary.Failed)
	}
	return nil
}
