package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alfredoptarigan/jobpost-ats/internal/services"
)

var screenCmd = &cobra.Command{
	Use:   "screen <application-id>",
	Short: "Screen one application's resume now",
	Long:  "Runs the resume screening for a single application synchronously and prints the stored result as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	applicationID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid application id %q: %w", args[0], err)
	}

	ctx := cmd.Context()
	d, err := loadDeps(ctx)
	if err != nil {
		return err
	}

	screening := services.NewScreeningService(d.appRepo, d.jobRepo, d.storage, d.gemini, services.ScreeningOptions{
		Bucket:      d.cfg.Storage.Bucket,
		MaxFileSize: d.cfg.Screening.MaxFileSize,
		Timeout:     d.cfg.Screening.Timeout,
	})

	result, err := screening.Screen(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("screening failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
