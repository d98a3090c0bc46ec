package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invigil.io/infrastructure/env"
)

var rootCmd = &cobra.Command{
	Use:   "invigil",
	Short: "Candidate registration and live exam proctoring",
	Long: `Invigil registers exam candidates from an enrollment video and watches their
webcam frames and browser telemetry during the exam, raising alerts for a proctor.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	env.LoadEnv()
}
