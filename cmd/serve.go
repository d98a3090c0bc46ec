package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"invigil.io/infrastructure"
	"invigil.io/infrastructure/env"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the http api and the task queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return infrastructure.StartServer(ctx, env.Settings)
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued enrollment videos and alert emails without serving http",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return infrastructure.StartWorker(ctx, env.Settings)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}
