package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "careerlogy",
	Short: "Career guidance backed by an LLM",
	Long: `careerlogy suggests careers for a student profile, builds a 9-step
roadmap for a chosen career and answers free-form career questions.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to .env file (default ./.env if present)")

	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, askCmd)
}
