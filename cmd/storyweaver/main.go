// Package main provides the storyweaver command line tool for extracting user stories from requirement documents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storyweaver",
		Short: "Extract user stories from requirement documents",
		Long: `storyweaver splits requirement text into sections, extracts "As a {role}, I want to {action}, So that {value}" stories,
scores their confidence and optionally refines weak stories with a remote LLM.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newSectionsCmd())
	rootCmd.AddCommand(newProvidersCmd())
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
