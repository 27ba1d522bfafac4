package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/storyweaver/internal/ingestion"
	"github.com/jonathan/storyweaver/internal/observability"
	"github.com/jonathan/storyweaver/internal/sections"
)

func newSectionsCmd() *cobra.Command {
	var (
		lexiconPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "sections <file>",
		Short: "Show how a document is split into classified sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := loadLexicon(lexiconPath)
			if err != nil {
				return err
			}

			src, err := ingestion.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}

			secs := sections.NewClassifier(lex).Split(uuid.NewString(), src.Text)
			if asJSON {
				return writeDocument(cmd.OutOrStdout(), "", secs)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintSections(secs)
			return nil
		},
	}

	cmd.Flags().StringVar(&lexiconPath, "lexicon", "", "Path to a YAML lexicon overriding the keyword tables")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print sections as JSON")

	return cmd
}
