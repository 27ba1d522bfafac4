package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/storyweaver/internal/llm"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the supported models and their providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPROVIDER\tUSD/1K TOKENS\tENDPOINT")
			for _, m := range llm.Models() {
				endpoint := m.BaseURL
				if endpoint == "" {
					endpoint = "(sdk)"
				}
				fmt.Fprintf(w, "%s\t%s\t%.6f\t%s\n", m.Model, m.Provider, m.RatePer1K, endpoint)
			}
			return w.Flush()
		},
	}
}
