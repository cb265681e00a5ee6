package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-autotest/provider"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers [id]",
		Short: "List supported LLM vendors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vendors := provider.Vendors()
			if len(args) == 1 {
				info, ok := provider.Lookup(provider.VendorID(strings.ToLower(args[0])))
				if !ok {
					return &provider.UnsupportedProviderError{VendorID: provider.VendorID(args[0])}
				}
				vendors = []provider.VendorInfo{info}
			}
			if flagJSON {
				printJSON(vendors)
				return nil
			}

			headers := []string{"ID", "NAME", "DEFAULT MODEL", "DEFAULT ENDPOINT", "RECOMMENDED"}
			var rows [][]string
			for _, v := range vendors {
				recommended := ""
				if v.Recommended {
					recommended = "yes"
				}
				rows = append(rows, []string{string(v.ID), v.Name, v.DefaultModel, v.DefaultEndpoint, recommended})
			}
			printTable(headers, rows)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newProvidersCmd())
}
