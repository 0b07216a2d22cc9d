package main

import (
	"context"

	"github.com/spf13/cobra"

	"bedtime_storyteller/publisher"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List saved stories, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		cat, err := publisher.OpenCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List(context.Background(), limit)
		if err != nil {
			return err
		}
		return printLibrary(cmd.OutOrStdout(), format, entries)
	},
}

func init() {
	libraryCmd.Flags().Int("limit", 20, "maximum number of stories to list (0 for all)")
	libraryCmd.Flags().String("format", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(libraryCmd)
}
