package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/leolalee/library/catalog"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the books in the library",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listBooks(cmd.OutOrStdout(), catalog.Default())
	},
}

func listBooks(w io.Writer, c *catalog.Catalog) error {
	for _, b := range c.Books() {
		pages := humanize.Comma(int64(b.PageCount())) + " pages"
		if b.PageCount() == 1 {
			pages = "1 page"
		}
		_, err := fmt.Fprintf(w, "%s\n  %s · %s\n  %s\n\n",
			keyword(b.Title), b.Author, pages, subtle(b.ID))
		if err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}
	return nil
}
