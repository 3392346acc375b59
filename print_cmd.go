package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leolalee/library/catalog"
	"github.com/leolalee/library/utils"
)

var (
	printPage  int
	printPager bool

	printCmd = &cobra.Command{
		Use:               "print BOOK-ID",
		Short:             "Render a book to the terminal",
		Example:           paragraph("leola print crochet-mastery\nleola print needle-and-yarn --page 2 --pager"),
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeBookIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, ok := catalog.Default().Find(args[0])
			if !ok {
				return fmt.Errorf("no book with id %q", args[0])
			}
			out, err := renderBook(b, printPage, style, width)
			if err != nil {
				return err
			}
			if printPager {
				return runPager(out)
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
				return fmt.Errorf("unable to write to writer: %w", err)
			}
			return nil
		},
	}
)

// bookMarkdown returns the book as markdown. page is 1-based; 0 means every
// page.
func bookMarkdown(b *catalog.Book, page int) (string, error) {
	if page < 0 || page > b.PageCount() {
		return "", fmt.Errorf("page %d is out of range: %s has %d pages", page, b.ID, b.PageCount())
	}

	var sb strings.Builder
	if page == 0 {
		fmt.Fprintf(&sb, "# %s\n\n*by %s*\n\n%s\n\n", b.Title, b.Author, b.Description)
	}
	for i, p := range b.Pages {
		if page != 0 && i != page-1 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", p.Title, strings.TrimSpace(p.Content))
	}
	return sb.String(), nil
}

func renderBook(b *catalog.Book, page int, style string, width uint) (string, error) {
	md, err := bookMarkdown(b, page)
	if err != nil {
		return "", err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

func runPager(out string) error {
	pagerCmd := os.Getenv("PAGER")
	if pagerCmd == "" {
		pagerCmd = "less -r"
	}

	pa := strings.Split(pagerCmd, " ")
	c := exec.Command(pa[0], pa[1:]...) //nolint:gosec
	c.Stdin = strings.NewReader(out)
	c.Stdout = os.Stdout
	if err := c.Run(); err != nil {
		return fmt.Errorf("unable to run command: %w", err)
	}
	return nil
}

func init() {
	printCmd.Flags().IntVarP(&printPage, "page", "n", 0, "print only this page (1-based)")
	printCmd.Flags().BoolVarP(&printPager, "pager", "p", false, "display with pager")
}
