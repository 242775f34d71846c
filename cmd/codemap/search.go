package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codemap/internal/explore"
)

var (
	searchGlob  bool
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search nodes by keyword or path glob",
	Long: `Keyword search matches identifiers, signatures, and doc comments, ranked by
term frequency weighted with importance. With --glob the query is a path
pattern instead; files that failed to parse are still reachable this way.

Examples:
  codemap search "retry backoff"
  codemap search --glob "src/handlers/*.py"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchGlob, "glob", false, "Treat the query as a path glob")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum hits (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()
	if searchLimit <= 0 {
		searchLimit = cfg.Budget.MaxSearchHits
	}

	snap, err := loadSnapshot(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	kind := explore.SearchKeyword
	if searchGlob {
		kind = explore.SearchPathGlob
	}
	hits := explore.Search(snap, args[0], kind, searchLimit)

	var sb strings.Builder
	if len(hits) == 0 {
		sb.WriteString("no matches")
	}
	for i, h := range hits {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%-8s %s [%.2f]", h.Kind, h.ID, h.Relevance)
	}
	return emit(sb.String(), hits)
}
