package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/config"
	"studyguru-quiz-service/internal/domain"
)

type discoverFlags struct {
	search     string
	category   string
	difficulty string
	quizType   string
	sort       string
	options    bool
}

// NewDiscoverCmd lists published quizzes with search, filters and sorting.
func NewDiscoverCmd(configPath *string) *cobra.Command {
	var f discoverFlags
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List published quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.close()
			return runDiscover(cmd.Context(), app.NewCatalog(b.store, b.store, b.timeout), f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.search, "search", "", "match title, description, creator or category")
	cmd.Flags().StringVar(&f.category, "category", domain.AllOption, "category filter")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", domain.AllOption, "difficulty filter")
	cmd.Flags().StringVar(&f.quizType, "type", domain.AllOption, "question type filter")
	cmd.Flags().StringVar(&f.sort, "sort", string(domain.SortRating), "rating, popularity or newest")
	cmd.Flags().BoolVar(&f.options, "options", false, "print the available filter values instead")
	return cmd
}

func runDiscover(ctx context.Context, catalog *app.Catalog, f discoverFlags, out io.Writer) error {
	list := app.NewQuizList(catalog)
	if err := list.Refresh(ctx); err != nil {
		notice := app.NoticeFor(err)
		return fmt.Errorf("%s: %w", notice.Message, err)
	}

	if f.options {
		opts := list.Options()
		fmt.Fprintf(out, "Categories:   %s\n", strings.Join(opts.Categories, ", "))
		fmt.Fprintf(out, "Difficulties: %s\n", strings.Join(opts.Difficulties, ", "))
		fmt.Fprintf(out, "Types:        %s\n", strings.Join(opts.Types, ", "))
		return nil
	}

	list.SetFilters(domain.Filters{SearchTerm: f.search, Category: f.category, Difficulty: f.difficulty, Type: f.quizType})
	list.SetSort(app.ParseSortKey(f.sort))
	visible := list.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(out, "No quizzes found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tCREATOR\tCATEGORY\tDIFFICULTY\tTYPE\tRATING\tATTEMPTS")
	for _, q := range visible {
		rating := "-"
		if q.AverageRating != nil {
			rating = fmt.Sprintf("%.1f", *q.AverageRating)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n", q.Title, q.CreatorName, q.Category, q.Difficulty, q.Type, rating, q.TotalAttempts)
	}
	return w.Flush()
}
