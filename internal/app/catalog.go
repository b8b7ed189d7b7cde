package app

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"studyguru-quiz-service/internal/domain"
)

// AnonymousCreator replaces creator names missing from the batch lookup.
const AnonymousCreator = "Anonymous"

// Project filters and sorts quizzes for the discovery listing. It never mutates all.
func Project(all []domain.Quiz, filters domain.Filters, sortKey domain.SortKey) []domain.Quiz {
	term := strings.ToLower(filters.SearchTerm)
	visible := make([]domain.Quiz, 0, len(all))
	for _, q := range all {
		if term != "" && !matchesSearch(q, term) {
			continue
		}
		if !matchesOption(filters.Category, q.Category) ||
			!matchesOption(filters.Difficulty, q.Difficulty) ||
			!matchesOption(filters.Type, q.Type) {
			continue
		}
		visible = append(visible, q)
	}

	switch sortKey {
	case domain.SortRating:
		sort.SliceStable(visible, func(i, j int) bool {
			return rating(visible[i]) > rating(visible[j])
		})
	case domain.SortPopularity:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].TotalAttempts > visible[j].TotalAttempts
		})
	case domain.SortNewest:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].CreatedAt.After(visible[j].CreatedAt)
		})
	}
	return visible
}

func matchesSearch(q domain.Quiz, term string) bool {
	for _, field := range []string{q.Title, q.Description, q.CreatorName, q.Category} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func matchesOption(selected, value string) bool {
	return selected == "" || selected == domain.AllOption || selected == value
}

func rating(q domain.Quiz) float64 {
	if q.AverageRating == nil {
		return 0
	}
	return *q.AverageRating
}

// ParseSortKey maps user input to a sort key, defaulting to rating.
func ParseSortKey(raw string) domain.SortKey {
	switch domain.SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.SortPopularity:
		return domain.SortPopularity
	case domain.SortNewest:
		return domain.SortNewest
	default:
		return domain.SortRating
	}
}

// Options lists distinct non-empty categories, difficulties and types.
func Options(all []domain.Quiz) domain.FilterOptions {
	var cats, diffs, types []string
	for _, q := range all {
		cats = append(cats, q.Category)
		diffs = append(diffs, q.Difficulty)
		types = append(types, q.Type)
	}
	return domain.FilterOptions{
		Categories:   withAll(cats),
		Difficulties: withAll(diffs),
		Types:        withAll(types),
	}
}

func withAll(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return append([]string{domain.AllOption}, out...)
}

// Catalog loads published quizzes with their creators' display names.
type Catalog struct {
	quizzes  QuizSource
	creators CreatorDirectory
	timeout  time.Duration
}

func NewCatalog(quizzes QuizSource, creators CreatorDirectory, timeout time.Duration) *Catalog {
	return &Catalog{quizzes: quizzes, creators: creators, timeout: timeout}
}

func (c *Catalog) Load(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := withTimeout(ctx, c.timeout, c.quizzes.ListPublishedQuizzes)
	if err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return []domain.Quiz{}, nil
	}

	names := c.creatorNames(ctx, quizzes)
	for i := range quizzes {
		quizzes[i].CreatorName = AnonymousCreator
		if name := names[quizzes[i].CreatedBy]; name != "" {
			quizzes[i].CreatorName = name
		}
	}
	return quizzes, nil
}

func (c *Catalog) creatorNames(ctx context.Context, quizzes []domain.Quiz) map[string]string {
	if c.creators == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var refs []string
	for _, q := range quizzes {
		if q.CreatedBy == "" {
			continue
		}
		if _, ok := seen[q.CreatedBy]; !ok {
			seen[q.CreatedBy] = struct{}{}
			refs = append(refs, q.CreatedBy)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	names, err := withTimeout(ctx, c.timeout, func(ctx context.Context) (map[string]string, error) {
		return c.creators.ResolveCreatorNames(ctx, refs)
	})
	if err != nil {
		// Listing continues without names.
		log.Printf("resolve creator names: %v", err)
		return nil
	}
	return names
}

// QuizList holds the discovery screen state: the fetched quizzes plus filters and sort.
type QuizList struct {
	catalog *Catalog

	mu      sync.RWMutex
	all     []domain.Quiz
	filters domain.Filters
	sortKey domain.SortKey
}

func NewQuizList(catalog *Catalog) *QuizList {
	return &QuizList{
		catalog: catalog,
		filters: domain.DefaultFilters(),
		sortKey: domain.SortRating,
	}
}

// Refresh replaces the base collection. Filters and sort survive.
func (l *QuizList) Refresh(ctx context.Context) error {
	all, err := l.catalog.Load(ctx)
	if err != nil {
		return err
	}
	l.Replace(all)
	return nil
}

// Replace swaps the base collection wholesale.
func (l *QuizList) Replace(all []domain.Quiz) {
	l.mu.Lock()
	l.all = all
	l.mu.Unlock()
}

func (l *QuizList) SetFilters(f domain.Filters) {
	l.mu.Lock()
	l.filters = f
	l.mu.Unlock()
}

func (l *QuizList) SetSearchTerm(term string) {
	l.mu.Lock()
	l.filters.SearchTerm = term
	l.mu.Unlock()
}

func (l *QuizList) SetSort(key domain.SortKey) {
	l.mu.Lock()
	l.sortKey = key
	l.mu.Unlock()
}

// ResetFilters restores the default filters and sort in one update.
func (l *QuizList) ResetFilters() {
	l.mu.Lock()
	l.filters = domain.DefaultFilters()
	l.sortKey = domain.SortRating
	l.mu.Unlock()
}

func (l *QuizList) Filters() (domain.Filters, domain.SortKey) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filters, l.sortKey
}

// Visible projects the current state; it is never cached.
func (l *QuizList) Visible() []domain.Quiz {
	l.mu.RLock()
	all, filters, sortKey := l.all, l.filters, l.sortKey
	l.mu.RUnlock()
	return Project(all, filters, sortKey)
}

func (l *QuizList) Options() domain.FilterOptions {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Options(l.all)
}
