package services

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kerbaras/gutenshelf/pkg/data"
)

// Genres returns the distinct subjects present on the page, sorted.
func Genres(books []data.Book) []string {
	seen := make(map[string]struct{})
	for _, b := range books {
		for _, s := range b.Subjects {
			if s == "" {
				continue
			}
			seen[s] = struct{}{}
		}
	}

	genres := make([]string, 0, len(seen))
	for s := range seen {
		genres = append(genres, s)
	}
	sort.Strings(genres)
	return genres
}

// Visible returns the books whose title contains query (case-insensitive)
// and whose subjects include genre. A blank query and the "all" genre match
// everything. The input order is preserved and the input is not modified.
func Visible(books []data.Book, query, genre string) []data.Book {
	fold := cases.Fold()
	needle := fold.String(query)
	if strings.TrimSpace(query) == "" {
		needle = ""
	}

	out := make([]data.Book, 0, len(books))
	for _, b := range books {
		if !matchesGenre(b, genre) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(b.Title), needle) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func matchesGenre(b data.Book, genre string) bool {
	return genre == "" || genre == data.AllGenres || b.HasSubject(genre)
}
