package data

import "strings"

// AllGenres is the genre selection that matches every book.
const AllGenres = "all"

type Author struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year,omitempty"`
	DeathYear *int   `json:"death_year,omitempty"`
}

// Book is a catalog record. Wishlist entries are full snapshots of it.
type Book struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []Author          `json:"authors"`
	Subjects      []string          `json:"subjects"`
	Bookshelves   []string          `json:"bookshelves"`
	Languages     []string          `json:"languages"`
	Formats       map[string]string `json:"formats"`
	Copyright     *bool             `json:"copyright,omitempty"`
	DownloadCount int               `json:"download_count,omitempty"`
}

// Page is the result of one catalog fetch. Next and Previous are opaque
// cursors; an empty cursor means there is no page in that direction.
type Page struct {
	Books    []Book
	Count    int
	Next     string
	Previous string
}

type FilterState struct {
	Query string
	Genre string
}

// DefaultFilter matches every book on the page.
func DefaultFilter() FilterState {
	return FilterState{Genre: AllGenres}
}

// AuthorNames joins the author names the way the lists render them.
func (b Book) AuthorNames() string {
	if len(b.Authors) == 0 {
		return "N/A"
	}
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// CoverURL returns the JPEG cover art link, if the catalog has one.
func (b Book) CoverURL() string {
	return b.Formats["image/jpeg"]
}

func (b Book) HasSubject(subject string) bool {
	for _, s := range b.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}
