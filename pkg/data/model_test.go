package data

import "testing"

func TestAuthorNames(t *testing.T) {
	tests := []struct {
		name string
		book Book
		want string
	}{
		{"no authors", Book{}, "N/A"},
		{"one author", Book{Authors: []Author{{Name: "Carroll, Lewis"}}}, "Carroll, Lewis"},
		{"two authors", Book{Authors: []Author{{Name: "A"}, {Name: "B"}}}, "A, B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.book.AuthorNames(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCoverURLAndSubjects(t *testing.T) {
	book := Book{
		ID:       11,
		Title:    "Alice's Adventures in Wonderland",
		Subjects: []string{"Fantasy fiction"},
		Formats:  map[string]string{"image/jpeg": "https://example.com/cover.jpg"},
	}

	if book.CoverURL() != "https://example.com/cover.jpg" {
		t.Errorf("Unexpected cover URL %q", book.CoverURL())
	}
	if !book.HasSubject("Fantasy fiction") {
		t.Error("Expected subject to match")
	}
	if book.HasSubject("fantasy fiction") {
		t.Error("Subject membership is exact")
	}
	if (Book{}).CoverURL() != "" {
		t.Error("Expected empty cover URL without formats")
	}
}
