// Package catalog holds the books that ship with the library.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed books/*.yaml
var embedded embed.FS

var (
	ErrNoBooks     = errors.New("catalog has no books")
	ErrMissingID   = errors.New("book has no id")
	ErrDuplicateID = errors.New("duplicate book id")
	ErrNoPages     = errors.New("book has no pages")
)

// paragraphSeparator divides the paragraphs of a page.
const paragraphSeparator = "\n\n"

// Page is a single page of a book.
type Page struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Paragraphs returns the non-empty paragraphs of the page in order.
func (p Page) Paragraphs() []string {
	var out []string
	for _, para := range strings.Split(p.Content, paragraphSeparator) {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

// Book is an immutable catalog entry.
type Book struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
	Pages       []Page `yaml:"pages"`
}

func (b *Book) PageCount() int {
	return len(b.Pages)
}

// Page returns the page at index i.
func (b *Book) Page(i int) (Page, bool) {
	if i < 0 || i >= len(b.Pages) {
		return Page{}, false
	}
	return b.Pages[i], true
}

// LastPage is the index of the final page.
func (b *Book) LastPage() int {
	return len(b.Pages) - 1
}

// Catalog is the set of books available to the reader.
type Catalog struct {
	books []*Book
	byID  map[string]*Book
}

// New builds a catalog from the given books. Books are ordered by title.
func New(books ...*Book) (*Catalog, error) {
	if len(books) == 0 {
		return nil, ErrNoBooks
	}

	c := &Catalog{byID: make(map[string]*Book, len(books))}
	for _, b := range books {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingID, b.Title)
		}
		if _, ok := c.byID[b.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
		}
		if len(b.Pages) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoPages, b.ID)
		}
		c.byID[b.ID] = b
		c.books = append(c.books, b)
	}

	sort.SliceStable(c.books, func(i, j int) bool {
		return strings.ToLower(c.books[i].Title) < strings.ToLower(c.books[j].Title)
	})
	return c, nil
}

// Load reads every YAML book found at the top level of fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}

	books := make([]*Book, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var b Book
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path.Base(name), err)
		}
		books = append(books, &b)
	}
	return New(books...)
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	sub, err := fs.Sub(embedded, "books")
	if err != nil {
		panic(err)
	}
	c, err := Load(sub)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Books returns all books ordered by title.
func (c *Catalog) Books() []*Book {
	out := make([]*Book, len(c.books))
	copy(out, c.books)
	return out
}

func (c *Catalog) Len() int {
	return len(c.books)
}

// Find looks up a book by id.
func (c *Catalog) Find(id string) (*Book, bool) {
	b, ok := c.byID[id]
	return b, ok
}

// filterSource adapts the catalog to fuzzy.Source.
type filterSource []*Book

func (s filterSource) String(i int) string {
	return s[i].Title + " " + s[i].Author
}

func (s filterSource) Len() int {
	return len(s)
}

// Filter returns the books whose title or author fuzzily matches query, best
// match first. An empty query returns every book.
func (c *Catalog) Filter(query string) []*Book {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Books()
	}

	matches := fuzzy.FindFrom(query, filterSource(c.books))
	out := make([]*Book, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.books[m.Index])
	}
	return out
}
