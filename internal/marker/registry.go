// Package marker defines the marker categories recognized in documents
// together with the style each one is rendered with.
package marker

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/colorutil"
)

// Style describes how a category is drawn: a background color and a border
// color, both "#rrggbb". An empty Border means the background color.
type Style struct {
	Color  string `json:"color"`
	Border string `json:"border,omitempty"`
}

// Background returns the parsed background color. Styles held by a Registry
// are validated, so the zero value is only returned for unregistered styles.
func (s Style) Background() colorutil.RGB {
	rgb, _ := colorutil.ParseHex(s.Color)
	return rgb
}

// Foreground returns the text color that stays readable on Background.
func (s Style) Foreground() colorutil.RGB {
	return colorutil.AutoTextColor(s.Background())
}

// BorderColor returns the parsed border color.
func (s Style) BorderColor() colorutil.RGB {
	if strings.TrimSpace(s.Border) == "" {
		return s.Background()
	}
	rgb, _ := colorutil.ParseHex(s.Border)
	return rgb
}

// Category is one marker kind. Pattern must not match across a line boundary.
type Category struct {
	Name    string
	Pattern *regexp.Regexp
	Style   Style
}

// Registry is an immutable, ordered set of categories.
type Registry struct {
	categories []Category
	index      map[string]int
}

// KeywordPattern matches a "//" comment prefix, optional blanks, the
// case-sensitive keyword, an optional colon and the rest of the line.
// Blanks are any Unicode space except line terminators.
func KeywordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(commentPrefix + regexp.QuoteMeta(keyword) + `:?[^\r\n]*`)
}

const commentPrefix = `//[\t\v\f \p{Zs}\x{FEFF}]*`

func NewRegistry(categories ...Category) (*Registry, error) {
	r := &Registry{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, errors.New("marker category without name")
		}
		if _, dup := r.index[name]; dup {
			return nil, errors.Errorf("duplicate marker category: %s", name)
		}
		if c.Pattern == nil {
			return nil, errors.Errorf("marker category %s has no pattern", name)
		}
		if _, err := colorutil.ParseHex(c.Style.Color); err != nil {
			return nil, errors.Errorf("marker category %s: %w", name, err)
		}
		if strings.TrimSpace(c.Style.Border) != "" {
			if _, err := colorutil.ParseHex(c.Style.Border); err != nil {
				return nil, errors.Errorf("marker category %s border: %w", name, err)
			}
		}
		c.Name = name
		r.index[name] = len(r.categories)
		r.categories = append(r.categories, c)
	}
	return r, nil
}

func MustRegistry(categories ...Category) *Registry {
	r, err := NewRegistry(categories...)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = MustRegistry(
	Category{Name: "TODO", Pattern: KeywordPattern("TODO"), Style: Style{Color: "#ff77dd", Border: "#ff77dd"}},
	Category{Name: "FIXME", Pattern: KeywordPattern("FIXME"), Style: Style{Color: "#ff9900", Border: "#ff9900"}},
	Category{Name: "HACK", Pattern: KeywordPattern("HACK"), Style: Style{Color: "#bb88ff", Border: "#bb88ff"}},
)

// Default returns the built-in TODO, FIXME and HACK categories.
func Default() *Registry {
	return defaultRegistry
}

// Categories returns a copy of the categories in registry order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

func (r *Registry) Lookup(name string) (Category, bool) {
	i, ok := r.index[name]
	if !ok {
		return Category{}, false
	}
	return r.categories[i], true
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.categories))
	for i, c := range r.categories {
		out[i] = c.Name
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.categories)
}
