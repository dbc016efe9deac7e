// Package html converts rendered documentation pages into ordered,
// heading-bounded chunks.
package html

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// Segmenter produces chunks from raw HTML pages.
//
// Sections are bounded by headings h1-h4: a section runs from its heading
// up to the next heading of the same or a shallower level. Deeper headings
// are absorbed into the enclosing section's content. Pages without headings
// yield a single whole-page chunk.
type Segmenter struct{}

// New creates a new HTML segmenter.
func New() *Segmenter {
	return &Segmenter{}
}

// maxHeadingLevel is the deepest heading treated as a section boundary.
const maxHeadingLevel = 4

// Elements removed entirely before segmentation. Navigation chrome carries
// no searchable content and pollutes embeddings.
var strippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"canvas":   true,
	"iframe":   true,
	"nav":      true,
	"footer":   true,
	"aside":    true,
	"header":   true,
}

// Block-level elements that introduce paragraph or line breaks in the
// rendered text.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"ul": true, "ol": true, "table": true, "blockquote": true,
	"pre": true, "figure": true, "dl": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var lineTags = map[string]bool{
	"li": true, "tr": true, "dt": true, "dd": true, "figcaption": true,
}

// Segment parses body and returns the ordered chunks for one page.
// Chunks with empty content after normalisation are dropped; if nothing
// remains, the whole content root is emitted as a single chunk.
func (s *Segmenter) Segment(pageName, href string, body []byte) ([]domain.Chunk, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("segment %s: %w", href, domain.ErrInvalidInput)
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("segment %s: parse: %w", href, err)
	}

	content := contentRoot(root)

	sections := collectSections(content)
	ids := newIDAllocator(href)

	chunks := make([]domain.Chunk, 0, len(sections))
	for _, sec := range sections {
		text := domain.NormaliseContent(sec.text())
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:          ids.forHeading(sec.heading, len(chunks)),
			PageName:    pageName,
			Href:        href,
			FullContent: text,
		})
	}

	// Whole-page fallback: no headings, or every section normalised to
	// nothing.
	if len(chunks) == 0 {
		text := domain.NormaliseContent(renderText(content))
		if text == "" {
			return nil, nil
		}
		chunks = append(chunks, domain.Chunk{
			ID:          ids.forIndex(0),
			PageName:    pageName,
			Href:        href,
			FullContent: text,
		})
	}

	return chunks, nil
}

// contentRoot returns the node segmentation starts from: <main>,
// <article>, an element with role="main", or <body>, in that order of
// preference.
func contentRoot(root *html.Node) *html.Node {
	if n := findElement(root, func(n *html.Node) bool { return n.Data == "main" }); n != nil {
		return n
	}
	if n := findElement(root, func(n *html.Node) bool { return n.Data == "article" }); n != nil {
		return n
	}
	if n := findElement(root, func(n *html.Node) bool { return attrValue(n, "role") == "main" }); n != nil {
		return n
	}
	if n := findElement(root, func(n *html.Node) bool { return n.Data == "body" }); n != nil {
		return n
	}
	return root
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// section accumulates the rendered text of one heading-bounded span.
type section struct {
	level   int
	heading string
	buf     strings.Builder
}

func (s *section) text() string {
	return s.buf.String()
}

// collectSections walks the content root in document order, opening a new
// section at each h1-h4 whose level is at or above the current section's
// boundary and absorbing deeper headings into the current section.
// Content before the first heading belongs to no section.
func collectSections(root *html.Node) []*section {
	var sections []*section
	var current *section

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if current != nil {
				current.buf.WriteString(n.Data)
			}
			return
		case html.ElementNode:
			if strippedTags[n.Data] {
				return
			}
			if level, ok := headingLevel(n.Data); ok {
				text := headingText(n)
				if current == nil || level <= current.level {
					current = &section{level: level, heading: text}
					current.buf.WriteString(text)
					sections = append(sections, current)
				} else {
					// Deeper heading: absorbed as content, not a boundary.
					current.buf.WriteString("\n\n" + text + "\n\n")
				}
				return
			}
			if current != nil && blockTags[n.Data] {
				current.buf.WriteString("\n\n")
				defer current.buf.WriteString("\n\n")
			}
			if current != nil && (lineTags[n.Data] || n.Data == "br" || n.Data == "hr") {
				current.buf.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return sections
}

// headingLevel reports the level of a section-boundary heading tag.
// Headings deeper than h4 never bound sections.
func headingLevel(tag string) (int, bool) {
	if len(tag) != 2 || tag[0] != 'h' {
		return 0, false
	}
	level := int(tag[1] - '0')
	if level < 1 || level > maxHeadingLevel {
		return 0, false
	}
	return level, true
}

// headingText renders the flattened, single-line text of a heading node.
func headingText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// renderText renders the full text of a subtree, used for whole-page
// chunks when no heading sections survive.
func renderText(root *html.Node) string {
	var buf strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			if strippedTags[n.Data] {
				return
			}
			if blockTags[n.Data] {
				buf.WriteString("\n\n")
				defer buf.WriteString("\n\n")
			}
			if lineTags[n.Data] || n.Data == "br" || n.Data == "hr" {
				buf.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return buf.String()
}

var nonSlugChars = regexp.MustCompile(`[^\w\s-]`)

// slugify lowercases the heading, strips characters outside word, space,
// and hyphen classes, and joins the remaining words with underscores.
func slugify(heading string) string {
	s := strings.ToLower(heading)
	s = nonSlugChars.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), "_")
}

// idAllocator derives chunk IDs for one page. Two headings that slugify
// identically are disambiguated with a numeric suffix in document order,
// keeping IDs unique within the page's output set.
type idAllocator struct {
	base string
	seen map[string]int
}

func newIDAllocator(href string) *idAllocator {
	return &idAllocator{
		base: strings.TrimSuffix(href, ".html"),
		seen: make(map[string]int),
	}
}

func (a *idAllocator) forHeading(heading string, index int) string {
	slug := slugify(heading)
	if slug == "" {
		return a.forIndex(index)
	}
	a.seen[slug]++
	if n := a.seen[slug]; n > 1 {
		slug = fmt.Sprintf("%s_%d", slug, n)
	}
	return a.base + "#" + slug
}

func (a *idAllocator) forIndex(index int) string {
	return fmt.Sprintf("%s#%d", a.base, index)
}
