// Package parser reads Markdown documents with YAML front matter, such as
// the research briefing handed to the chat collaborator.
package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	h1Regex      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// Meta is the front matter of a briefing.
type Meta struct {
	Title      string   `yaml:"title"`
	Venue      string   `yaml:"venue"`
	Authors    []string `yaml:"authors"`
	Benchmarks []string `yaml:"benchmarks"`
	Models     []string `yaml:"models"`
}

// Document is a parsed Markdown file.
type Document struct {
	Meta Meta

	// Title from front matter, falling back to the first h1.
	Title string

	// Body after the front matter.
	Content string

	Sections []Section
}

// Section is a heading and the text under it.
type Section struct {
	Level   int    // 1-6 for h1-h6
	Heading string
	Path    string // e.g. "# Findings > ## Segmentation"
	Content string
	Start   int // 1-based line numbers within Content
	End     int
}

// Parse splits content into front matter, title and sections.
// Malformed front matter is an error; a missing block is not.
func Parse(content string) (*Document, error) {
	doc := &Document{}

	body := content
	if raw, rest, ok := splitFrontMatter(content); ok {
		if err := yaml.Unmarshal([]byte(raw), &doc.Meta); err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
		body = rest
	}

	doc.Content = body
	doc.Title = doc.Meta.Title
	if doc.Title == "" {
		if m := h1Regex.FindStringSubmatch(body); len(m) > 1 {
			doc.Title = strings.TrimSpace(m[1])
		}
	}
	doc.Sections = parseSections(body)

	return doc, nil
}

func splitFrontMatter(content string) (string, string, bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return "", content, false
	}
	end := strings.Index(content[4:], "\n---")
	if end < 0 {
		return "", content, false
	}
	raw := content[4 : 4+end]
	rest := content[4+end+4:]
	rest = strings.TrimPrefix(rest, "\n")
	return raw, rest, true
}

func parseSections(content string) []Section {
	var sections []Section

	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0
	var path []string
	var levels []int

	var current *Section
	var body strings.Builder

	flush := func(endLine int) {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		current.End = endLine
		sections = append(sections, *current)
		body.Reset()
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		m := headingRegex.FindStringSubmatch(line)
		if m == nil {
			if current != nil {
				body.WriteString(line)
				body.WriteString("\n")
			}
			continue
		}

		flush(lineNum - 1)

		level := len(m[1])
		heading := strings.TrimSpace(m[2])
		for len(levels) > 0 && levels[len(levels)-1] >= level {
			path = path[:len(path)-1]
			levels = levels[:len(levels)-1]
		}
		path = append(path, m[1]+" "+heading)
		levels = append(levels, level)

		current = &Section{
			Level:   level,
			Heading: heading,
			Path:    strings.Join(path, " > "),
			Start:   lineNum,
		}
	}
	flush(lineNum)

	return sections
}

// Section returns the first section whose heading matches name
// case-insensitively.
func (d *Document) Section(name string) (Section, bool) {
	for _, s := range d.Sections {
		if strings.EqualFold(s.Heading, name) {
			return s, true
		}
	}
	return Section{}, false
}

// Headings lists section headings in document order.
func (d *Document) Headings() []string {
	out := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		out = append(out, s.Heading)
	}
	return out
}

// Context renders the document as plain text for a language model prompt:
// the title, a metadata line per non-empty field, then the body.
func (d *Document) Context() string {
	var b strings.Builder
	if d.Title != "" {
		b.WriteString(d.Title)
		b.WriteString("\n")
	}
	writeList := func(label string, values []string) {
		if len(values) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(values, ", "))
		}
	}
	if d.Meta.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", d.Meta.Venue)
	}
	writeList("Authors", d.Meta.Authors)
	writeList("Benchmarks", d.Meta.Benchmarks)
	writeList("Models", d.Meta.Models)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(d.Content))
	return strings.TrimSpace(b.String())
}
