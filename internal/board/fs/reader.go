package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// BoardDoc is an exported board as read back from disk. Labels and members
// are referenced by name since ids do not survive an export.
type BoardDoc struct {
	Title      string
	Background string
	Labels     map[string]string
	Lists      []ListDoc
}

type ListDoc struct {
	Title string
	Color string
	Cards []CardDoc
}

type CardDoc struct {
	Title       string
	Description string
	Labels      []string
	Members     []string
	Due         *time.Time
	Archived    bool
	Checklists  []ChecklistDoc
}

type ChecklistDoc struct {
	Title string
	Items []ItemDoc
}

type ItemDoc struct {
	Text string
	Done bool
}

// ReadBoard reads an export directory written by Export
func ReadBoard(dir string) (BoardDoc, error) {
	content, err := os.ReadFile(filepath.Join(dir, "board.md"))
	if err != nil {
		return BoardDoc{}, err
	}

	raw, body := splitFrontmatter(content)
	var fm boardFrontmatter
	if raw != nil {
		if err := yaml.Unmarshal(raw, &fm); err != nil {
			return BoardDoc{}, fmt.Errorf("invalid board frontmatter: %w", err)
		}
	}

	doc := BoardDoc{Background: fm.Background, Labels: fm.Labels, Lists: []ListDoc{}}
	var current *ListDoc
	var readErr error

	root := goldmark.DefaultParser().Parse(text.NewReader(body))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := string(node.Text(body))
			if node.Level == 1 {
				doc.Title = headingText
			} else if node.Level == 2 {
				if current != nil {
					doc.Lists = append(doc.Lists, *current)
				}
				current = &ListDoc{Title: headingText, Color: fm.ListColors[headingText], Cards: []CardDoc{}}
			}
			return ast.WalkSkipChildren, nil

		case *ast.Link:
			dest := string(node.Destination)
			if current == nil || !(strings.HasPrefix(dest, "./cards/") || strings.HasPrefix(dest, "cards/")) {
				return ast.WalkContinue, nil
			}
			card, err := ReadCard(filepath.Join(dir, dest))
			if err != nil {
				readErr = err
				return ast.WalkStop, nil
			}
			current.Cards = append(current.Cards, card)
		}
		return ast.WalkContinue, nil
	})
	if readErr != nil {
		return BoardDoc{}, readErr
	}

	if current != nil {
		doc.Lists = append(doc.Lists, *current)
	}
	if doc.Title == "" {
		doc.Title = filepath.Base(dir)
	}
	return doc, nil
}

// ReadCard reads one card file
func ReadCard(path string) (CardDoc, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return CardDoc{}, err
	}

	raw, body := splitFrontmatter(content)
	var fm cardFrontmatter
	if raw != nil {
		if err := yaml.Unmarshal(raw, &fm); err != nil {
			return CardDoc{}, fmt.Errorf("%s: invalid frontmatter: %w", filepath.Base(path), err)
		}
	}

	card := CardDoc{Labels: fm.Labels, Members: fm.Members, Archived: fm.Archived}
	if fm.Due != "" {
		due, err := time.ParseInLocation("2006-01-02", fm.Due, time.Local)
		if err != nil {
			return CardDoc{}, fmt.Errorf("%s: invalid due date %q", filepath.Base(path), fm.Due)
		}
		card.Due = &due
	}

	card.Title, card.Description, card.Checklists = parseCardBody(string(body))
	return card, nil
}

// splitFrontmatter returns the YAML between leading --- fences, or nil, and
// the remaining body
func splitFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))
	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return nil, content
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			raw := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.TrimLeft(bytes.Join(lines[i+1:], []byte("\n")), "\n")
			return raw, body
		}
	}
	return nil, content
}

// parseCardBody splits a card body into its title heading, description and
// trailing checklist sections. A level-2 heading starts a checklist only when
// every non-blank line under it is a task item.
func parseCardBody(body string) (string, string, []ChecklistDoc) {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")

	title := "Untitled"
	start := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			start = i + 1
			break
		}
		if strings.TrimSpace(line) != "" {
			break
		}
	}
	lines = lines[start:]

	descEnd := len(lines)
	var checklists []ChecklistDoc
	for i := len(lines) - 1; i >= 0; i-- {
		if !strings.HasPrefix(lines[i], "## ") {
			continue
		}
		items, ok := taskItems(lines[i+1 : descEnd])
		if !ok {
			break
		}
		checklists = append([]ChecklistDoc{{Title: strings.TrimSpace(lines[i][3:]), Items: items}}, checklists...)
		descEnd = i
	}

	description := strings.TrimSpace(strings.Join(lines[:descEnd], "\n"))
	return title, description, checklists
}

func taskItems(lines []string) ([]ItemDoc, bool) {
	items := []ItemDoc{}
	for _, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
		case strings.HasPrefix(line, "- [ ] "):
			items = append(items, ItemDoc{Text: line[6:]})
		case strings.HasPrefix(line, "- [x] "), strings.HasPrefix(line, "- [X] "):
			items = append(items, ItemDoc{Text: line[6:], Done: true})
		default:
			return nil, false
		}
	}
	return items, true
}
