// Package fs exports boards as a directory of markdown files and reads such
// exports back. The layout is board.md, linking each card in list order, and
// one cards/<name>.md per card with YAML frontmatter.
package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"corkboard/internal/board/models"

	"gopkg.in/yaml.v3"
)

type boardFrontmatter struct {
	Background string            `yaml:"background,omitempty"`
	Labels     map[string]string `yaml:"labels,omitempty"`
	ListColors map[string]string `yaml:"list_colors,omitempty"`
}

type cardFrontmatter struct {
	Labels   []string `yaml:"labels,omitempty"`
	Members  []string `yaml:"members,omitempty"`
	Due      string   `yaml:"due,omitempty"`
	Archived bool     `yaml:"archived,omitempty"`
}

// Export writes board to dir. memberNames maps member ids to display names;
// ids missing from it are left out of the card frontmatter.
func Export(dir string, board models.Board, memberNames map[string]string) error {
	cardsDir := filepath.Join(dir, "cards")
	if err := os.MkdirAll(cardsDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	names := filenames{}
	var buf bytes.Buffer

	if err := writeBoardFrontmatter(&buf, board); err != nil {
		return err
	}
	buf.WriteString("# ")
	buf.WriteString(board.Title)
	buf.WriteString("\n\n")

	for _, list := range board.Lists {
		buf.WriteString("## ")
		buf.WriteString(list.Title)
		buf.WriteString("\n\n")

		for _, card := range list.Cards {
			filename := names.next(card.Title)
			if err := writeCard(filepath.Join(cardsDir, filename), &board, card, memberNames); err != nil {
				return fmt.Errorf("failed to write card %s: %w", card.ID, err)
			}
			writeLink(&buf, card.Title, filename)
		}
	}

	return os.WriteFile(filepath.Join(dir, "board.md"), buf.Bytes(), 0644)
}

func writeBoardFrontmatter(buf *bytes.Buffer, board models.Board) error {
	fm := boardFrontmatter{Background: board.Background}
	if len(board.Labels) > 0 {
		fm.Labels = make(map[string]string, len(board.Labels))
		for _, l := range board.Labels {
			fm.Labels[l.Name] = l.Color
		}
	}
	for _, list := range board.Lists {
		if list.Color == "" {
			continue
		}
		if fm.ListColors == nil {
			fm.ListColors = map[string]string{}
		}
		fm.ListColors[list.Title] = list.Color
	}
	if fm.Background == "" && fm.Labels == nil && fm.ListColors == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return err
	}
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n\n")
	return nil
}

func writeLink(buf *bytes.Buffer, title, filename string) {
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("](./cards/")
	buf.WriteString(filename)
	buf.WriteString(")\n\n")
}

// writeCard writes a card file with frontmatter, the title as heading, the
// description and one task list per checklist
func writeCard(path string, board *models.Board, card models.Card, memberNames map[string]string) error {
	var buf bytes.Buffer

	fm := cardFrontmatter{
		Labels:   board.LabelNames(card),
		Archived: card.Archived,
	}
	for _, id := range card.MemberIDs {
		if name, ok := memberNames[id]; ok {
			fm.Members = append(fm.Members, name)
		}
	}
	if card.DueDate != nil {
		fm.Due = card.DueDate.In(time.Local).Format("2006-01-02")
	}

	if len(fm.Labels) > 0 || len(fm.Members) > 0 || fm.Due != "" || fm.Archived {
		yamlBytes, err := yaml.Marshal(fm)
		if err != nil {
			return err
		}
		buf.WriteString("---\n")
		buf.Write(yamlBytes)
		buf.WriteString("---\n\n")
	}

	buf.WriteString("# ")
	buf.WriteString(card.Title)
	buf.WriteString("\n")

	if card.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(card.Description)
		if card.Description[len(card.Description)-1] != '\n' {
			buf.WriteString("\n")
		}
	}

	for _, cl := range card.Checklists {
		buf.WriteString("\n## ")
		buf.WriteString(cl.Title)
		buf.WriteString("\n\n")
		for _, item := range cl.Items {
			if item.Completed {
				buf.WriteString("- [x] ")
			} else {
				buf.WriteString("- [ ] ")
			}
			buf.WriteString(item.Text)
			buf.WriteString("\n")
		}
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}
