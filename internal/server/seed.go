package server

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"corkboard/internal/board/models"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoSeed []byte

// Seed preloads the repository. Labels and members are referenced by name.
type Seed struct {
	Members []MemberSeed `yaml:"members"`
	Boards  []BoardSeed  `yaml:"boards"`
}

type MemberSeed struct {
	Name     string `yaml:"name"`
	Initials string `yaml:"initials,omitempty"`
	Color    string `yaml:"color,omitempty"`
}

type BoardSeed struct {
	Title      string      `yaml:"title"`
	Background string      `yaml:"background,omitempty"`
	Labels     []LabelSeed `yaml:"labels,omitempty"`
	Lists      []ListSeed  `yaml:"lists,omitempty"`
}

type LabelSeed struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

type ListSeed struct {
	Title string     `yaml:"title"`
	Color string     `yaml:"color,omitempty"`
	Cards []CardSeed `yaml:"cards,omitempty"`
}

type CardSeed struct {
	Title       string          `yaml:"title"`
	Description string          `yaml:"description,omitempty"`
	Due         string          `yaml:"due,omitempty"`
	Labels      []string        `yaml:"labels,omitempty"`
	Members     []string        `yaml:"members,omitempty"`
	Archived    bool            `yaml:"archived,omitempty"`
	Checklists  []ChecklistSeed `yaml:"checklists,omitempty"`
}

type ChecklistSeed struct {
	Title string     `yaml:"title"`
	Items []ItemSeed `yaml:"items,omitempty"`
}

type ItemSeed struct {
	Text string `yaml:"text"`
	Done bool   `yaml:"done,omitempty"`
}

// ParseSeed decodes a YAML seed document
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed: %w", err)
	}
	return seed, nil
}

// LoadSeed reads a seed file from disk
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed %s: %w", path, err)
	}
	return ParseSeed(data)
}

// DemoSeed returns the built-in sample workspace
func DemoSeed() Seed {
	seed, err := ParseSeed(demoSeed)
	if err != nil {
		panic(err)
	}
	return seed
}

// Load adds the seeded members and boards to the repository
func (r *Repository) Load(seed Seed) error {
	memberIDs := make(map[string]string, len(seed.Members))
	for _, m := range seed.Members {
		member := r.AddMember(m.Name, m.Initials, m.Color)
		memberIDs[m.Name] = member.ID
	}

	for _, bs := range seed.Boards {
		if err := r.loadBoard(bs, memberIDs); err != nil {
			return fmt.Errorf("board %q: %w", bs.Title, err)
		}
	}
	return nil
}

func (r *Repository) loadBoard(bs BoardSeed, memberIDs map[string]string) error {
	title, err := validTitle(bs.Title)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := &models.Board{ID: r.newID(), Title: title, Background: bs.Background, Lists: []models.List{}, Labels: []models.Label{}}
	labelIDs := make(map[string]string, len(bs.Labels))
	for _, ls := range bs.Labels {
		label := models.Label{ID: r.newID(), BoardID: b.ID, Name: ls.Name, Color: ls.Color}
		b.Labels = append(b.Labels, label)
		labelIDs[ls.Name] = label.ID
	}

	for _, lst := range bs.Lists {
		list := models.List{ID: r.newID(), BoardID: b.ID, Title: lst.Title, Color: lst.Color, Cards: []models.Card{}}
		for _, cs := range lst.Cards {
			card, err := r.seedCard(cs, list.ID, labelIDs, memberIDs)
			if err != nil {
				return err
			}
			list.Cards = append(list.Cards, card)
		}
		b.Lists = append(b.Lists, list)
	}

	r.boards = append(r.boards, b)
	return nil
}

func (r *Repository) seedCard(cs CardSeed, listID string, labelIDs, memberIDs map[string]string) (models.Card, error) {
	card := models.Card{
		ID:          r.newID(),
		ListID:      listID,
		Title:       cs.Title,
		Description: cs.Description,
		LabelIDs:    []string{},
		MemberIDs:   []string{},
		Checklists:  []models.Checklist{},
		Archived:    cs.Archived,
	}

	if cs.Due != "" {
		due, err := time.ParseInLocation("2006-01-02", cs.Due, time.Local)
		if err != nil {
			return models.Card{}, fmt.Errorf("card %q: invalid due date %q", cs.Title, cs.Due)
		}
		card.DueDate = &due
	}
	for _, name := range cs.Labels {
		id, ok := labelIDs[name]
		if !ok {
			return models.Card{}, fmt.Errorf("card %q: unknown label %q", cs.Title, name)
		}
		card.LabelIDs = append(card.LabelIDs, id)
	}
	for _, name := range cs.Members {
		id, ok := memberIDs[name]
		if !ok {
			return models.Card{}, fmt.Errorf("card %q: unknown member %q", cs.Title, name)
		}
		card.MemberIDs = append(card.MemberIDs, id)
	}
	for _, cls := range cs.Checklists {
		cl := models.Checklist{ID: r.newID(), CardID: card.ID, Title: cls.Title, Items: []models.ChecklistItem{}}
		for _, is := range cls.Items {
			cl.Items = append(cl.Items, models.ChecklistItem{ID: r.newID(), ChecklistID: cl.ID, Text: is.Text, Completed: is.Done})
		}
		card.Checklists = append(card.Checklists, cl)
	}
	return card, nil
}
