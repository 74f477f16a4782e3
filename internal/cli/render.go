package cli

import (
	"strconv"
	"strings"
	"time"

	"corkboard/internal/board/fs"
	"corkboard/internal/board/models"
)

func printBoard(env Env, b models.Board, roster []models.Member, now time.Time) {
	initials := make(map[string]string, len(roster))
	for _, m := range roster {
		initials[m.ID] = m.Initials
	}

	env.printf("# %s\n", b.Title)
	for _, l := range b.Lists {
		env.printf("\n## %s (%d)\n", l.Title, len(l.Cards))
		for _, c := range l.Cards {
			env.printf("  - %s\n", cardLine(b, c, initials, now))
			if preview := fs.Preview(c.Description); preview != "" {
				env.printf("      %s\n", preview)
			}
		}
	}
}

// cardLine renders a card title followed by its badges
func cardLine(b models.Board, c models.Card, initials map[string]string, now time.Time) string {
	parts := []string{c.Title}

	if names := b.LabelNames(c); len(names) > 0 {
		parts = append(parts, "["+strings.Join(names, ", ")+"]")
	}
	for _, id := range c.MemberIDs {
		if in, ok := initials[id]; ok {
			parts = append(parts, "@"+in)
		}
	}
	if c.DueDate != nil {
		due := "due " + c.DueDate.In(time.Local).Format("2006-01-02")
		switch c.DueStatusAt(now) {
		case models.DueOverdue:
			due += " (overdue)"
		case models.DueSoon:
			due += " (soon)"
		}
		parts = append(parts, due)
	}
	if p, ok := c.ChecklistProgress(); ok {
		mark := "[ ]"
		if p.IsComplete() {
			mark = "[x]"
		}
		parts = append(parts, mark+" "+strconv.Itoa(p.Completed)+"/"+strconv.Itoa(p.Total))
	}
	if c.Archived {
		parts = append(parts, "(archived)")
	}
	return strings.Join(parts, " ")
}
