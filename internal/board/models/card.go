package models

import (
	"errors"
	"time"
)

var (
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrTitleTooLong = errors.New("title too long (max 512 characters)")
)

// Card is a unit of work. It is owned by exactly one list; ListID always
// names that list.
type Card struct {
	ID          string      `json:"id"`
	ListID      string      `json:"listId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	LabelIDs    []string    `json:"labelIds"`
	MemberIDs   []string    `json:"memberIds"`
	Checklists  []Checklist `json:"checklists"`
	Archived    bool        `json:"archived,omitempty"`
}

// Checklist is owned by its card
type Checklist struct {
	ID     string          `json:"id"`
	CardID string          `json:"cardId"`
	Title  string          `json:"title"`
	Items  []ChecklistItem `json:"items"`
}

// ChecklistItem is owned by its checklist
type ChecklistItem struct {
	ID          string `json:"id"`
	ChecklistID string `json:"checklistId"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
}

// DueStatus is the badge state shown next to a due date
type DueStatus string

const (
	DueNone    DueStatus = ""
	DueOverdue DueStatus = "overdue"
	DueSoon    DueStatus = "due-soon"
	DueNormal  DueStatus = "normal"
)

// Progress summarizes checklist completion across a card
type Progress struct {
	Completed int
	Total     int
}

// IsComplete reports whether every item is done (and there is at least one)
func (p Progress) IsComplete() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// HasLabel reports whether the card references the label
func (c Card) HasLabel(id string) bool {
	return contains(c.LabelIDs, id)
}

// HasMember reports whether the card references the member
func (c Card) HasMember(id string) bool {
	return contains(c.MemberIDs, id)
}

// ChecklistProgress counts completed items over all checklists.
// Returns false when the card has no checklists.
func (c Card) ChecklistProgress() (Progress, bool) {
	if len(c.Checklists) == 0 {
		return Progress{}, false
	}
	var p Progress
	for _, cl := range c.Checklists {
		p.Total += len(cl.Items)
		for _, item := range cl.Items {
			if item.Completed {
				p.Completed++
			}
		}
	}
	return p, true
}

// DueStatusAt classifies the due date relative to the local day of now
func (c Card) DueStatusAt(now time.Time) DueStatus {
	if c.DueDate == nil {
		return DueNone
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	due := c.DueDate.In(now.Location())
	switch {
	case due.Before(today):
		return DueOverdue
	case due.Before(today.AddDate(0, 0, 2)):
		return DueSoon
	default:
		return DueNormal
	}
}

// Clone returns a deep copy of the card
func (c Card) Clone() Card {
	out := c
	if c.DueDate != nil {
		due := *c.DueDate
		out.DueDate = &due
	}
	out.LabelIDs = append([]string(nil), c.LabelIDs...)
	out.MemberIDs = append([]string(nil), c.MemberIDs...)
	out.Checklists = make([]Checklist, len(c.Checklists))
	for i, cl := range c.Checklists {
		cl.Items = append([]ChecklistItem(nil), cl.Items...)
		out.Checklists[i] = cl
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
