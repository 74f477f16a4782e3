package models

import (
	"encoding/json"
	"time"
)

// CardPatch is a partial card update. Nil pointers and nil slices leave the
// field untouched; an empty non-nil slice clears it. ClearDue removes the due
// date and wins over DueDate.
type CardPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	ClearDue    bool
	LabelIDs    []string
	MemberIDs   []string
	Checklists  []Checklist
	Archived    *bool
}

// ListPatch is a partial list update. A non-nil empty Color removes the color.
type ListPatch struct {
	Title *string
	Color *string
}

// BoardPatch is a partial board update
type BoardPatch struct {
	Title      *string
	Background *string
}

// LabelPatch is a partial label update
type LabelPatch struct {
	Name  *string
	Color *string
}

// ItemPatch is a partial checklist item update
type ItemPatch struct {
	Text      *string
	Completed *bool
}

// Ptr returns a pointer to v, for building patches inline
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether the patch changes nothing
func (p CardPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && !p.ClearDue &&
		p.LabelIDs == nil && p.MemberIDs == nil && p.Checklists == nil && p.Archived == nil
}

// Apply merges the patch into the card
func (p CardPatch) Apply(c *Card) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ClearDue {
		c.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		c.DueDate = &due
	}
	if p.LabelIDs != nil {
		c.LabelIDs = append([]string{}, p.LabelIDs...)
	}
	if p.MemberIDs != nil {
		c.MemberIDs = append([]string{}, p.MemberIDs...)
	}
	if p.Checklists != nil {
		c.Checklists = Card{Checklists: p.Checklists}.Clone().Checklists
	}
	if p.Archived != nil {
		c.Archived = *p.Archived
	}
}

// MarshalJSON emits only the fields the patch changes; a cleared due date
// is sent as null.
func (p CardPatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.ClearDue {
		fields["dueDate"] = nil
	} else if p.DueDate != nil {
		fields["dueDate"] = p.DueDate.Format(time.RFC3339)
	}
	if p.LabelIDs != nil {
		fields["labelIds"] = p.LabelIDs
	}
	if p.MemberIDs != nil {
		fields["memberIds"] = p.MemberIDs
	}
	if p.Checklists != nil {
		fields["checklists"] = p.Checklists
	}
	if p.Archived != nil {
		fields["archived"] = *p.Archived
	}
	return json.Marshal(fields)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (p *CardPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = CardPatch{}
	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &p.Title); err != nil {
			return err
		}
	}
	if v, ok := raw["description"]; ok {
		if err := json.Unmarshal(v, &p.Description); err != nil {
			return err
		}
	}
	if v, ok := raw["dueDate"]; ok {
		if string(v) == "null" {
			p.ClearDue = true
		} else if err := json.Unmarshal(v, &p.DueDate); err != nil {
			return err
		}
	}
	if v, ok := raw["labelIds"]; ok {
		ids, err := clearableIDs(v)
		if err != nil {
			return err
		}
		p.LabelIDs = ids
	}
	if v, ok := raw["memberIds"]; ok {
		ids, err := clearableIDs(v)
		if err != nil {
			return err
		}
		p.MemberIDs = ids
	}
	if v, ok := raw["checklists"]; ok {
		p.Checklists = []Checklist{}
		if string(v) != "null" {
			if err := json.Unmarshal(v, &p.Checklists); err != nil {
				return err
			}
		}
	}
	if v, ok := raw["archived"]; ok {
		if err := json.Unmarshal(v, &p.Archived); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch into the list
func (p ListPatch) Apply(l *List) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
}

// MarshalJSON sends a removed color as null
func (p ListPatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Color != nil {
		if *p.Color == "" {
			fields["color"] = nil
		} else {
			fields["color"] = *p.Color
		}
	}
	return json.Marshal(fields)
}

// UnmarshalJSON maps a null color to an empty one
func (p *ListPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title *string          `json:"title"`
		Color *json.RawMessage `json:"color"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ListPatch{Title: raw.Title}
	if raw.Color != nil {
		color := ""
		if string(*raw.Color) != "null" {
			if err := json.Unmarshal(*raw.Color, &color); err != nil {
				return err
			}
		}
		p.Color = &color
	}
	return nil
}

// Apply merges the patch into the board header fields
func (p BoardPatch) Apply(b *Board) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Background != nil {
		b.Background = *p.Background
	}
}

// MarshalJSON emits only the changed fields
func (p BoardPatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Background != nil {
		fields["background"] = *p.Background
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes a partial board body
func (p *BoardPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title      *string `json:"title"`
		Background *string `json:"background"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = BoardPatch{Title: raw.Title, Background: raw.Background}
	return nil
}

// Apply merges the patch into the label
func (p LabelPatch) Apply(l *Label) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
}

// MarshalJSON emits only the changed fields
func (p LabelPatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes a partial label body
func (p *LabelPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = LabelPatch{Name: raw.Name, Color: raw.Color}
	return nil
}

// Apply merges the patch into the item
func (p ItemPatch) Apply(item *ChecklistItem) {
	if p.Text != nil {
		item.Text = *p.Text
	}
	if p.Completed != nil {
		item.Completed = *p.Completed
	}
}

// MarshalJSON emits only the changed fields
func (p ItemPatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Text != nil {
		fields["text"] = *p.Text
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes a partial item body
func (p *ItemPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text      *string `json:"text"`
		Completed *bool   `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ItemPatch{Text: raw.Text, Completed: raw.Completed}
	return nil
}

// clearableIDs decodes an id list where null means "clear", never "absent"
func clearableIDs(v json.RawMessage) ([]string, error) {
	ids := []string{}
	if string(v) == "null" {
		return ids, nil
	}
	if err := json.Unmarshal(v, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
