package server

import (
	"errors"
	"fmt"
	"testing"

	"corkboard/internal/board/models"

	"github.com/google/go-cmp/cmp"
)

// newTestRepository returns a repository with sequential ids:
// board b1 with lists L1=[c1,c2,c3] and L2=[c4], a label and a member.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	r := NewRepository()
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}

	r.boards = []*models.Board{{
		ID:    "b1",
		Title: "Sprint",
		Lists: []models.List{
			{ID: "L1", BoardID: "b1", Title: "To Do", Cards: []models.Card{
				{ID: "c1", ListID: "L1", Title: "one"},
				{ID: "c2", ListID: "L1", Title: "two"},
				{ID: "c3", ListID: "L1", Title: "three"},
			}},
			{ID: "L2", BoardID: "b1", Title: "Done", Cards: []models.Card{
				{ID: "c4", ListID: "L2", Title: "four"},
			}},
		},
		Labels: []models.Label{{ID: "red", BoardID: "b1", Name: "bug", Color: "red"}},
	}}
	r.members = []models.Member{{ID: "m1", Name: "Ada Lovelace", Initials: "AL"}}
	return r
}

func cardIDs(t *testing.T, r *Repository, listID string) []string {
	t.Helper()
	b, err := r.Board("b1")
	if err != nil {
		t.Fatal(err)
	}
	return b.GetList(listID).CardIDs()
}

func TestReorderCards_CrossList(t *testing.T) {
	r := newTestRepository(t)

	if err := r.ReorderCards("L1", "L2", []string{"c2", "c4"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"c1", "c3"}, cardIDs(t, r, "L1")); diff != "" {
		t.Errorf("L1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c2", "c4"}, cardIDs(t, r, "L2")); diff != "" {
		t.Errorf("L2 mismatch (-want +got):\n%s", diff)
	}
	card, _ := r.Card("c2")
	if card.ListID != "L2" {
		t.Errorf("expected c2 re-parented to L2, got %s", card.ListID)
	}
}

func TestReorderCards_SameList(t *testing.T) {
	r := newTestRepository(t)

	if err := r.ReorderCards("L1", "L1", []string{"c3", "c1", "c2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"c3", "c1", "c2"}, cardIDs(t, r, "L1")); diff != "" {
		t.Errorf("L1 mismatch (-want +got):\n%s", diff)
	}
}

func TestReorderCards_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		dst     string
		ids     []string
		wantErr error
	}{
		{"drops destination card", "L1", "L2", []string{"c2"}, ErrInvalid},
		{"duplicate", "L1", "L2", []string{"c2", "c2", "c4"}, ErrInvalid},
		{"foreign card", "L1", "L2", []string{"c9", "c4"}, ErrInvalid},
		{"unknown list", "L1", "L9", []string{"c1"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRepository(t)
			err := r.ReorderCards(tt.src, tt.dst, tt.ids)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if diff := cmp.Diff([]string{"c1", "c2", "c3"}, cardIDs(t, r, "L1")); diff != "" {
				t.Errorf("rejected reorder changed L1 (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReorderLists(t *testing.T) {
	r := newTestRepository(t)

	if err := r.ReorderLists("b1", []string{"L2", "L1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := r.Board("b1")
	if diff := cmp.Diff([]string{"L2", "L1"}, b.ListIDs()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if err := r.ReorderLists("b1", []string{"L1"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for partial order, got %v", err)
	}
	if err := r.ReorderLists("b1", []string{"L1", "L1"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for duplicate, got %v", err)
	}
}

func TestUpdateCard_ValidatesReferences(t *testing.T) {
	r := newTestRepository(t)

	if _, err := r.UpdateCard("c1", models.CardPatch{LabelIDs: []string{"nope"}}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown label, got %v", err)
	}
	if _, err := r.UpdateCard("c1", models.CardPatch{MemberIDs: []string{"nope"}}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown member, got %v", err)
	}
	if _, err := r.UpdateCard("c1", models.CardPatch{Title: models.Ptr(" ")}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty title, got %v", err)
	}

	card, err := r.UpdateCard("c1", models.CardPatch{LabelIDs: []string{"red"}, MemberIDs: []string{"m1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !card.HasLabel("red") || !card.HasMember("m1") {
		t.Errorf("references not stored: %+v", card)
	}
}

func TestDeleteLabel_StripsReferences(t *testing.T) {
	r := newTestRepository(t)
	if _, err := r.UpdateCard("c1", models.CardPatch{LabelIDs: []string{"red"}}); err != nil {
		t.Fatal(err)
	}

	if err := r.DeleteLabel("red"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	card, _ := r.Card("c1")
	if card.HasLabel("red") {
		t.Error("deleted label still referenced")
	}
	if labels, _ := r.Labels("b1"); len(labels) != 0 {
		t.Errorf("expected no labels, got %+v", labels)
	}
}

func TestChecklistLifecycle(t *testing.T) {
	r := newTestRepository(t)

	cl, err := r.CreateChecklist("c1", "Steps")
	if err != nil {
		t.Fatal(err)
	}
	item, err := r.AddChecklistItem(cl.ID, "write")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.UpdateChecklistItem(item.ID, models.ItemPatch{Completed: models.Ptr(true)}); err != nil {
		t.Fatal(err)
	}

	card, _ := r.Card("c1")
	if p, ok := card.ChecklistProgress(); !ok || !p.IsComplete() {
		t.Errorf("expected complete checklist, got %+v", p)
	}

	if err := r.DeleteChecklistItem(item.ID); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteChecklist(cl.ID); err != nil {
		t.Fatal(err)
	}
	card, _ = r.Card("c1")
	if len(card.Checklists) != 0 {
		t.Errorf("expected no checklists, got %+v", card.Checklists)
	}
	if err := r.DeleteChecklist(cl.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	r := newTestRepository(t)

	hits := r.Search("O")
	var titles []string
	for _, h := range hits {
		titles = append(titles, h.Card.Title)
	}
	if diff := cmp.Diff([]string{"one", "two", "four"}, titles); diff != "" {
		t.Errorf("search mismatch (-want +got):\n%s", diff)
	}
	if len(r.Search("  ")) != 0 {
		t.Error("blank query should match nothing")
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	r := newTestRepository(t)

	b, _ := r.Board("b1")
	b.Lists[0].Cards[0].Title = "mutated"
	card, _ := r.Card("c1")
	if card.Title != "one" {
		t.Error("Board returned a reference into the repository")
	}
}

func TestLoadSeed(t *testing.T) {
	r := NewRepository()
	if err := r.Load(DemoSeed()); err != nil {
		t.Fatalf("demo seed failed to load: %v", err)
	}

	boards := r.Boards()
	if len(boards) != 2 || boards[0].Title != "Product Launch" {
		t.Fatalf("unexpected boards %+v", boards)
	}
	if len(r.Members()) != 3 {
		t.Errorf("expected 3 members, got %d", len(r.Members()))
	}

	b, _ := r.Board(boards[0].ID)
	for _, l := range b.Lists {
		for _, c := range l.Cards {
			if c.ListID != l.ID {
				t.Errorf("card %s has ListID %s, want %s", c.Title, c.ListID, l.ID)
			}
		}
	}
}

func TestLoadSeed_UnknownReference(t *testing.T) {
	seed, err := ParseSeed([]byte(`
boards:
  - title: X
    lists:
      - title: A
        cards:
          - title: c
            labels: [missing]
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := NewRepository().Load(seed); err == nil {
		t.Error("expected error for unknown label")
	}
}
