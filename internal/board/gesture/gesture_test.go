package gesture

import (
	"testing"

	"corkboard/internal/board/models"
)

func makeBoard() models.Board {
	return models.Board{
		ID: "b1",
		Lists: []models.List{
			{ID: "L1", Cards: []models.Card{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}},
			{ID: "L2", Cards: []models.Card{{ID: "c4"}}},
		},
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name    string
		gesture Gesture
		want    Intent
		ok      bool
	}{
		{
			name:    "dropped outside",
			gesture: Gesture{Kind: KindCard, Source: Location{"L1", 0}},
		},
		{
			name:    "same position",
			gesture: Gesture{Kind: KindCard, Source: Location{"L1", 1}, Destination: &Location{"L1", 1}},
		},
		{
			name:    "same list position",
			gesture: Gesture{Kind: KindList, Source: Location{"board", 0}, Destination: &Location{"board", 0}},
		},
		{
			name:    "list reorder",
			gesture: Gesture{Kind: KindList, Source: Location{"board", 0}, Destination: &Location{"board", 1}},
			want:    ListReorder{FromIndex: 0, ToIndex: 1},
			ok:      true,
		},
		{
			name:    "card across lists",
			gesture: Gesture{Kind: KindCard, Source: Location{"L1", 1}, Destination: &Location{"L2", 0}},
			want:    CardMove{CardID: "c2", FromListID: "L1", ToListID: "L2", FromIndex: 1, ToIndex: 0},
			ok:      true,
		},
		{
			name:    "card within list",
			gesture: Gesture{Kind: KindCard, Source: Location{"L1", 0}, Destination: &Location{"L1", 2}},
			want:    CardMove{CardID: "c1", FromListID: "L1", ToListID: "L1", FromIndex: 0, ToIndex: 2},
			ok:      true,
		},
		{
			name:    "stale source index",
			gesture: Gesture{Kind: KindCard, Source: Location{"L2", 3}, Destination: &Location{"L1", 0}},
		},
		{
			name:    "unknown source list",
			gesture: Gesture{Kind: KindCard, Source: Location{"gone", 0}, Destination: &Location{"L1", 0}},
		},
		{
			name:    "unknown kind",
			gesture: Gesture{Kind: "CHECKLIST", Source: Location{"L1", 0}, Destination: &Location{"L1", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(makeBoard(), tt.gesture)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestCardMove_SameList(t *testing.T) {
	if !(CardMove{FromListID: "L1", ToListID: "L1"}).SameList() {
		t.Error("expected same list")
	}
	if (CardMove{FromListID: "L1", ToListID: "L2"}).SameList() {
		t.Error("expected cross list")
	}
}
