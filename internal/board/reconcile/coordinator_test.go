package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"corkboard/internal/board/gesture"
	"corkboard/internal/board/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func makeBoard() models.Board {
	return models.Board{
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
	}
}

func open(t *testing.T, svc *fakeService, opts Options) *Coordinator {
	t.Helper()
	c, err := Open(context.Background(), svc, "b1", opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func wait(t *testing.T, p *Pending) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := p.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("pending change never settled")
	}
	return err
}

func TestMoveCard_OptimisticApplyAndPayload(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	svc.gate = make(chan struct{})

	p := c.MoveCard(gesture.CardMove{CardID: "c2", FromListID: "L1", ToListID: "L2", FromIndex: 1, ToIndex: 0})

	// Applied before the service answered.
	if diff := cmp.Diff([]string{"c1", "c3"}, c.Store().CardIDs("L1")); diff != "" {
		t.Errorf("L1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c2", "c4"}, c.Store().CardIDs("L2")); diff != "" {
		t.Errorf("L2 mismatch (-want +got):\n%s", diff)
	}
	select {
	case <-p.Done():
		t.Fatal("pending resolved before the service answered")
	default:
	}

	close(svc.gate)
	if err := wait(t, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := svc.callsTo("reorder-cards")
	if len(calls) != 1 {
		t.Fatalf("expected 1 reorder call, got %d", len(calls))
	}
	if diff := cmp.Diff([]string{"L1", "L2", "c2", "c4"}, calls[0].args); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveCard_SameListPayloadIsFullOrder(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})

	if err := wait(t, c.MoveCard(gesture.CardMove{CardID: "c3", FromListID: "L1", ToListID: "L1", FromIndex: 2, ToIndex: 0})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := svc.callsTo("reorder-cards")
	if diff := cmp.Diff([]string{"L1", "L1", "c3", "c1", "c2"}, calls[0].args); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveList_PayloadIsFullListOrder(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})

	if err := wait(t, c.MoveList(1, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := svc.callsTo("reorder-lists")
	if len(calls) != 1 {
		t.Fatalf("expected 1 reorder call, got %d", len(calls))
	}
	if diff := cmp.Diff([]string{"L2", "L1"}, calls[0].args); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestFailure_ResyncsToServerState(t *testing.T) {
	svc := newFakeService(makeBoard())
	svc.failOn("reorder-cards")
	c := open(t, svc, Options{})

	err := wait(t, c.MoveCard(gesture.CardMove{CardID: "c1", FromListID: "L1", ToListID: "L2", FromIndex: 0, ToIndex: 1}))
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
	if !errors.Is(err, errUnavailable) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}

	fresh, _ := svc.Board(context.Background(), "b1")
	if diff := cmp.Diff(fresh, c.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("store does not match server after failure (-server +store):\n%s", diff)
	}
}

func TestFailure_ResyncFailureIsReported(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	svc.failOn("delete-card")
	svc.failOn("board")

	err := wait(t, c.DeleteCard("c1"))
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
	if !strings.Contains(err.Error(), "resync") {
		t.Errorf("expected resync failure in error, got %v", err)
	}
}

func TestDispatch_GestureFlow(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})

	// Same position: nothing translated, nothing applied, nothing sent.
	before := c.Store().Version()
	g := gesture.Gesture{Kind: gesture.KindCard, Source: gesture.Location{ContainerID: "L1", Index: 1}, Destination: &gesture.Location{ContainerID: "L1", Index: 1}}
	if _, ok := gesture.Translate(c.Snapshot(), g); ok {
		t.Fatal("expected no intent for identical positions")
	}
	if c.Store().Version() != before || svc.writeCount() != 0 {
		t.Error("no-op gesture must not mutate or persist")
	}

	g.Destination = &gesture.Location{ContainerID: "L2", Index: 0}
	intent, ok := gesture.Translate(c.Snapshot(), g)
	if !ok {
		t.Fatal("expected an intent")
	}
	if err := wait(t, c.Dispatch(intent)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"c2", "c4"}, c.Store().CardIDs("L2")); diff != "" {
		t.Errorf("L2 mismatch (-want +got):\n%s", diff)
	}
}

func TestStaleIntent_SendsNothing(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})

	err := wait(t, c.MoveCard(gesture.CardMove{CardID: "c9", FromListID: "L1", ToListID: "L2", FromIndex: 0, ToIndex: 0}))
	if !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
	if err := wait(t, c.PatchCard("nope", models.CardPatch{Title: models.Ptr("x")})); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
	if n := svc.writeCount(); n != 0 {
		t.Errorf("expected no persistence calls, got %d", n)
	}
}

func TestValidation_RejectedBeforeApply(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	before := c.Store().Version()

	if err := wait(t, c.CreateCard("L1", "   ")); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if err := wait(t, c.PatchCard("c1", models.CardPatch{Title: models.Ptr("")})); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if c.Store().Version() != before {
		t.Error("invalid intents must not touch the store")
	}
}

func TestCreateCard_SwapsProvisionalID(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	svc.gate = make(chan struct{})

	p := c.CreateCard("L2", "  new card ")
	ids := c.Store().CardIDs("L2")
	if len(ids) != 2 || !strings.HasPrefix(ids[1], "tmp-") {
		t.Fatalf("expected provisional card appended, got %v", ids)
	}

	close(svc.gate)
	if err := wait(t, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids = c.Store().CardIDs("L2")
	if strings.HasPrefix(ids[1], "tmp-") {
		t.Errorf("provisional id not replaced: %v", ids)
	}
	card, ok := c.Store().Card(ids[1])
	if !ok || card.Title != "new card" || card.ListID != "L2" {
		t.Errorf("unexpected confirmed card %+v", card)
	}
}

func TestCreateList_FailureRemovesProvisionalList(t *testing.T) {
	svc := newFakeService(makeBoard())
	svc.failOn("create-list")
	c := open(t, svc, Options{})

	if err := wait(t, c.CreateList("Backlog")); !errors.Is(err, ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
	if diff := cmp.Diff([]string{"L1", "L2"}, c.Store().ListIDs()); diff != "" {
		t.Errorf("list order mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldEdits(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	steps := []*Pending{
		c.PatchCard("c1", models.CardPatch{Description: models.Ptr("details"), DueDate: &due}),
		c.ToggleCardLabel("c1", "red"),
		c.ToggleCardMember("c1", "m1"),
		c.PatchList("L2", models.ListPatch{Color: models.Ptr("green")}),
		c.PatchBoard(models.BoardPatch{Background: models.Ptr("blue")}),
		c.ArchiveCard("c4", true),
	}
	for _, p := range steps {
		if err := wait(t, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	card, _ := c.Store().Card("c1")
	if card.Description != "details" || card.DueDate == nil || !card.DueDate.Equal(due) {
		t.Errorf("unexpected card fields %+v", card)
	}
	if !card.HasLabel("red") || !card.HasMember("m1") {
		t.Errorf("expected label and member references, got %+v", card)
	}

	if err := wait(t, c.ToggleCardLabel("c1", "red")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	card, _ = c.Store().Card("c1")
	if card.HasLabel("red") {
		t.Error("second toggle should remove the label")
	}

	snap := c.Snapshot()
	if snap.Background != "blue" || snap.GetList("L2").Color != "green" {
		t.Errorf("unexpected board header/list color: %q %q", snap.Background, snap.GetList("L2").Color)
	}
	if len(svc.callsTo("update-card")) != 4 {
		t.Errorf("expected 4 card updates, got %d", len(svc.callsTo("update-card")))
	}
}

func TestChecklistsAndLabels(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})

	if err := wait(t, c.AddChecklist("c1", "Steps")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	card, _ := c.Store().Card("c1")
	checklistID := card.Checklists[0].ID
	if strings.HasPrefix(checklistID, "tmp-") {
		t.Fatalf("provisional checklist id not replaced")
	}

	if err := wait(t, c.AddChecklistItem(checklistID, "write tests")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	card, _ = c.Store().Card("c1")
	itemID := card.Checklists[0].Items[0].ID

	if err := wait(t, c.ToggleChecklistItem(itemID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	card, _ = c.Store().Card("c1")
	if p, _ := card.ChecklistProgress(); !p.IsComplete() {
		t.Errorf("expected complete checklist, got %+v", p)
	}

	if err := wait(t, c.DeleteChecklistItem(itemID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wait(t, c.DeleteChecklist(checklistID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := wait(t, c.CreateLabel("urgent", "orange")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Labels) != 2 || strings.HasPrefix(snap.Labels[1].ID, "tmp-") {
		t.Errorf("unexpected labels %+v", snap.Labels)
	}
	if err := wait(t, c.UpdateLabel("red", models.LabelPatch{Name: models.Ptr("defect")})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wait(t, c.DeleteLabel(snap.Labels[1].ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(c.Snapshot().Labels); n != 1 {
		t.Errorf("expected 1 label, got %d", n)
	}
}

func TestSerializeWrites_PreservesOrder(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{SerializeWrites: true})

	var pending []*Pending
	pending = append(pending, c.MoveList(0, 1))
	pending = append(pending, c.MoveList(0, 1))
	pending = append(pending, c.MoveList(0, 1))
	for _, p := range pending {
		if err := wait(t, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := len(svc.callsTo("reorder-lists")); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
	fresh, _ := svc.Board(context.Background(), "b1")
	if diff := cmp.Diff(fresh.ListIDs(), c.Store().ListIDs()); diff != "" {
		t.Errorf("server and store diverged (-server +store):\n%s", diff)
	}
}

func TestOpen_FailsWhenBoardCannotLoad(t *testing.T) {
	svc := newFakeService(makeBoard())
	if _, err := Open(context.Background(), svc, "missing", Options{}); err == nil {
		t.Error("expected error for unknown board")
	}
}

func TestResync(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})

	c.Store().MoveList(0, 1)
	if err := wait(t, c.Resync()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"L1", "L2"}, c.Store().ListIDs()); diff != "" {
		t.Errorf("resync did not restore server order (-want +got):\n%s", diff)
	}
}

func TestCreateThenMove_SendsConfirmedIDs(t *testing.T) {
	for _, serial := range []bool{false, true} {
		t.Run(fmt.Sprintf("serialize=%v", serial), func(t *testing.T) {
			svc := newFakeService(makeBoard())
			c := open(t, svc, Options{SerializeWrites: serial})
			release := svc.hold("create-card")

			created := c.CreateCard("L1", "five")
			moved := c.MoveCard(gesture.CardMove{CardID: "c1", FromListID: "L1", ToListID: "L1", FromIndex: 0, ToIndex: 1})

			ids := c.Store().CardIDs("L1")
			if len(ids) != 4 || ids[1] != "c1" || !strings.HasPrefix(ids[3], "tmp-") {
				t.Fatalf("expected optimistic order with provisional card, got %v", ids)
			}

			close(release)
			if err := wait(t, created); err != nil {
				t.Fatalf("create: unexpected error: %v", err)
			}
			if err := wait(t, moved); err != nil {
				t.Fatalf("move: unexpected error: %v", err)
			}

			calls := svc.callsTo("reorder-cards")
			if len(calls) != 1 {
				t.Fatalf("expected 1 reorder call, got %d", len(calls))
			}
			for _, id := range calls[0].args {
				if strings.HasPrefix(id, "tmp-") {
					t.Errorf("provisional id sent to the service: %v", calls[0].args)
				}
			}

			fresh, _ := svc.Board(context.Background(), "b1")
			if diff := cmp.Diff(fresh, c.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("store does not match server (-server +store):\n%s", diff)
			}
			if got := titlesOf(c.Snapshot().Lists[0]); !cmp.Equal(got, []string{"two", "one", "three", "five"}) {
				t.Errorf("unexpected titles %v", got)
			}
		})
	}
}

func TestCreateThenMove_FailedCreateIsLeftOut(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	release := svc.hold("create-card")
	svc.failOn("create-card")

	created := c.CreateCard("L1", "five")
	moved := c.MoveCard(gesture.CardMove{CardID: "c1", FromListID: "L1", ToListID: "L1", FromIndex: 0, ToIndex: 1})

	close(release)
	if err := wait(t, created); !errors.Is(err, ErrReverted) {
		t.Fatalf("create: expected ErrReverted, got %v", err)
	}
	if err := wait(t, moved); err != nil {
		t.Fatalf("move: unexpected error: %v", err)
	}

	calls := svc.callsTo("reorder-cards")
	if len(calls) != 1 {
		t.Fatalf("expected 1 reorder call, got %d", len(calls))
	}
	if diff := cmp.Diff([]string{"L1", "L1", "c2", "c1", "c3"}, calls[0].args); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateCard_SurvivesResyncWhileInFlight(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	release := svc.hold("create-card")
	svc.failOn("delete-card")

	created := c.CreateCard("L1", "five")

	// An unrelated failure resyncs before the create returns and drops the
	// provisional card.
	if err := wait(t, c.DeleteCard("c4")); !errors.Is(err, ErrReverted) {
		t.Fatalf("delete: expected ErrReverted, got %v", err)
	}
	if ids := c.Store().CardIDs("L1"); len(ids) != 3 {
		t.Fatalf("expected provisional card gone after resync, got %v", ids)
	}

	close(release)
	if err := wait(t, created); err != nil {
		t.Fatalf("create: unexpected error: %v", err)
	}

	fresh, _ := svc.Board(context.Background(), "b1")
	if diff := cmp.Diff(fresh, c.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("store does not match server (-server +store):\n%s", diff)
	}
	if got := titlesOf(c.Snapshot().Lists[0]); !cmp.Equal(got, []string{"one", "two", "three", "five"}) {
		t.Errorf("created card missing from store: %v", got)
	}
}

func TestCreateCard_IntoProvisionalList(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	release := svc.hold("create-list")

	listCreated := c.CreateList("Backlog")
	tempList := c.Store().ListIDs()[2]
	if !strings.HasPrefix(tempList, "tmp-") {
		t.Fatalf("expected provisional list, got %s", tempList)
	}
	cardCreated := c.CreateCard(tempList, "groom")

	close(release)
	if err := wait(t, listCreated); err != nil {
		t.Fatalf("create list: unexpected error: %v", err)
	}
	if err := wait(t, cardCreated); err != nil {
		t.Fatalf("create card: unexpected error: %v", err)
	}

	realList := c.Store().ListIDs()[2]
	calls := svc.callsTo("create-card")
	if len(calls) != 1 || calls[0].args[0] != realList {
		t.Fatalf("expected card created in %s, got %+v", realList, calls)
	}
	fresh, _ := svc.Board(context.Background(), "b1")
	if diff := cmp.Diff(fresh, c.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("store does not match server (-server +store):\n%s", diff)
	}
}

func TestMove_ClampedOntoItselfSendsNothing(t *testing.T) {
	svc := newFakeService(makeBoard())
	c := open(t, svc, Options{})
	before := c.Store().Version()

	if err := wait(t, c.MoveCard(gesture.CardMove{CardID: "c3", FromListID: "L1", ToListID: "L1", FromIndex: 2, ToIndex: 9})); err != nil {
		t.Errorf("card: expected nil, got %v", err)
	}
	if err := wait(t, c.MoveList(1, 5)); err != nil {
		t.Errorf("list: expected nil, got %v", err)
	}
	if c.Store().Version() != before {
		t.Error("no-op moves must not touch the store")
	}
	if n := svc.writeCount(); n != 0 {
		t.Errorf("expected no persistence calls, got %d", n)
	}
}

func titlesOf(l models.List) []string {
	out := make([]string, len(l.Cards))
	for i, card := range l.Cards {
		out[i] = card.Title
	}
	return out
}
