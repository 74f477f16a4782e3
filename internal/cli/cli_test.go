package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"corkboard/internal/board/models"
	"corkboard/internal/client"
	"corkboard/internal/server"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

const testSeed = `
members:
  - name: Ada Lovelace
  - name: Grace Hopper
boards:
  - title: Sprint
    background: blue
    labels:
      - { name: bug, color: red }
      - { name: feature, color: green }
    lists:
      - title: To Do
        color: yellow
        cards:
          - title: one
            description: Reproduce the **crash** first.
            labels: [bug]
            members: [Ada Lovelace]
            due: "2026-03-12"
            checklists:
              - title: Steps
                items:
                  - { text: reproduce, done: true }
                  - { text: patch }
          - title: two
            labels: [feature]
          - title: three
      - title: Done
        cards:
          - title: four
          - title: five
            archived: true
  - title: Personal
    lists:
      - title: Todo
        cards:
          - title: Renew passport
`

func newTestClient(t *testing.T) *client.Client {
	t.Helper()

	repo := server.NewRepository()
	seed, err := server.ParseSeed([]byte(testSeed))
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Load(seed); err != nil {
		t.Fatal(err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ts := httptest.NewServer(server.New(repo, logger))
	t.Cleanup(ts.Close)

	return client.New(ts.URL + "/api")
}

func run(t *testing.T, c *client.Client, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), args, Env{Client: c, Out: &out, Err: &errOut})
	return code, out.String(), errOut.String()
}

func sprint(t *testing.T, c *client.Client) models.Board {
	t.Helper()
	boards, err := c.Boards(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Board(context.Background(), boards[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func cardTitles(l models.List) []string {
	out := make([]string, len(l.Cards))
	for i, c := range l.Cards {
		out[i] = c.Title
	}
	return out
}

func TestRun_Usage(t *testing.T) {
	c := newTestClient(t)

	if code, _, _ := run(t, c); code != 1 {
		t.Errorf("expected exit 1 without args, got %d", code)
	}
	if code, out, _ := run(t, c, "help"); code != 0 || !strings.Contains(out, "corkboard") {
		t.Errorf("help: code %d, output %q", code, out)
	}
	if code, _, errOut := run(t, c, "frobnicate"); code != 1 || !strings.Contains(errOut, "Unknown command") {
		t.Errorf("unknown command: code %d, stderr %q", code, errOut)
	}
	if code, _, errOut := run(t, c, "board", "frobnicate"); code != 1 || !strings.Contains(errOut, "Unknown board command") {
		t.Errorf("unknown board command: code %d, stderr %q", code, errOut)
	}
}

func TestBoardList(t *testing.T) {
	c := newTestClient(t)

	code, out, _ := run(t, c, "board", "list")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(out, "Sprint") || !strings.Contains(out, "Personal") {
		t.Errorf("expected both boards, got:\n%s", out)
	}

	_, out, _ = run(t, c, "board", "ls", "pers")
	if strings.Contains(out, "Sprint") || !strings.Contains(out, "Personal") {
		t.Errorf("expected only Personal, got:\n%s", out)
	}
}

func TestBoardShow(t *testing.T) {
	c := newTestClient(t)

	code, out, errOut := run(t, c, "board", "show", "sprint")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	for _, want := range []string{
		"# Sprint",
		"## To Do (3)",
		"one [bug] @AL due 2026-03-12",
		"[ ] 1/2",
		"Reproduce the crash first.",
		"## Done (1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "five") {
		t.Error("archived card shown without --archived")
	}
}

func TestBoardShow_Filters(t *testing.T) {
	c := newTestClient(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"label after board", []string{"Sprint", "--label", "feature"}, []string{"- two"}, []string{"- one", "- three", "- four"}},
		{"member", []string{"--member", "ada", "Sprint"}, []string{"- one"}, []string{"- two", "- four"}},
		{"query", []string{"Sprint", "--query", "T"}, []string{"- two", "- three"}, []string{"- one", "- four"}},
		{"due none", []string{"Sprint", "--due", "none"}, []string{"- two", "- four"}, []string{"- one"}},
		{"archived", []string{"Sprint", "--archived"}, []string{"five (archived)"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := run(t, c, append([]string{"board", "show"}, tt.args...)...)
			if code != 0 {
				t.Fatalf("exit code %d: %s", code, errOut)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}

	if code, _, _ := run(t, c, "board", "show", "Sprint", "--due", "someday"); code != 1 {
		t.Error("expected failure for unknown due bucket")
	}
	if code, _, _ := run(t, c, "board", "show", "Sprint", "--label", "zzzz"); code != 1 {
		t.Error("expected failure for unknown label")
	}
}

func TestMoveCard(t *testing.T) {
	c := newTestClient(t)

	code, out, errOut := run(t, c, "board", "move-card", "Sprint", "two", "Done", "--pos", "1")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if !strings.Contains(out, `Moved "two" to Done (position 1)`) {
		t.Errorf("unexpected output %q", out)
	}

	b := sprint(t, c)
	if diff := cmp.Diff([]string{"one", "three"}, cardTitles(b.Lists[0])); diff != "" {
		t.Errorf("source list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"two", "four", "five"}, cardTitles(b.Lists[1])); diff != "" {
		t.Errorf("destination list mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveCard_SameList(t *testing.T) {
	c := newTestClient(t)

	// Default position is the end of the list
	if code, _, errOut := run(t, c, "board", "mv", "Sprint", "one", "To Do"); code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	b := sprint(t, c)
	if diff := cmp.Diff([]string{"two", "three", "one"}, cardTitles(b.Lists[0])); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	_, out, _ := run(t, c, "board", "mv", "Sprint", "one", "To Do", "--pos", "3")
	if !strings.Contains(out, "Nothing to move.") {
		t.Errorf("expected no-op, got %q", out)
	}
}

func TestMoveList(t *testing.T) {
	c := newTestClient(t)

	if code, _, errOut := run(t, c, "board", "move-list", "Sprint", "Done", "1"); code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	b := sprint(t, c)
	if b.Lists[0].Title != "Done" || b.Lists[1].Title != "To Do" {
		t.Errorf("unexpected list order %q, %q", b.Lists[0].Title, b.Lists[1].Title)
	}

	if code, _, _ := run(t, c, "board", "move-list", "Sprint", "Done", "0"); code != 1 {
		t.Error("expected failure for position 0")
	}
}

func TestAddCardAndArchive(t *testing.T) {
	c := newTestClient(t)

	code, out, errOut := run(t, c, "board", "add-card", "Sprint", "Done", "Ship", "it")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if !strings.Contains(out, `Added "Ship it" to Done`) || strings.Contains(out, "tmp-") {
		t.Errorf("unexpected output %q", out)
	}

	if code, _, errOut := run(t, c, "board", "archive", "Sprint", "Ship it"); code != 0 {
		t.Fatalf("archive exit code %d: %s", code, errOut)
	}
	b := sprint(t, c)
	done := b.Lists[1]
	last := done.Cards[len(done.Cards)-1]
	if last.Title != "Ship it" || !last.Archived {
		t.Errorf("expected archived new card, got %+v", last)
	}

	if code, _, _ := run(t, c, "board", "add-card", "Sprint", "Done", "   "); code != 1 {
		t.Error("expected failure for blank title")
	}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t)

	code, out, _ := run(t, c, "board", "search", "renew")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(out, "Personal / Todo: Renew passport") || !strings.Contains(out, "1 card(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	_, out, _ = run(t, c, "board", "search", "nothing-like-this")
	if !strings.Contains(out, "No cards found.") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestExportImport(t *testing.T) {
	c := newTestClient(t)
	dir := filepath.Join(t.TempDir(), "sprint")

	if code, _, errOut := run(t, c, "board", "export", "Sprint", dir); code != 0 {
		t.Fatalf("export exit code %d: %s", code, errOut)
	}
	code, out, errOut := run(t, c, "board", "import", dir)
	if code != 0 {
		t.Fatalf("import exit code %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Imported board: Sprint") {
		t.Errorf("unexpected output %q", out)
	}

	ctx := context.Background()
	boards, err := c.Boards(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(boards) != 3 {
		t.Fatalf("expected 3 boards, got %d", len(boards))
	}
	orig := sprint(t, c)
	copied, err := c.Board(ctx, boards[2].ID)
	if err != nil {
		t.Fatal(err)
	}

	if copied.Background != "blue" || copied.Lists[0].Color != "yellow" {
		t.Errorf("board attributes lost: %+v", copied)
	}
	for i := range orig.Lists {
		if diff := cmp.Diff(cardTitles(orig.Lists[i]), cardTitles(copied.Lists[i])); diff != "" {
			t.Errorf("list %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	one := copied.Lists[0].Cards[0]
	if diff := cmp.Diff([]string{"bug"}, copied.LabelNames(one)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(orig.Lists[0].Cards[0].MemberIDs, one.MemberIDs); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
	if one.DueDate == nil || one.Description != "Reproduce the **crash** first." {
		t.Errorf("card fields lost: %+v", one)
	}
	if p, ok := one.ChecklistProgress(); !ok || p != (models.Progress{Completed: 1, Total: 2}) {
		t.Errorf("checklist progress %+v", p)
	}
	if !copied.Lists[1].Cards[1].Archived {
		t.Error("archived flag lost")
	}
}

func TestPick(t *testing.T) {
	ids := []string{"b1", "b2", "b3"}
	names := []string{"Product Launch", "Personal", "Sprint"}

	tests := []struct {
		ref  string
		want int
	}{
		{"b2", 1},
		{"sprint", 2},
		{"prodla", 0},
	}
	for _, tt := range tests {
		got, err := pick("board", tt.ref, ids, names)
		if err != nil || got != tt.want {
			t.Errorf("pick(%q) = %d, %v; want %d", tt.ref, got, err, tt.want)
		}
	}

	if _, err := pick("board", "xyz", ids, names); err == nil {
		t.Error("expected error for unmatched ref")
	}
}
