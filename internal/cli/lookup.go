package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"corkboard/internal/board/models"
	"corkboard/internal/client"

	"github.com/sahilm/fuzzy"
)

// pick resolves ref against candidates: exact id, then case-insensitive
// exact name, then the best fuzzy name match
func pick(kind, ref string, ids, names []string) (int, error) {
	for i, id := range ids {
		if id == ref {
			return i, nil
		}
	}
	for i, name := range names {
		if strings.EqualFold(name, ref) {
			return i, nil
		}
	}
	if matches := fuzzy.Find(ref, names); len(matches) > 0 {
		return matches[0].Index, nil
	}
	return -1, fmt.Errorf("no %s matches %q", kind, ref)
}

func resolveBoard(ctx context.Context, c *client.Client, ref string) (models.BoardSummary, error) {
	boards, err := c.Boards(ctx)
	if err != nil {
		return models.BoardSummary{}, err
	}
	ids := make([]string, len(boards))
	names := make([]string, len(boards))
	for i, b := range boards {
		ids[i], names[i] = b.ID, b.Title
	}
	i, err := pick("board", ref, ids, names)
	if err != nil {
		return models.BoardSummary{}, err
	}
	return boards[i], nil
}

func resolveList(b models.Board, ref string) (*models.List, error) {
	ids := b.ListIDs()
	names := make([]string, len(b.Lists))
	for i, l := range b.Lists {
		names[i] = l.Title
	}
	i, err := pick("list", ref, ids, names)
	if err != nil {
		return nil, err
	}
	return &b.Lists[i], nil
}

// resolveCard returns the list index and card index of ref
func resolveCard(b models.Board, ref string) (int, int, error) {
	type loc struct{ li, ci int }
	var ids, names []string
	var locs []loc
	for li, l := range b.Lists {
		for ci, c := range l.Cards {
			ids = append(ids, c.ID)
			names = append(names, c.Title)
			locs = append(locs, loc{li, ci})
		}
	}
	i, err := pick("card", ref, ids, names)
	if err != nil {
		return -1, -1, err
	}
	return locs[i].li, locs[i].ci, nil
}

// resolveNames maps names (or ids) to ids of the given candidates
func resolveNames(kind string, refs []string, ids, names []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		i, err := pick(kind, ref, ids, names)
		if err != nil {
			return nil, err
		}
		out = append(out, ids[i])
	}
	return out, nil
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("position must be a number starting at 1, got %q", s)
	}
	return n - 1, nil
}
