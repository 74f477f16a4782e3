package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"corkboard/internal/board/fs"
	"corkboard/internal/board/models"
)

func runImport(ctx context.Context, args []string, env Env) int {
	if len(args) != 1 {
		return env.errorf("directory required\nUsage: corkboard board import <dir>")
	}

	doc, err := fs.ReadBoard(args[0])
	if err != nil {
		return env.errorf("reading export: %v", err)
	}
	members, err := env.roster().All(ctx)
	if err != nil {
		return env.errorf("loading members: %v", err)
	}

	board, skipped, err := importBoard(ctx, env, doc, members)
	if err != nil {
		return env.errorf("importing: %v", err)
	}
	for _, name := range skipped {
		fmt.Fprintf(env.Err, "Warning: unknown member %q skipped\n", name)
	}

	env.printf("Imported board: %s\n", board.Title)
	env.printf("ID: %s\n", board.ID)
	return 0
}

// importBoard recreates doc through the service. Member names that are not
// in the roster are returned rather than failing the import.
func importBoard(ctx context.Context, env Env, doc fs.BoardDoc, members []models.Member) (models.Board, []string, error) {
	c := env.Client

	board, err := c.CreateBoard(ctx, doc.Title, doc.Background)
	if err != nil {
		return models.Board{}, nil, err
	}

	labelNames := make([]string, 0, len(doc.Labels))
	for name := range doc.Labels {
		labelNames = append(labelNames, name)
	}
	sort.Strings(labelNames)
	labelIDs := make(map[string]string, len(labelNames))
	for _, name := range labelNames {
		label, err := c.CreateLabel(ctx, board.ID, name, doc.Labels[name])
		if err != nil {
			return board, nil, fmt.Errorf("label %s: %w", name, err)
		}
		labelIDs[name] = label.ID
	}

	memberIDs := make(map[string]string, len(members))
	for _, m := range members {
		memberIDs[strings.ToLower(m.Name)] = m.ID
	}
	unknown := map[string]bool{}

	for _, ld := range doc.Lists {
		list, err := c.CreateList(ctx, board.ID, ld.Title)
		if err != nil {
			return board, nil, fmt.Errorf("list %s: %w", ld.Title, err)
		}
		if ld.Color != "" {
			if _, err := c.UpdateList(ctx, list.ID, models.ListPatch{Color: models.Ptr(ld.Color)}); err != nil {
				return board, nil, fmt.Errorf("list %s: %w", ld.Title, err)
			}
		}

		for _, cd := range ld.Cards {
			patch := models.CardPatch{DueDate: cd.Due}
			if cd.Description != "" {
				patch.Description = models.Ptr(cd.Description)
			}
			for _, name := range cd.Labels {
				if id, ok := labelIDs[name]; ok {
					patch.LabelIDs = append(patch.LabelIDs, id)
				}
			}
			for _, name := range cd.Members {
				if id, ok := memberIDs[strings.ToLower(name)]; ok {
					patch.MemberIDs = append(patch.MemberIDs, id)
				} else {
					unknown[name] = true
				}
			}
			if err := importCard(ctx, env, list.ID, cd, patch); err != nil {
				return board, nil, fmt.Errorf("card %s: %w", cd.Title, err)
			}
		}
	}

	var skipped []string
	for name := range unknown {
		skipped = append(skipped, name)
	}
	sort.Strings(skipped)
	return board, skipped, nil
}

func importCard(ctx context.Context, env Env, listID string, cd fs.CardDoc, patch models.CardPatch) error {
	c := env.Client

	card, err := c.CreateCard(ctx, listID, cd.Title)
	if err != nil {
		return err
	}
	if !patch.IsEmpty() {
		if _, err := c.UpdateCard(ctx, card.ID, patch); err != nil {
			return err
		}
	}

	for _, cl := range cd.Checklists {
		checklist, err := c.CreateChecklist(ctx, card.ID, cl.Title)
		if err != nil {
			return err
		}
		for _, it := range cl.Items {
			item, err := c.AddChecklistItem(ctx, checklist.ID, it.Text)
			if err != nil {
				return err
			}
			if it.Done {
				if _, err := c.UpdateChecklistItem(ctx, item.ID, models.ItemPatch{Completed: models.Ptr(true)}); err != nil {
					return err
				}
			}
		}
	}

	if cd.Archived {
		return c.ArchiveCard(ctx, card.ID, true)
	}
	return nil
}
