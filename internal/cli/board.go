package cli

import (
	"context"
	"flag"
	"strings"
	"time"

	"corkboard/internal/board/filter"
	"corkboard/internal/board/fs"
	"corkboard/internal/board/gesture"
	"corkboard/internal/board/models"
	"corkboard/internal/board/reconcile"
	"corkboard/internal/client"
	"corkboard/internal/config"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"
)

// parseArgs parses flags that may appear anywhere among the positional
// arguments and returns the positionals in order
func parseArgs(fset *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fset.Parse(args); err != nil {
			return nil, err
		}
		rest := fset.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func (e Env) roster() *client.Roster {
	ttl := config.DefaultMemberCacheTTL
	if e.Config != nil && e.Config.MemberCacheTTL > 0 {
		ttl = e.Config.MemberCacheTTL
	}
	return client.NewRoster(e.Client, ttl)
}

// openBoard resolves ref and opens a coordinator on it
func (e Env) openBoard(ctx context.Context, ref string) (*reconcile.Coordinator, error) {
	summary, err := resolveBoard(ctx, e.Client, ref)
	if err != nil {
		return nil, err
	}
	opts := reconcile.Options{}
	if e.Config != nil {
		opts.SerializeWrites = e.Config.SerializeWrites
	}
	return reconcile.Open(ctx, e.Client, summary.ID, opts)
}

func runBoardList(ctx context.Context, args []string, env Env) int {
	boards, err := env.Client.Boards(ctx)
	if err != nil {
		return env.errorf("loading boards: %v", err)
	}

	if query := strings.Join(args, " "); query != "" {
		titles := make([]string, len(boards))
		for i, b := range boards {
			titles[i] = b.Title
		}
		var matched []models.BoardSummary
		for _, m := range fuzzy.Find(query, titles) {
			matched = append(matched, boards[m.Index])
		}
		boards = matched
	}

	if len(boards) == 0 {
		env.printf("No boards found.\n")
		return 0
	}
	for _, b := range boards {
		env.printf("%-36s  %s\n", b.ID, b.Title)
	}
	return 0
}

func runBoardShow(ctx context.Context, args []string, env Env) int {
	fset := flag.NewFlagSet("show", flag.ContinueOnError)
	fset.SetOutput(env.Err)
	query := fset.String("query", "", "Only cards whose title contains text")
	labels := fset.String("label", "", "Only cards with any of these labels (comma-separated)")
	members := fset.String("member", "", "Only cards with any of these members (comma-separated)")
	due := fset.String("due", "", "Due bucket: overdue, today, week, none")
	archived := fset.Bool("archived", false, "Include archived cards")

	pos, err := parseArgs(fset, args)
	if err != nil {
		return 1
	}
	if len(pos) == 0 {
		return env.errorf("board required\nUsage: corkboard board show <board> [--query text] [--label a,b] [--member a,b] [--due bucket]")
	}

	bucket, err := filter.ParseBucket(*due)
	if err != nil {
		return env.errorf("%v", err)
	}

	summary, err := resolveBoard(ctx, env.Client, strings.Join(pos, " "))
	if err != nil {
		return env.errorf("%v", err)
	}

	var (
		board  models.Board
		roster []models.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		board, err = env.Client.Board(gctx, summary.ID)
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = env.roster().All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return env.errorf("loading board: %v", err)
	}

	criteria := filter.Criteria{Due: bucket}
	if refs := config.ParseCommaSeparated(*labels); len(refs) > 0 {
		ids, names := labelCandidates(board)
		if criteria.LabelIDs, err = resolveNames("label", refs, ids, names); err != nil {
			return env.errorf("%v", err)
		}
	}
	if refs := config.ParseCommaSeparated(*members); len(refs) > 0 {
		ids, names := memberCandidates(roster)
		if criteria.MemberIDs, err = resolveNames("member", refs, ids, names); err != nil {
			return env.errorf("%v", err)
		}
	}

	now := time.Now()
	shown := filter.Board(board, *query, criteria, now)
	if !*archived {
		shown = withoutArchived(shown)
	}
	printBoard(env, shown, roster, now)
	return 0
}

func labelCandidates(b models.Board) ([]string, []string) {
	ids := make([]string, len(b.Labels))
	names := make([]string, len(b.Labels))
	for i, l := range b.Labels {
		ids[i], names[i] = l.ID, l.Name
	}
	return ids, names
}

func memberCandidates(members []models.Member) ([]string, []string) {
	ids := make([]string, len(members))
	names := make([]string, len(members))
	for i, m := range members {
		ids[i], names[i] = m.ID, m.Name
	}
	return ids, names
}

func withoutArchived(b models.Board) models.Board {
	for i := range b.Lists {
		var kept []models.Card
		for _, c := range b.Lists[i].Cards {
			if !c.Archived {
				kept = append(kept, c)
			}
		}
		b.Lists[i].Cards = kept
	}
	return b
}

func runBoardCreate(ctx context.Context, args []string, env Env) int {
	fset := flag.NewFlagSet("create", flag.ContinueOnError)
	fset.SetOutput(env.Err)
	background := fset.String("background", "", "Background color")

	pos, err := parseArgs(fset, args)
	if err != nil {
		return 1
	}
	title, err := models.ValidateTitle(strings.Join(pos, " "))
	if err != nil {
		return env.errorf("%v", err)
	}

	board, err := env.Client.CreateBoard(ctx, title, *background)
	if err != nil {
		return env.errorf("creating board: %v", err)
	}
	env.printf("Created board: %s\n", board.Title)
	env.printf("ID: %s\n", board.ID)
	return 0
}

func runAddCard(ctx context.Context, args []string, env Env) int {
	if len(args) < 3 {
		return env.errorf("board, list and title required\nUsage: corkboard board add-card <board> <list> <title>")
	}

	coord, err := env.openBoard(ctx, args[0])
	if err != nil {
		return env.errorf("%v", err)
	}
	defer coord.Close()

	list, err := resolveList(coord.Snapshot(), args[1])
	if err != nil {
		return env.errorf("%v", err)
	}
	title := strings.Join(args[2:], " ")
	if err := coord.CreateCard(list.ID, title).Wait(ctx); err != nil {
		return env.errorf("adding card: %v", err)
	}

	env.printf("Added %q to %s\n", strings.TrimSpace(title), list.Title)
	snap := coord.Snapshot()
	if l := snap.GetList(list.ID); l != nil && len(l.Cards) > 0 {
		env.printf("ID: %s\n", l.Cards[len(l.Cards)-1].ID)
	}
	return 0
}

func runMoveCard(ctx context.Context, args []string, env Env) int {
	fset := flag.NewFlagSet("move-card", flag.ContinueOnError)
	fset.SetOutput(env.Err)
	position := fset.String("pos", "", "Position in the destination list, starting at 1 (default: end)")

	pos, err := parseArgs(fset, args)
	if err != nil {
		return 1
	}
	if len(pos) != 3 {
		return env.errorf("board, card and list required\nUsage: corkboard board move-card <board> <card> <list> [--pos n]")
	}

	coord, err := env.openBoard(ctx, pos[0])
	if err != nil {
		return env.errorf("%v", err)
	}
	defer coord.Close()

	board := coord.Snapshot()
	li, ci, err := resolveCard(board, pos[1])
	if err != nil {
		return env.errorf("%v", err)
	}
	dst, err := resolveList(board, pos[2])
	if err != nil {
		return env.errorf("%v", err)
	}
	src := board.Lists[li]

	// The last valid slot in the destination excludes the card itself
	// when it stays in the same list
	last := len(dst.Cards)
	if dst.ID == src.ID {
		last--
	}
	to := last
	if *position != "" {
		if to, err = parsePosition(*position); err != nil {
			return env.errorf("%v", err)
		}
		to = min(to, last)
	}

	intent, ok := gesture.Translate(board, gesture.Gesture{
		Kind:        gesture.KindCard,
		Source:      gesture.Location{ContainerID: src.ID, Index: ci},
		Destination: &gesture.Location{ContainerID: dst.ID, Index: to},
	})
	if !ok {
		env.printf("Nothing to move.\n")
		return 0
	}
	if err := coord.Dispatch(intent).Wait(ctx); err != nil {
		return env.errorf("moving card: %v", err)
	}

	env.printf("Moved %q to %s (position %d)\n", src.Cards[ci].Title, dst.Title, to+1)
	return 0
}

func runMoveList(ctx context.Context, args []string, env Env) int {
	if len(args) != 3 {
		return env.errorf("board, list and position required\nUsage: corkboard board move-list <board> <list> <pos>")
	}
	to, err := parsePosition(args[2])
	if err != nil {
		return env.errorf("%v", err)
	}

	coord, err := env.openBoard(ctx, args[0])
	if err != nil {
		return env.errorf("%v", err)
	}
	defer coord.Close()

	board := coord.Snapshot()
	list, err := resolveList(board, args[1])
	if err != nil {
		return env.errorf("%v", err)
	}
	to = min(to, len(board.Lists)-1)

	intent, ok := gesture.Translate(board, gesture.Gesture{
		Kind:        gesture.KindList,
		Source:      gesture.Location{ContainerID: board.ID, Index: board.GetListIndex(list.ID)},
		Destination: &gesture.Location{ContainerID: board.ID, Index: to},
	})
	if !ok {
		env.printf("Nothing to move.\n")
		return 0
	}
	if err := coord.Dispatch(intent).Wait(ctx); err != nil {
		return env.errorf("moving list: %v", err)
	}

	env.printf("Moved %s to position %d\n", list.Title, to+1)
	return 0
}

func runArchive(ctx context.Context, args []string, env Env) int {
	fset := flag.NewFlagSet("archive", flag.ContinueOnError)
	fset.SetOutput(env.Err)
	undo := fset.Bool("undo", false, "Restore an archived card")

	pos, err := parseArgs(fset, args)
	if err != nil {
		return 1
	}
	if len(pos) != 2 {
		return env.errorf("board and card required\nUsage: corkboard board archive <board> <card> [--undo]")
	}

	coord, err := env.openBoard(ctx, pos[0])
	if err != nil {
		return env.errorf("%v", err)
	}
	defer coord.Close()

	board := coord.Snapshot()
	li, ci, err := resolveCard(board, pos[1])
	if err != nil {
		return env.errorf("%v", err)
	}
	card := board.Lists[li].Cards[ci]
	if err := coord.ArchiveCard(card.ID, !*undo).Wait(ctx); err != nil {
		return env.errorf("archiving card: %v", err)
	}

	if *undo {
		env.printf("Restored: %s\n", card.Title)
	} else {
		env.printf("Archived: %s\n", card.Title)
	}
	return 0
}

func runSearch(ctx context.Context, args []string, env Env) int {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return env.errorf("search query required\nUsage: corkboard board search <query>")
	}

	hits, err := env.Client.Search(ctx, query)
	if err != nil {
		return env.errorf("searching: %v", err)
	}
	if len(hits) == 0 {
		env.printf("No cards found.\n")
		return 0
	}
	for _, h := range hits {
		env.printf("%s / %s: %s (%s)\n", h.BoardTitle, h.ListTitle, h.Card.Title, h.Card.ID)
	}
	env.printf("\n%d card(s)\n", len(hits))
	return 0
}

func runExport(ctx context.Context, args []string, env Env) int {
	if len(args) != 2 {
		return env.errorf("board and directory required\nUsage: corkboard board export <board> <dir>")
	}

	summary, err := resolveBoard(ctx, env.Client, args[0])
	if err != nil {
		return env.errorf("%v", err)
	}
	board, err := env.Client.Board(ctx, summary.ID)
	if err != nil {
		return env.errorf("loading board: %v", err)
	}
	members, err := env.roster().All(ctx)
	if err != nil {
		return env.errorf("loading members: %v", err)
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	if err := fs.Export(args[1], board, names); err != nil {
		return env.errorf("exporting: %v", err)
	}
	env.printf("Exported %s to %s\n", board.Title, args[1])
	return 0
}
