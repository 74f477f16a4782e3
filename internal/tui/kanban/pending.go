package kanban

import (
	"errors"
	"fmt"

	"corkboard/internal/board/reconcile"

	tea "github.com/charmbracelet/bubbletea"
)

// pendingSettledMsg is delivered once a persistence call has settled
type pendingSettledMsg struct {
	op  string
	err error
}

// awaitPending turns a pending write into a command that fires when it settles
func awaitPending(op string, p *reconcile.Pending) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return pendingSettledMsg{op: op, err: p.Err()}
	}
}

// describeError renders a settled error for the status line
func describeError(op string, err error) error {
	if errors.Is(err, reconcile.ErrStale) {
		return fmt.Errorf("%s: board changed underneath, nothing sent", op)
	}
	return err
}
