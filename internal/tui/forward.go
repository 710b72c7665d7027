package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalmerr/syncboard/internal/store"
)

// Forward delivers every published table on updates to a bubbletea program
// as a [TableMsg]. send is usually (*tea.Program).Send.
//
// Forward blocks until ctx is done or updates is closed.
func Forward(ctx context.Context, updates <-chan store.Snapshot, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			send(TableMsg{Name: snap.Name, Rows: snap.Rows, At: snap.UpdatedAt})
		}
	}
}
