package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrxk/combo/internal/element"
	"github.com/mrxk/combo/internal/processor"
)

// loadElements returns a data source that waits for the given delay and then
// reads the elements from path. The wait ends early when ctx is done.
func loadElements(path string, delay time.Duration) func(context.Context) ([]element.Element, error) {
	return func(ctx context.Context) ([]element.Element, error) {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		return element.Load(path)
	}
}

// sendCommand returns a tea.Cmd that, when executed, hands cmd to the
// processor. Sending happens off the event loop because the processor may be
// busy.
func sendCommand(cmdChan chan<- processor.Command, cmd processor.Command) tea.Cmd {
	return func() tea.Msg {
		cmdChan <- cmd
		return nil
	}
}
