package processor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrxk/combo/internal/element"
)

// fakeProgram records the messages sent to it.
type fakeProgram struct {
	msgs chan tea.Msg
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{msgs: make(chan tea.Msg, 64)}
}

func (p *fakeProgram) Send(msg tea.Msg) {
	p.msgs <- msg
}

// next returns the next message of type M, skipping others.
func next[M any](t *testing.T, p *fakeProgram) M {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg := <-p.msgs:
			if m, ok := msg.(M); ok {
				return m
			}
		case <-timeout:
			var zero M
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func start(t *testing.T) (*fakeProgram, chan<- Command, chan struct{}) {
	t.Helper()
	program := newFakeProgram()
	done := make(chan struct{})
	go func() {
		Run(program)
		close(done)
	}()
	cmdChan := next[CommandChannel](t, program).CmdChan
	return program, cmdChan, done
}

func TestRunStop(t *testing.T) {
	program, cmdChan, done := start(t)
	cmdChan <- Command{Operation: StopOperation}
	next[Stopped](t, program)
	<-done
}

func TestRunWatchSendsItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: 1\n  name: Apple\n"), 0600))

	program, cmdChan, done := start(t)
	cmdChan <- Command{Operation: WatchOperation, Path: path}
	next[Watching](t, program)

	require.NoError(t, os.WriteFile(path, []byte("- id: 2\n  name: Cherry\n"), 0600))
	want := []element.Element{element.New(2, "Cherry")}
	for {
		changed := next[ItemsChanged](t, program)
		// A truncating write may be observed before the content lands.
		if len(changed.Items) > 0 {
			assert.Equal(t, want, changed.Items)
			break
		}
	}

	cmdChan <- Command{Operation: StopOperation}
	next[Stopped](t, program)
	<-done
}

func TestRunWatchReportsBadContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0600))

	program, cmdChan, done := start(t)
	cmdChan <- Command{Operation: WatchOperation, Path: path}
	next[Watching](t, program)

	require.NoError(t, os.WriteFile(path, []byte("- id: 1\n  name: ''\n"), 0600))
	watchErr := next[WatchError](t, program)
	assert.Equal(t, "load", watchErr.Message)
	assert.ErrorIs(t, watchErr.Err, element.ErrEmptyName)

	cmdChan <- Command{Operation: StopOperation}
	next[Stopped](t, program)
	<-done
}

func TestRunWatchMissingDirectory(t *testing.T) {
	program, cmdChan, done := start(t)
	path := filepath.Join(t.TempDir(), "missing", "items.yaml")
	cmdChan <- Command{Operation: WatchOperation, Path: path}
	watchErr := next[WatchError](t, program)
	assert.Equal(t, "watch", watchErr.Message)
	assert.Equal(t, path, watchErr.Path)

	cmdChan <- Command{Operation: StopOperation}
	next[Stopped](t, program)
	<-done
}

func TestRunNoItemsAfterStopped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: 1\n  name: Apple\n"), 0600))

	program, cmdChan, done := start(t)
	cmdChan <- Command{Operation: WatchOperation, Path: path}
	next[Watching](t, program)
	cmdChan <- Command{Operation: StopOperation}
	next[Stopped](t, program)
	<-done

	require.NoError(t, os.WriteFile(path, []byte("- id: 2\n  name: Cherry\n"), 0600))
	select {
	case msg := <-program.msgs:
		t.Fatalf("unexpected message after Stopped: %#v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchHandlerStopWaitsForLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	h, err := newWatchHandler(path)
	require.NoError(t, err)
	go h.watch(newFakeProgram())

	h.stop()
	select {
	case <-h.done:
	default:
		t.Fatal("stop returned before the watch loop")
	}
	assert.Error(t, h.ctx.Err())
}
