package processor

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/mrxk/combo/internal/element"
	"github.com/mrxk/combo/internal/logging"
)

// Operation defines the operations the processor can handle.
type Operation int

const (
	// WatchOperation tells the processor to begin watching an element file.
	// A watch already running is stopped first.
	WatchOperation Operation = iota
	// StopOperation tells the processor to stop watching and return.
	StopOperation
)

// Command contains the description of a command the processor will execute.
type Command struct {
	Operation Operation
	Path      string
}

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// CommandChannel is a tea.Msg that conveys the channel the processor will be
// listening on for commands.
type CommandChannel struct {
	CmdChan chan<- Command
}

// Watching is a tea.Msg that indicates the processor is watching the given
// path.
type Watching struct {
	Path string
}

// ItemsChanged is a tea.Msg that conveys the elements read after the watched
// file changed.
type ItemsChanged struct {
	Items []element.Element
}

// WatchError is a tea.Msg that conveys an error that occurred while watching
// or reading the element file.
type WatchError struct {
	Message string
	Err     error
	Path    string
}

// Stopped is a tea.Msg that indicates the processor has stopped. Watchers are
// closed and contexts are cancelled.
type Stopped struct {
}

// Run runs the processor for the given program. It first creates a command
// channel and then sends that channel to the program via a CommandChannel
// message. It then listens on that channel for commands until a StopOperation
// arrives.
func Run(program Sender) {
	log := logging.NewLogger("processor")
	cmdChan := make(chan Command)
	program.Send(CommandChannel{CmdChan: cmdChan})
	var handler *watchHandler
	for {
		cmd := <-cmdChan
		switch cmd.Operation {
		case WatchOperation:
			if handler != nil {
				handler.stop()
			}
			handler = nil
			h, err := newWatchHandler(cmd.Path)
			if err != nil {
				log.WithError(err).Warnf("watch %s", cmd.Path)
				program.Send(WatchError{Message: "watch", Err: err, Path: cmd.Path})
				continue
			}
			handler = h
			log.Debugf("watching %s", handler.path)
			program.Send(Watching{Path: cmd.Path})
			go handler.watch(program)
		case StopOperation:
			if handler != nil {
				handler.stop()
			}
			program.Send(Stopped{})
			return
		}
	}
}

// watchHandler holds the tracking data for a watch. This includes the context
// that ends the watch loop, the cancel function for that context, the fsnotify
// watcher and a channel closed when the watch loop has returned.
type watchHandler struct {
	ctx     context.Context
	cancel  func()
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// newWatchHandler returns a watchHandler watching the directory of path.
// Editors often replace files instead of writing them in place, so the
// directory is watched rather than the file.
func newWatchHandler(path string) (*watchHandler, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}
	h := &watchHandler{watcher: watcher, path: abs, done: make(chan struct{})}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	return h, nil
}

// stop ends the watch loop, closes the watcher and waits for the loop to
// return. No message of this watch is sent after stop returns.
func (h *watchHandler) stop() {
	h.cancel()
	h.watcher.Close()
	<-h.done
}

// send sends msg to the program unless the watch was stopped.
func (h *watchHandler) send(program Sender, msg tea.Msg) {
	if h.ctx.Err() != nil {
		return
	}
	program.Send(msg)
}

// watch re-reads the watched file on every write or create event and sends
// the result to the program as an ItemsChanged or a WatchError message.
func (h *watchHandler) watch(program Sender) {
	defer close(h.done)
	log := logging.NewLogger("processor")
	for {
		select {
		case <-h.ctx.Done():
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != h.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			items, err := element.Load(h.path)
			if err != nil {
				h.send(program, WatchError{Message: "load", Err: err, Path: h.path})
				continue
			}
			h.send(program, ItemsChanged{Items: items})
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.send(program, WatchError{Message: "watch", Err: err, Path: h.path})
		}
	}
}
