package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docopt/docopt-go"
	"github.com/mrxk/combo/internal/logging"
	"github.com/mrxk/combo/internal/model"
	"github.com/mrxk/combo/internal/processor"
)

const (
	comboUsage = `combo

Usage:
	combo [options] <path>

Options:
	-d <delay>, --delay=<delay>  Simulated latency of the element source [default: 0s].
	-f, --follow                 Reload the elements when the file changes.
	-l <file>, --log=<file>      Log file [default: combo.log].
	`
)

// args holds the parsed command line.
type args struct {
	model.ModelOpts
	LogPath string
}

// parseArgs takes a usage string and the command line arguments and returns
// the populated args.
func parseArgs(usage string, argv []string) (args, error) {
	a := args{}
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	docOpts, err := parser.ParseArgs(usage, argv, "")
	if err != nil {
		return a, err
	}
	delay, _ := docOpts.String("--delay")
	a.Delay, err = time.ParseDuration(delay)
	if err != nil {
		return a, fmt.Errorf("--delay: %w", err)
	}
	a.Follow, _ = docOpts.Bool("--follow")
	a.Path, _ = docOpts.String("<path>")
	a.LogPath, _ = docOpts.String("--log")
	return a, nil
}

// nopCloser is returned by openLog when logging is disabled.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openLog sends the log output to the file at path. When the file cannot be
// opened the log output is discarded.
func openLog(path string) io.Closer {
	logFile, err := logging.OpenFile(path)
	if err != nil {
		return nopCloser{}
	}
	return logFile
}

func main() {
	a, err := parseArgs(comboUsage, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	logFile := openLog(a.LogPath)
	defer logFile.Close()
	p := tea.NewProgram(model.NewModel(a.ModelOpts), tea.WithAltScreen())
	go processor.Run(p)
	if _, err := p.Run(); err != nil {
		logFile.Close()
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
