package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sable/internal/linter"
	"sable/internal/ui"
)

type scanOutcome struct {
	res *linter.ScanResult
	err error
}

// runScanWithUI runs a scan behind the progress UI. The scan itself lives
// in a goroutine feeding the event channel; closing the channel quits the
// program, and the outcome is collected after the terminal is restored.
func runScanWithUI(ctx context.Context, title string, pipe *linter.Pipeline, opts linter.Options) (*linter.ScanResult, error) {
	events := make(chan linter.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = linter.ChannelSink(events)
		res, err := linter.Run(ctx, pipe, optsCopy)
		outcomeCh <- scanOutcome{res: res, err: err}
		close(events)
	}()

	model := ui.NewScanModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.res, uiErr
	}
	return outcome.res, outcome.err
}
