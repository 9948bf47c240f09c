package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mnemogen/internal/dcache"
	"mnemogen/internal/table"
	"mnemogen/internal/ui"
)

// uiMode is the --ui setting of the table command.
type uiMode uint8

const (
	uiModeAuto uiMode = iota // progress UI when stdout is a terminal
	uiModeOn
	uiModeOff
)

var uiModes = map[string]uiMode{"": uiModeAuto, "auto": uiModeAuto, "on": uiModeOn, "off": uiModeOff}

func readUIMode(value string) (uiMode, error) {
	if mode, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]; ok {
		return mode, nil
	}
	return uiModeAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

func shouldUseTUI(mode uiMode) bool {
	return mode == uiModeOn || mode == uiModeAuto && isTerminal(os.Stdout)
}

type generateOutcome struct {
	gen table.Generated
	err error
}

// generateWithUI runs table.Generate in the background and renders its
// progress events until the generator closes the channel.
func generateWithUI(ctx context.Context, title string, req *table.Request, output string, cache *dcache.Cache) (table.Generated, error) {
	events := make(chan table.Event, 64)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = table.ChannelSink{Ch: events}
		gen, err := table.Generate(ctx, &reqCopy, output, cache)
		outcomeCh <- generateOutcome{gen: gen, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Sources, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the generator from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.gen, uiErr
	}
	return outcome.gen, outcome.err
}
