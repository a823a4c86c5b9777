package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/histodash/internal/charts"
	"github.com/yildizm/histodash/internal/dashboard"
	"github.com/yildizm/histodash/internal/splash"
	"github.com/yildizm/histodash/internal/watch"
)

// tickInterval drives the spinner animation
const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

// splashStateMsg carries a sequencer transition into the update loop
type splashStateMsg struct {
	state splash.State
}

// splashDoneMsg is sent once the sequence and its grace delay are over
type splashDoneMsg struct{}

type metricsLoadedMsg struct {
	err error
}

type predictDoneMsg struct {
	ticket dashboard.Ticket
}

type fileEventMsg struct {
	event watch.Event
}

type chartsExportedMsg struct {
	paths []string
	dir   string
	err   error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSplash blocks until the sequencer reports or the splash is torn down
func waitForSplash(ch <-chan tea.Msg, stop <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-stop:
			return nil
		}
	}
}

// fetchMetricsCmd loads the classification report in the background
func fetchMetricsCmd(ctrl *dashboard.Controller) tea.Cmd {
	return func() tea.Msg {
		return metricsLoadedMsg{err: ctrl.FetchMetrics(context.Background())}
	}
}

// submitCmd runs a submit started with BeginSubmit
func submitCmd(ctrl *dashboard.Controller, t dashboard.Ticket) tea.Cmd {
	return func() tea.Msg {
		ctrl.Submit(context.Background(), t)
		return predictDoneMsg{ticket: t}
	}
}

// waitForFileEvent delivers the next change to the selected file
func waitForFileEvent(events <-chan watch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return fileEventMsg{event: ev}
	}
}

// exportChartsCmd writes the analytics charts as PNG files
func exportChartsCmd(set charts.Set, dir string, width, height int) tea.Cmd {
	return func() tea.Msg {
		paths, err := charts.ExportPNG(set, dir, width, height)
		return chartsExportedMsg{paths: paths, dir: dir, err: err}
	}
}
