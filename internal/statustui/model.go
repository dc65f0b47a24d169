package statustui

import (
	"log"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/input-remapper/inputremapperd/internal/injector"
)

// GroupState is one row of the dashboard: a device group key plus its
// last-polled injection state (or the poll error, if the daemon call
// itself failed).
type GroupState struct {
	GroupKey string
	State    injector.State
	Err      string
}

// Poller is the subset of *internal/control.Client the dashboard
// needs: one GetState call per tracked group key, per poll tick.
type Poller interface {
	GetState(groupKey string) (injector.State, bool, error)
}

type pollTickMsg struct{}

type pollResultMsg struct {
	groups []GroupState
}

const pollInterval = time.Second

// Model is the Bubble Tea model for the status dashboard.
type Model struct {
	Client    Poller
	GroupKeys []string
	Logger    *log.Logger

	groups    []GroupState
	lastError string
}

// NewModel builds a dashboard model that polls client for every key in
// groupKeys on each tick.
func NewModel(client Poller, groupKeys []string, logger *log.Logger) Model {
	sorted := append([]string(nil), groupKeys...)
	sort.Strings(sorted)
	return Model{Client: client, GroupKeys: sorted, Logger: logger}
}

// Init kicks off the first poll immediately.
func (m Model) Init() tea.Cmd {
	return m.pollCmd()
}

// Update handles ticks, poll results, and quit keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case pollTickMsg:
		return m, m.pollCmd()
	case pollResultMsg:
		m.groups = msg.groups
		return m, scheduleNextPoll()
	}
	return m, nil
}

func (m Model) pollCmd() tea.Cmd {
	client := m.Client
	keys := m.GroupKeys
	logger := m.Logger
	return func() tea.Msg {
		groups := make([]GroupState, 0, len(keys))
		for _, key := range keys {
			st, found, err := client.GetState(key)
			row := GroupState{GroupKey: key}
			switch {
			case err != nil:
				row.Err = err.Error()
				if logger != nil {
					logger.Printf("statustui: get_state %s: %v", key, err)
				}
			case !found:
				row.State = injector.State{Phase: injector.PhaseUnknown}
			default:
				row.State = st
			}
			groups = append(groups, row)
		}
		return pollResultMsg{groups: groups}
	}
}

func scheduleNextPoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollTickMsg{} })
}
