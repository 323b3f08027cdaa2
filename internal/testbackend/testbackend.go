// Package testbackend implements spec §1/§6's "--test" backend: an
// interactive ASCII rendering of the compositor's live state, driven by
// bubbletea the way the teacher's internal/ui package drives its
// server/client terminal UIs. Unlike internal/ascii (a pure renderer
// with no UI framework dependency), this package owns a tea.Program and
// a keymap for manually exercising the coordinator during development
// and for the automated test-channel client to attach a human eyeball
// to (§6's GetAsciiSnapshot/GetState reuse internal/ascii directly;
// this package is only the "--test" windowing surface of §1).
package testbackend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/stilch/internal/ascii"
	"github.com/bnema/stilch/internal/coordinator"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tickInterval matches the teacher's spinner.Tick cadence closely
// enough to feel live without redrawing on every coordinator mutation.
const tickInterval = 150 * time.Millisecond

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// element is the opaque registry.Element this backend hands out for
// synthetic windows created with 'n'; it is passed by value, and its
// counter n gives each window a distinct element.
type element struct{ n int }

// Backend is the bubbletea-driven test backend. It satisfies
// internal/backend.Backend's interface (Name/Run/Close) without
// importing that package, the same way internal/protocol's handlers
// avoid a dependency cycle back onto whichever package owns selection.
type Backend struct {
	coord *coordinator.Coordinator
	vo    ids.VirtualOutputId
	title string

	mu      sync.Mutex
	nextElt int

	program *tea.Program
}

// New builds a test backend rendering the workspace currently mounted
// on vo; vo must already exist in coord's virtual output manager.
func New(coord *coordinator.Coordinator, vo ids.VirtualOutputId) *Backend {
	return &Backend{coord: coord, vo: vo}
}

func (b *Backend) Name() string { return "test" }

// Run blocks until the bubbletea program quits (user pressed 'q' or
// ctrl+c) or ctx is cancelled, whichever comes first.
func (b *Backend) Run(ctx context.Context) error {
	m := newModel(b)
	program := tea.NewProgram(m, tea.WithContext(ctx))
	b.mu.Lock()
	b.program = program
	b.mu.Unlock()

	_, err := program.Run()
	if err != nil && err != tea.ErrProgramKilled {
		return fmt.Errorf("testbackend: %w", err)
	}
	return nil
}

// Close asks a running program to quit; safe to call even if Run was
// never started.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.program != nil {
		b.program.Quit()
	}
	return nil
}

// spawnWindow creates a synthetic window on b.vo's active workspace,
// standing in for a real xdg_toplevel the way internal/protocol's
// XdgShell.CreateToplevel would for a live client.
func (b *Backend) spawnWindow() (ids.WindowId, error) {
	b.mu.Lock()
	b.nextElt++
	elt := element{n: b.nextElt}
	b.mu.Unlock()
	return b.coord.AddWindow(elt, b.vo)
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	backend *Backend
	err     error
}

func newModel(b *Backend) model {
	return model{backend: b}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "n":
			id, err := m.backend.spawnWindow()
			if err != nil {
				m.err = err
				logger.Warnf("testbackend: spawn window: %v", err)
			} else {
				logger.Debugf("testbackend: spawned window %s", id)
			}
			return m, nil
		case "x":
			if id, ok := m.backend.coord.FocusedWindow(); ok {
				if err := m.backend.coord.RemoveWindow(id); err != nil {
					m.err = err
					logger.Warnf("testbackend: kill focused window %s: %v", id, err)
				} else {
					logger.Debugf("testbackend: killed window %s", id)
				}
			}
			return m, nil
		case "left", "right", "up", "down":
			m.moveFocus(msg.String())
			return m, nil
		}
	}
	return m, nil
}

func (m model) moveFocus(key string) {
	dir, ok := geom.ParseDirection(key)
	if !ok {
		return
	}
	target, ok := m.backend.coord.FindFocusTargetInDirection(dir)
	if !ok || target.Window == nil {
		return
	}
	if err := m.backend.coord.FocusWindow(*target.Window); err != nil {
		m.err = err
	}
}

func (m model) View() string {
	ws, mounted := m.backend.coord.Workspaces.WorkspaceOnOutput(m.backend.vo)
	if !mounted {
		return ascii.WithHeader("stilch --test", "(no workspace mounted)") + "\n" + helpLine()
	}

	w := m.backend.coord.Workspaces.Get(ws)
	focused, hasFocus := m.backend.coord.FocusedWindow()
	var focusPtr *ids.WindowId
	if hasFocus {
		focusPtr = &focused
	}

	snap, _, _ := ascii.Render(w.Tree, focusPtr, nil, ascii.Options{ShowIDs: true, ShowFocus: true})
	body := ascii.WithHeader(fmt.Sprintf("stilch --test  workspace %d", ids.DisplayName(ws)), snap)

	if m.err != nil {
		body += "\n" + helpStyle.Render("error: "+m.err.Error())
	}
	return body + "\n" + helpLine()
}

func helpLine() string {
	return helpStyle.Render("n: new window   x: kill focused   arrows: move focus   q: quit")
}
