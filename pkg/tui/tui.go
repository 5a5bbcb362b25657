// Package tui is the interactive terminal image viewer. It renders
// fetched images as Unicode half-blocks and demonstrates the view
// adapter end to end: the bubbletea update loop is the UI thread, and
// every image/progress callback is marshaled into it.
package tui

import (
	"fmt"
	"image"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"webimg/pkg/imgview"
	"webimg/pkg/manager"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// dispatchMsg carries a closure into the update loop.
type dispatchMsg func()

// programDispatcher satisfies imgview.Dispatcher by forwarding
// closures as messages; bubbletea runs Update on a single goroutine.
type programDispatcher struct {
	p *tea.Program
}

func (d *programDispatcher) Dispatch(fn func()) {
	d.p.Send(dispatchMsg(fn))
}

// canvas is the imgview.View: it remembers whatever the adapter last
// applied. Only touched from the update loop.
type canvas struct {
	img image.Image
}

func (c *canvas) SetImage(img image.Image) {
	c.img = img
}

type loadMsg struct{ idx int }

// Mutable
type model struct {
	urls []string
	idx  int

	iv     *imgview.ImageView
	canvas *canvas

	spin     spinner.Model
	loading  bool
	received int64
	total    int64
	err      error

	width  int
	height int
}

// Run shows urls one at a time, cycling with the arrow keys.
func Run(mgr *manager.Manager, urls []string) error {
	m := &model{
		urls:   urls,
		canvas: &canvas{},
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:  80,
		height: 24,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.iv = imgview.New(m.canvas, &programDispatcher{p: p}, mgr)

	_, err := p.Run()
	return err
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, func() tea.Msg { return loadMsg{idx: 0} })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg()
		return m, nil

	case loadMsg:
		return m, m.load(msg.idx, 0)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "right", "l":
			return m, m.load(m.idx+1, 0)
		case "left", "h":
			return m, m.load(m.idx-1, 0)
		case "r":
			return m, m.load(m.idx, manager.RefreshCached)
		}
	}

	return m, nil
}

// load points the view at another URL. Runs on the update loop, which
// is what the adapter requires.
func (m *model) load(idx int, flags manager.Flags) tea.Cmd {
	n := len(m.urls)
	m.idx = ((idx % n) + n) % n

	m.loading = true
	m.err = nil
	m.received, m.total = 0, 0

	m.iv.SetImageURLFull(m.urls[m.idx], nil, flags,
		func(received, total int64) {
			m.received, m.total = received, total
		},
		func(img image.Image, err error, url string) {
			m.loading = false
			m.err = err
		})

	return m.spin.Tick
}

func (m *model) View() string {
	header := titleStyle.Render(fmt.Sprintf("webimg %d/%d ", m.idx+1, len(m.urls))) +
		urlStyle.Render(m.urls[m.idx])

	body := ""
	switch {
	case m.loading:
		body = fmt.Sprintf("\n %s loading %s\n", m.spin.View(), m.progressText())
	case m.err != nil:
		body = "\n " + errStyle.Render(m.err.Error()) + "\n"
	case m.canvas.img != nil:
		body = RenderHalfBlocks(m.canvas.img, m.width, m.height-3)
	default:
		body = "\n no image\n"
	}

	help := helpStyle.Render(" ←/→ cycle · r refresh · q quit")
	return header + "\n" + body + "\n" + help
}

func (m *model) progressText() string {
	if m.total > 0 {
		return fmt.Sprintf("%s / %s", humanize.Bytes(uint64(m.received)), humanize.Bytes(uint64(m.total)))
	}
	if m.received > 0 {
		return humanize.Bytes(uint64(m.received))
	}
	return ""
}
