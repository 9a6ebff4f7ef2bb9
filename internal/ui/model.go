package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/codecam/internal/capture"
	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/loop"
	"github.com/olivier-w/codecam/internal/palette"
	"github.com/olivier-w/codecam/internal/shutter"
	"github.com/olivier-w/codecam/internal/style"
	"github.com/olivier-w/codecam/internal/surface"
	"github.com/olivier-w/codecam/internal/video"
)

const (
	// chromeRows is the number of lines the view uses around the mosaic:
	// header, blank, blank, status, help.
	chromeRows = 5
	// chromeCols is the left margin of every line.
	chromeCols = 2

	statusTTL = 4 * time.Second
)

// Options configures a Model.
type Options struct {
	Source  video.Source
	Shutter *shutter.Shutter // nil plays no sound
	Style   style.ID
	Delay   capture.Delay
	FPS     int
	Dir     string // where captures are written
}

// Model is the Bubbletea model for the codecam TUI.
type Model struct {
	source   video.Source
	loop     *loop.Loop
	sched    *refreshScheduler
	term     *surface.Terminal
	shutter  *shutter.Shutter
	interval time.Duration
	dir      string
	now      func() time.Time

	keys      keyMap
	help      help.Model
	spinner   spinner.Model
	flash     flash
	delay     capture.Delay
	countdown capture.Countdown

	width    int
	height   int
	ready    bool
	paused   bool
	quitting bool
	err      error

	status     string    // transient status message
	statusErr  bool      // status is an error
	statusTime time.Time // when status was set
}

// New creates a Model that renders opts.Source into the terminal.
func New(opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}

	cache := palette.MustBuild(style.Colors())
	term := surface.NewTerminal(0, 0)
	sched := &refreshScheduler{}
	l := loop.New(opts.Source, term, sched, style.NewTable(cache), loop.Config{
		Style: opts.Style,
		Timer: opts.Delay.Duration(),
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = countdownStyle

	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle

	return Model{
		source:   opts.Source,
		loop:     l,
		sched:    sched,
		term:     term,
		shutter:  opts.Shutter,
		interval: time.Second / time.Duration(fps),
		dir:      opts.Dir,
		now:      time.Now,
		keys:     defaultKeyMap(),
		help:     h,
		spinner:  sp,
		flash:    newFlash(fps),
		delay:    opts.Delay,
	}
}

// Loop exposes the frame loop, mainly for stats after the program exits.
func (m Model) Loop() *loop.Loop { return m.loop }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tea.SetWindowTitle(windowTitle(m.styleName(), false))}
	if m.source != nil {
		cmds = append(cmds, waitReady(m.source))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case sourceReadyMsg:
		m.ready = true
		if err := m.loop.Start(); err != nil {
			m.err = err
			return m, nil
		}
		return m, tea.Batch(m.nextFrame(), watchSource(m.source))

	case sourceFailedMsg:
		m.loop.Stop()
		m.countdown.Cancel()
		m.err = msg.err
		if m.err == nil {
			m.err = fmt.Errorf("video source stopped")
		}
		slog.Warn("ui: source stopped", "error", m.err)
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		m.sched.fired()
		if fn := m.sched.take(); fn != nil {
			fn(now)
		}
		m.flash.step()
		if m.status != "" && now.Sub(m.statusTime) > statusTTL {
			m.status = ""
		}
		return m, m.nextFrame()

	case countdownMsg:
		if !m.countdown.Active() {
			return m, nil
		}
		if m.countdown.Tick() {
			return m, m.shoot()
		}
		return m, countdownCmd()

	case captureSavedMsg:
		if msg.err != nil {
			slog.Error("ui: capture failed", "error", msg.err)
			m.setStatus("capture failed: "+msg.err.Error(), true)
			return m, nil
		}
		slog.Info("ui: capture saved", "path", msg.path)
		m.setStatus("saved "+msg.path, false)
		return m, nil

	case spinner.TickMsg:
		if m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.countdown.Cancel()
		m.loop.Stop()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, m.keys.Binary, m.keys.Regex, m.keys.Source):
		id, _ := m.keys.styleFor(msg)
		return m, m.setStyle(id)

	case key.Matches(msg, m.keys.Cycle):
		return m, m.setStyle(m.loop.Config().Style.Next())

	case key.Matches(msg, m.keys.Timer):
		m.delay = m.delay.Next()
		d := m.delay.Duration()
		m.loop.Update(func(c loop.Config) loop.Config {
			c.Timer = d
			return c
		})
		return m, nil

	case key.Matches(msg, m.keys.Capture):
		if !m.ready || m.err != nil || m.countdown.Active() {
			return m, nil
		}
		if m.delay == capture.DelayOff {
			return m, m.shoot()
		}
		m.countdown.Start(m.delay)
		return m, countdownCmd()

	case key.Matches(msg, m.keys.Pause):
		if !m.ready || m.err != nil {
			return m, nil
		}
		if m.paused {
			if err := m.loop.Start(); err != nil {
				m.err = err
				return m, nil
			}
			m.paused = false
		} else {
			m.loop.Stop()
			m.paused = true
		}
		return m, tea.Batch(m.nextFrame(), tea.SetWindowTitle(windowTitle(m.styleName(), m.paused)))
	}
	return m, nil
}

func (m *Model) setStyle(id style.ID) tea.Cmd {
	m.loop.Update(func(c loop.Config) loop.Config {
		c.Style = id
		return c
	})
	return tea.SetWindowTitle(windowTitle(id.String(), m.paused))
}

// resize fits the source into the space the window leaves for the mosaic.
func (m *Model) resize() {
	var srcW, srcH int
	if m.source != nil {
		srcW, srcH = m.source.Size()
	}
	cols, rows := frame.FitGrid(m.width-chromeCols, m.height-chromeRows, srcW, srcH)
	m.term.Resize(cols, rows)
	m.loop.Update(func(c loop.Config) loop.Config {
		c.Cols, c.Rows = cols, rows
		return c
	})
}

// shoot renders the current frame onto a raster and saves it in the
// background. The raster is painted by the same code path as the live view.
func (m *Model) shoot() tea.Cmd {
	cfg := m.loop.Config()
	r, err := surface.NewRasterGrid(cfg.Cols, cfg.Rows)
	if err != nil {
		m.setStatus("capture failed: "+err.Error(), true)
		return nil
	}
	now := m.now()
	if !m.loop.Render(r, now) {
		r.Close()
		m.setStatus("no frame to capture", true)
		return nil
	}

	m.shutter.Click()
	m.flash.fire()

	dir, name := m.dir, cfg.Style.String()
	save := func() tea.Msg {
		defer r.Close()
		path, err := capture.Save(dir, r.Image(), name, now)
		return captureSavedMsg{path: path, err: err}
	}
	return tea.Batch(save, m.nextFrame())
}

// nextFrame issues the next refresh when the loop or the flash needs one.
func (m *Model) nextFrame() tea.Cmd {
	if !m.sched.arm(m.flash.active()) {
		return nil
	}
	return frameCmd(m.interval)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	m.statusTime = m.now()
}

func (m Model) styleName() string { return m.loop.Config().Style.String() }

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cfg := m.loop.Config()
	name := cfg.Style.String()

	header := headerStyle.Render("codecam") + "  " + styleAccent[name].Render(name)
	if icon := m.delay.Icon(); icon != "" {
		header += "  " + statusStyle.Render(icon)
	}

	var body string
	switch {
	case m.err != nil:
		body = errorStyle.Render("Error: " + m.err.Error())
	case !m.ready:
		body = m.spinner.View() + " " + statusStyle.Render("waiting for camera...")
	case m.flash.visible():
		body = renderFlash(m.flash.level, cfg.Cols, cfg.Rows)
	default:
		body = m.term.View()
	}

	var status string
	switch {
	case m.countdown.Active():
		status = countdownStyle.Render(fmt.Sprintf("capturing in %d", m.countdown.Remaining()))
	case m.status != "" && m.statusErr:
		status = errorStyle.Render(m.status)
	case m.status != "":
		status = statusStyle.Render(m.status)
	case m.paused:
		status = statusStyle.Render("❚❚  paused")
	case m.ready && m.err == nil:
		status = statusStyle.Render("●  live")
	}

	var b strings.Builder
	b.WriteString(indent(header, chromeCols))
	b.WriteString("\n\n")
	b.WriteString(indent(body, chromeCols))
	b.WriteString("\n\n")
	b.WriteString(indent(status, chromeCols))
	b.WriteString("\n")
	b.WriteString(indent(m.help.View(m.keys), chromeCols))
	return b.String()
}
