package tui

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/cursor"
	"github.com/san-kum/smear/internal/palette"
	"github.com/san-kum/smear/internal/scenario"
	"github.com/san-kum/smear/internal/term"
	"github.com/san-kum/smear/internal/tune"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// themes recolor the smear. Applied through the runtime options patch so
// the palette rebuild takes the same path as any other config change.
var themes = []struct {
	name   string
	cursor string
	bg     string
}{
	{"plain", "#c8c8c8", "#303030"},
	{"phosphor", "#33ff66", "#0a140a"},
	{"ember", "#ff9f43", "#140a05"},
	{"ice", "#7dd7ff", "#05101a"},
}

// shadeStyle resolves a highlight through the active palette. Inverted
// refs carry their own background fill.
func shadeStyle(pal *palette.Palette, ref palette.Ref) lipgloss.Style {
	entry, ok := pal.Lookup(ref)
	if !ok {
		return white
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(entry.Fg))
	if entry.Bg != "" {
		st = st.Background(lipgloss.Color(entry.Bg))
	}
	return st
}

var playgroundText = []string{
	"package main",
	"",
	"func main() {",
	"    fmt.Println(\"chase me\")",
	"}",
}

type screenState int

const (
	stateMenu screenState = iota
	stateOptions
	stateDemo
)

// demoSched records the runtime's tick request; the bubbletea loop
// fires it on the first frame past its due time.
type demoSched struct {
	pending bool
	due     time.Time
	at      time.Time
	gen     uint64
}

func (s *demoSched) Schedule(delay float64, generation uint64) {
	s.pending = true
	s.at = time.Now()
	s.due = s.at.Add(time.Duration(delay * float64(time.Second)))
	s.gen = generation
}

type model struct {
	state    screenState
	cursor   int
	demos    []string
	info     map[string]string
	selected string

	params      map[string]float64
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	rt      *cursor.Runtime
	disp    *term.Screen
	pal     *palette.Palette
	sched   *demoSched
	playing *scenario.Scenario
	stepIdx int
	stepAt  time.Time
	ctxName string
	mode    string
	row     int
	col     int

	paused    bool
	debug     bool
	themeIdx  int
	lastFrame time.Time
	fps       float64

	logger *log.Logger

	gauge    harmonica.Spring
	gaugePos float64
	gaugeVel float64
	history  []float64

	errMsg string
	width  int
	height int
}

// NewApp builds the demo model. A nil logger discards runtime
// diagnostics, the right default for a full-screen program.
func NewApp(logger *log.Logger) *model {
	def := config.Default()
	if logger == nil {
		logger = log.New(io.Discard)
	}

	demos := []string{"playground"}
	info := map[string]string{"playground": "drive the cursor yourself"}
	for _, scn := range scenario.Presets() {
		demos = append(demos, scn.Name)
		info[scn.Name] = scn.Description
	}

	return &model{
		state:  stateMenu,
		demos:  demos,
		info:   info,
		debug:  true,
		logger: logger,
		params: map[string]float64{
			"stiffness":          def.Physics.Stiffness,
			"trailing_stiffness": def.Physics.TrailingStiffness,
			"damping":            def.Physics.Damping,
			"trailing_exponent":  def.Physics.TrailingExponent,
			"gradient":           def.Planner.Gradient,
			"particles":          1,
			"max_particles":      float64(def.Particles.Max),
		},
		paramNames: []string{
			"stiffness", "trailing_stiffness", "damping",
			"trailing_exponent", "gradient", "particles", "max_particles",
		},
		gauge:   harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.4),
		history: make([]float64, 0, 60),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateDemo || m.rt == nil {
			return m, nil
		}
		if !m.paused {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateOptions:
		return m.optionsKey(msg)
	case stateDemo:
		return m.demoKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.demos)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.demos[m.cursor]
		m.state = stateOptions
		m.paramCursor = 0
		m.errMsg = ""
	}
	return m, nil
}

func (m model) optionsKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(m.editBuf, "%f", &val)
			m.params[m.paramNames[m.paramCursor]] = val
			m.editing = false
			m.editBuf = ""
		case "escape":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "escape":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter":
		m.editing = true
		m.editBuf = fmt.Sprintf("%.2f", m.params[m.paramNames[m.paramCursor]])
	case "left", "h":
		name := m.paramNames[m.paramCursor]
		m.params[name] -= paramStep(name)
	case "right", "l":
		name := m.paramNames[m.paramCursor]
		m.params[name] += paramStep(name)
	case "s", " ":
		if err := m.start(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.state = stateDemo
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func paramStep(name string) float64 {
	switch name {
	case "particles":
		return 1
	case "max_particles":
		return 8
	case "gradient":
		return 1
	}
	return 0.05
}

func (m model) demoKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape", "ctrl+c":
		m.stop()
		m.state = stateMenu
		return m, tea.ClearScreen
	case "o":
		m.stop()
		m.state = stateOptions
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
		return m, nil
	case "r":
		if err := m.start(); err != nil {
			m.errMsg = err.Error()
		}
		return m, tea.ClearScreen
	case "d":
		m.debug = !m.debug
		return m, nil
	case "t":
		if m.rt == nil {
			return m, nil
		}
		m.themeIdx = (m.themeIdx + 1) % len(themes)
		th := themes[m.themeIdx]
		patch := &config.Patch{Color: config.ColorPatch{
			CursorColor:   config.Set(th.cursor),
			BackgroundHex: config.Set(th.bg),
		}}
		if err := m.rt.ApplyOptions(patch); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.refreshPalette()
		return m, nil
	}

	if m.playing != nil || m.rt == nil {
		return m, nil
	}

	// Playground movement.
	rows, cols := m.disp.Viewport()
	row, col := m.row, m.col
	mode := m.mode
	switch msg.String() {
	case "h", "left":
		col--
	case "l", "right":
		col++
	case "k", "up":
		row--
	case "j", "down":
		row++
	case "w":
		col += 8
	case "b":
		col -= 8
	case "g":
		row = 0
	case "G":
		row = rows - 1
	case "0":
		col = 0
	case "$":
		col = cols - 1
	case "x":
		row, col = rand.Intn(rows), rand.Intn(cols)
	case "i":
		if mode == "i" {
			mode = "n"
		} else {
			mode = "i"
		}
	case "m":
		mode = nextMode(mode)
	default:
		return m, nil
	}

	m.row = clamp(row, 0, rows-1)
	m.col = clamp(col, 0, cols-1)
	m.mode = mode
	m.rt.OnCursorEvent(cursor.CursorEvent{Row: m.row, Col: m.col, Context: m.ctxName, Mode: m.mode})
	return m, nil
}

func nextMode(mode string) string {
	order := []string{"n", "i", "R", "c", "t"}
	for i, s := range order {
		if s == mode {
			return order[(i+1)%len(order)]
		}
	}
	return "n"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// start builds a fresh screen and runtime for the selected demo.
func (m *model) start() error {
	m.stop()

	patch, err := tune.Apply(nil, m.params)
	if err != nil {
		return err
	}
	cfg, err := config.Apply(config.Default(), patch)
	if err != nil {
		return err
	}

	rows, cols := 24, 80
	var scn *scenario.Scenario
	if m.selected != "playground" {
		scn, err = scenario.Preset(m.selected)
		if err != nil {
			return err
		}
		if scn.Rows > 0 {
			rows = scn.Rows
		}
		if scn.Cols > 0 {
			cols = scn.Cols
		}
	} else {
		rows = clamp(m.height-10, 12, 40)
		cols = clamp(m.width-8, 40, 120)
	}

	disp := term.NewScreen(rows, cols)
	if scn != nil {
		for _, span := range scn.Text {
			disp.SetText(span.Row, span.Col, span.Text)
		}
	} else {
		for i, line := range playgroundText {
			disp.SetText(rows/2-2+i, 4, line)
		}
	}

	sched := &demoSched{}
	rt, err := cursor.NewRuntime(cfg, disp, disp, sched, m.logger)
	if err != nil {
		return err
	}

	m.rt = rt
	m.disp = disp
	m.sched = sched
	m.refreshPalette()
	m.playing = scn
	m.stepIdx = 0
	m.stepAt = time.Now()
	m.ctxName = "demo"
	m.mode = "n"
	m.paused = false
	m.errMsg = ""
	m.history = m.history[:0]
	m.gaugePos, m.gaugeVel = 0, 0
	m.lastFrame = time.Time{}

	if scn == nil {
		m.row, m.col = rows/2, cols/2
		m.rt.OnCursorEvent(cursor.CursorEvent{Row: m.row, Col: m.col, Context: m.ctxName, Mode: m.mode})
	}
	return nil
}

func (m *model) stop() {
	if m.rt != nil {
		m.rt.Teardown()
	}
	m.rt = nil
	m.disp = nil
	m.sched = nil
	m.playing = nil
}

// refreshPalette mirrors the runtime's shade palette for rendering.
func (m *model) refreshPalette() {
	if m.rt == nil {
		return
	}
	if pal, err := palette.Build(m.rt.Config().Color); err == nil {
		m.pal = pal
	}
}

// advance runs scheduled animation ticks and scenario steps whose time
// has come.
func (m *model) advance() {
	now := time.Now()
	if !m.lastFrame.IsZero() {
		if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
			m.fps = 1.0 / dt
		}
	}
	m.lastFrame = now

	if m.playing != nil && now.After(m.stepAt) {
		st := m.playing.Steps[m.stepIdx]
		if st.Options != nil {
			if err := m.rt.ApplyOptions(st.Options); err != nil {
				m.errMsg = err.Error()
			}
		}
		if st.Mode != "" {
			m.mode = st.Mode
		}
		if st.Context != "" {
			m.ctxName = st.Context
		}
		if len(st.Move) == 2 {
			m.row, m.col = st.Move[0], st.Move[1]
			m.rt.OnCursorEvent(cursor.CursorEvent{Row: m.row, Col: m.col, Context: m.ctxName, Mode: m.mode})
		}
		hold := st.Hold
		if hold <= 0 {
			hold = 0.8
		}
		m.stepAt = now.Add(time.Duration(hold * float64(time.Second)))
		m.stepIdx = (m.stepIdx + 1) % len(m.playing.Steps)
	}

	if m.sched.pending && now.After(m.sched.due) {
		dt := now.Sub(m.sched.at).Seconds()
		m.sched.pending = false
		m.rt.OnTick(m.sched.gen, dt)

		m.history = append(m.history, float64(m.disp.OverlayCount()))
		if len(m.history) > 60 {
			m.history = m.history[1:]
		}
	}

	target := float64(m.disp.OverlayCount())
	m.gaugePos, m.gaugeVel = m.gauge.Update(m.gaugePos, m.gaugeVel, target)
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateOptions:
		return m.viewOptions()
	case stateDemo:
		return m.viewDemo()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("s m e a r") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.demos {
		desc := m.info[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter configure   q quit") + "\n")

	return b.String()
}

func (m model) viewOptions() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.selected) + "  " + dim.Render(m.info[m.selected]) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 34)) + "\n\n")

	for i, name := range m.paramNames {
		val := fmt.Sprintf("%8.2f", m.params[name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-20s", name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-20s", name)) + dim.Render(val) + "\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n      " + yellow.Render(m.errMsg) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  s start  esc back") + "\n")

	return b.String()
}

func (m model) viewDemo() string {
	if m.rt == nil || m.disp == nil {
		return ""
	}

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s  %s  %s\n",
		statusIcon, cyan.Render(m.selected), statusText,
		dim.Render("mode "+m.mode),
		dim.Render("theme "+themes[m.themeIdx].name),
		dim.Render(fmt.Sprintf("%.0ffps", m.fps))))
	b.WriteString("\n")

	b.WriteString(m.renderScreen())

	if m.debug {
		gaugeWidth := 24
		filled := clamp(int(m.gaugePos/2+0.5), 0, gaugeWidth)
		b.WriteString(fmt.Sprintf("\n   %s %s%s %s\n",
			dim.Render("overlays"),
			green.Render(strings.Repeat("█", filled)),
			dimmer.Render(strings.Repeat("░", gaugeWidth-filled)),
			white.Render(fmt.Sprintf("%3.0f", m.gaugePos))))

		if len(m.history) > 1 {
			b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("load"), cyan.Render(sparkline(m.history, 24))))
		}
	}

	if m.errMsg != "" {
		b.WriteString("   " + yellow.Render(m.errMsg) + "\n")
	}

	if m.playing == nil {
		b.WriteString("\n" + dim.Render("   hjkl move  w/b hop  x random  i insert  m mode  t theme  d debug  space pause  o options  q quit") + "\n")
	} else {
		b.WriteString("\n" + dim.Render("   space pause  r restart  t theme  d debug  o options  q quit") + "\n")
	}

	return b.String()
}

// renderScreen colors overlay glyphs through the shade palette over the
// dim background text.
func (m model) renderScreen() string {
	rows, cols := m.disp.Viewport()

	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.WriteString("   ")
		var plain strings.Builder
		flush := func() {
			if plain.Len() > 0 {
				b.WriteString(dim.Render(plain.String()))
				plain.Reset()
			}
		}
		for c := 0; c < cols; c++ {
			g := m.disp.GlyphAt(r, c)
			if g == 0 {
				g = ' '
			}
			if ref, ok := m.disp.HLAt(r, c); ok {
				flush()
				b.WriteString(shadeStyle(m.pal, ref).Render(string(g)))
			} else {
				plain.WriteRune(g)
			}
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// RunInteractive runs the full-screen demo until the user quits. A nil
// logger discards runtime diagnostics.
func RunInteractive(logger *log.Logger) error {
	p := tea.NewProgram(NewApp(logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
