package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"snaptext/pipeline"
	"snaptext/preview"
)

type previewMsg struct {
	uri string
	img image.Image
	err error
}
type clearNoticeMsg struct{ seq int }
type tickMsg time.Time

const (
	noticeTTL    = 3 * time.Second
	headerRows   = 2
	footerRows   = 2
	minPanelCols = 16
	maxPanelCols = 80
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	offStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("239")).Padding(1, 2)
)

type tuiModel struct {
	p       *pipeline.Pipeline
	engines string

	state         pipeline.State
	frame         int
	width, height int

	img    image.Image
	imgURI string
	imgErr error

	notice    *pipeline.Notice
	noticeSeq int

	cancelCapture context.CancelFunc
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

func newTUIModel(p *pipeline.Pipeline, ocrName, speechName string) tuiModel {
	return tuiModel{
		p:       p,
		engines: fmt.Sprintf("[%s | %s]", ocrName, speechName),
		state:   p.State(),
	}
}

func NewTUIProgram(p *pipeline.Pipeline, ocrName, speechName string) *tea.Program {
	return tea.NewProgram(newTUIModel(p, ocrName, speechName), tea.WithAltScreen())
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// libraryCommand hands the terminal to the library picker. Its output goes
// straight to the tty, so the stdio setters are no-ops.
type libraryCommand struct{ p *pipeline.Pipeline }

func (c libraryCommand) Run() error         { return c.p.SelectFromLibrary(context.Background()) }
func (libraryCommand) SetStdin(io.Reader)  {}
func (libraryCommand) SetStdout(io.Writer) {}
func (libraryCommand) SetStderr(io.Writer) {}

func loadPreview(uri string) tea.Cmd {
	return func() tea.Msg {
		img, err := preview.Load(uri)
		return previewMsg{uri: uri, img: img, err: err}
	}
}

// panelCols is the preview panel width, which is also the pipeline viewport
// width: one pixel per column, two per row.
func panelCols(width int) int {
	cols := width * 2 / 5
	if cols < minPanelCols {
		cols = minPanelCols
	}
	if cols > maxPanelCols {
		cols = maxPanelCols
	}
	return cols
}

// previewSize fits the image to cols columns and at most maxRows rows,
// narrowing it when it would be too tall.
func previewSize(ref *pipeline.ImageRef, cols, maxRows int) (int, int) {
	rows := pipeline.Rows(pipeline.DisplayHeight(ref, cols), 2)
	if rows == 0 {
		return 0, 0
	}
	if maxRows > 0 && rows > maxRows {
		cols = cols * maxRows / rows
		rows = maxRows
	}
	return cols, rows
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		p, cols := m.p, panelCols(msg.Width)
		return m, func() tea.Msg {
			p.SetViewportWidth(cols)
			return nil
		}

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case StateMsg:
		m.state = msg.State
		if m.state.Image == nil {
			m.img, m.imgURI, m.imgErr = nil, "", nil
			return m, nil
		}
		if uri := m.state.Image.URI; uri != m.imgURI {
			m.img, m.imgURI, m.imgErr = nil, uri, nil
			return m, loadPreview(uri)
		}

	case previewMsg:
		if msg.uri == m.imgURI {
			m.img, m.imgErr = msg.img, msg.err
		}

	case NoticeMsg:
		n := msg.Notice
		m.notice = &n
		m.noticeSeq++
		seq := m.noticeSeq
		return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.p
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancelCapture != nil {
			m.cancelCapture()
		}
		return m, tea.Quit
	case "esc":
		if m.cancelCapture != nil {
			m.cancelCapture()
			m.cancelCapture = nil
		}
	case "o":
		return m, tea.Exec(libraryCommand{p: p}, nil)
	case "c":
		ctx, cancel := context.WithCancel(context.Background())
		m.cancelCapture = cancel
		return m, func() tea.Msg {
			defer cancel()
			p.CaptureFromCamera(ctx)
			return nil
		}
	case "y":
		if m.state.CanCopy() {
			return m, func() tea.Msg {
				p.Copy()
				return nil
			}
		}
	case "s":
		if m.state.CanSpeak() {
			return m, func() tea.Msg {
				p.Speak(context.Background())
				return nil
			}
		}
	case "x":
		return m, func() tea.Msg {
			p.SetImage(nil)
			return nil
		}
	}
	return m, nil
}

// statusLines describes recognition and playback below the text.
func (m tuiModel) statusLines() []string {
	var lines []string
	s := m.state
	switch {
	case s.Recognizing:
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		lines = append(lines, warnStyle.Render(spin+" Recognizing…"))
	case s.Image == nil:
		lines = append(lines, dimStyle.Render("Select an image to begin"))
	case !s.Text.HasContent():
		lines = append(lines, warnStyle.Render("No text recognized"))
	}
	if s.Playback == pipeline.Playing {
		lines = append(lines, okStyle.Render("♪ Speaking…"))
	}
	if s.Err != nil {
		lines = append(lines, errStyle.Render("✗ "+s.Err.Error()))
	}
	if m.notice != nil {
		st := okStyle
		if m.notice.Error {
			st = errStyle
		}
		lines = append(lines, st.Render(m.notice.Title+": "+m.notice.Message))
	}
	return lines
}

func helpItem(key, label string, enabled bool) string {
	if !enabled {
		return offStyle.Render(key + " " + label)
	}
	return helpKeyStyle.Render(key) + helpStyle.Render(" "+label)
}

func (m tuiModel) helpLine() string {
	items := []string{
		helpItem("o", "open", true),
		helpItem("c", "camera", true),
		helpItem("y", "copy", m.state.CanCopy()),
		helpItem("s", "speak", m.state.CanSpeak()),
		helpItem("x", "clear", m.state.Image != nil),
		helpItem("q", "quit", true),
	}
	return strings.Join(items, "  ")
}

func (m tuiModel) previewPanel(cols, maxRows int) string {
	if m.state.Image == nil {
		return boxStyle.Width(cols - 2).Render(dimStyle.Render("No image\n\nPress o to open a photo\nor c to take one"))
	}
	if m.imgErr != nil {
		return dimStyle.Render("Preview unavailable")
	}
	if m.img == nil {
		return dimStyle.Render("Loading preview…")
	}
	w, h := previewSize(m.state.Image, m.state.ViewportWidth, maxRows)
	if w == 0 {
		// natural size unknown, use the decoded bounds instead
		b := m.img.Bounds()
		ref := &pipeline.ImageRef{Width: b.Dx(), Height: b.Dy()}
		w, h = previewSize(ref, cols, maxRows)
	}
	return preview.Render(m.img, w, h)
}

func (m tuiModel) textPanel(width int) string {
	var b strings.Builder
	wrapWidth := width - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}
	if m.state.Text.HasContent() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Recognized text (%d lines)", m.state.Text.Len())) + "\n\n")
		for _, line := range m.state.Text.Lines() {
			for _, l := range wrapText(line, wrapWidth) {
				b.WriteString(textStyle.Render(l) + "\n")
			}
		}
		b.WriteString("\n")
	}
	for _, line := range m.statusLines() {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	cols := panelCols(m.width)
	bodyRows := m.height - headerRows - footerRows
	if bodyRows < 1 {
		bodyRows = 1
	}

	header := titleStyle.Render("Text Recognition") + "  " + dimStyle.Render(m.engines)

	left := lipgloss.NewStyle().
		Width(cols).
		Height(bodyRows).
		MaxHeight(bodyRows).
		Render(m.previewPanel(cols, bodyRows))

	textWidth := m.width - cols - 1
	if textWidth < 20 {
		textWidth = 20
	}
	right := lipgloss.NewStyle().
		Width(textWidth).
		Height(bodyRows).
		MaxHeight(bodyRows).
		PaddingLeft(1).
		Render(m.textPanel(textWidth))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	footer := m.helpLine() + "  " + dimStyle.Render("snaptext "+version)
	return header + "\n\n" + body + "\n\n" + footer
}

// wrapText breaks text into lines of at most width terminal cells,
// preferring spaces and splitting unbroken runs such as CJK text.
func wrapText(text string, width int) []string {
	if text == "" {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	lines := strings.Split(ansi.Wrap(text, width, ""), "\n")
	out := lines[:0]
	for i, l := range lines {
		l = strings.TrimRight(l, " ")
		if i > 0 {
			l = strings.TrimLeft(l, " ")
		}
		if l == "" && i > 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}
