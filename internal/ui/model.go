package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xlemi/livetuner/internal/audio"
	"github.com/0xlemi/livetuner/internal/engine"
	"github.com/0xlemi/livetuner/internal/pitch"
)

const (
	// How often the view polls the engine for a new reading
	refreshInterval = 50 * time.Millisecond

	// Width of the cents needle and the waveform strip, in cells
	meterWidth = 41

	// Cents within which a note counts as in tune
	inTuneCents = 5.0

	// Reference pitch bounds reachable from the keyboard
	minReference = engine.MinRecommendedReference
	maxReference = engine.MaxRecommendedReference
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	inTuneStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00"))
	offStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))
	waveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	// Note colors
	noteColors = map[string]string{
		"C": "#E8D6B0", // Beige
		"D": "#A020F0", // Purple
		"E": "#FFFF00", // Yellow
		"F": "#FFA500", // Orange
		"G": "#00FF00", // Green
		"A": "#FF0000", // Red
		"B": "#0000FF", // Blue
	}

	sparkLevels = []rune("▁▂▃▄▅▆▇█")
)

// Tuner is the engine surface the display reads from and controls.
type Tuner interface {
	Latest() engine.Reading
	Waveform(dst []float32) []float32
	Mode() pitch.Mode
	SetMode(pitch.Mode)
	ReferencePitch() float64
	SetReferencePitch(hz float64) error
	FilterEnabled() bool
	SetFilterEnabled(on bool)
}

// Returns a style for a natural note tile
func getNoteStyle(noteName string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(noteColors[noteName])).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(2, 4).
		MarginBottom(1)
}

// Get the next note in the scale (for sharp note colors)
func getNextNote(note string) string {
	switch note {
	case "C":
		return "D"
	case "D":
		return "E"
	case "E":
		return "F"
	case "F":
		return "G"
	case "G":
		return "A"
	case "A":
		return "B"
	case "B":
		return "C"
	default:
		return "C"
	}
}

// Model represents the UI state
type Model struct {
	tuner   Tuner
	reading engine.Reading
	wave    []float32
	status  string
	width   int
	height  int
}

// NewModel creates a new UI model
func NewModel(tuner Tuner) Model {
	return Model{
		tuner:   tuner,
		reading: tuner.Latest(),
	}
}

// TickMsg represents a timer tick
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.reading = m.tuner.Latest()
		m.wave = m.tuner.Waveform(m.wave)
		return m, tick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "m":
		switch m.tuner.Mode().(type) {
		case pitch.Manual:
			m.tuner.SetMode(pitch.Auto{})
		default:
			m.tuner.SetMode(pitch.Manual{Target: m.defaultTarget()})
		}
		m.status = "mode: " + m.tuner.Mode().String()

	case "left", "h", "right", "l":
		man, ok := m.tuner.Mode().(pitch.Manual)
		if !ok {
			break
		}
		step := 1
		if k := msg.String(); k == "left" || k == "h" {
			step = 11
		}
		man.Target = (man.Target + pitch.PitchClass(step)) % 12
		m.tuner.SetMode(man)
		m.status = "mode: " + man.String()

	case "+", "=", "-", "_":
		ref := m.tuner.ReferencePitch()
		if k := msg.String(); k == "+" || k == "=" {
			ref++
		} else {
			ref--
		}
		ref = math.Max(minReference, math.Min(maxReference, math.Round(ref)))
		if err := m.tuner.SetReferencePitch(ref); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("reference: A4 = %.0f Hz", ref)
		}

	case "f":
		on := !m.tuner.FilterEnabled()
		m.tuner.SetFilterEnabled(on)
		m.status = "noise filter: " + onOff(on)
	}
	return m, nil
}

// defaultTarget picks the pitch class of the current reading, or A.
func (m Model) defaultTarget() pitch.PitchClass {
	if m.reading.Note.Detected() {
		if pc, err := pitch.ParsePitchClass(m.reading.Note.Name); err == nil {
			return pc
		}
	}
	return 9
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LiveTuner - Chromatic Tuner"))
	b.WriteString("\n")

	note := m.reading.Note
	if note.Detected() {
		b.WriteString(renderNote(note))
		b.WriteString("\n")
		info := fmt.Sprintf("Frequency: %.2f Hz | Cents: %+.1f", m.reading.Frequency, note.Cents)
		b.WriteString(infoStyle.Render(info))
		b.WriteString("\n")
		b.WriteString(renderNeedle(note.Cents))
	} else {
		label := "Listening for audio..."
		if note.Name != pitch.NoPitch && note.Name != "" {
			label = fmt.Sprintf("Listening for %s...", note.Name)
		}
		b.WriteString(infoStyle.Render(label))
	}
	b.WriteString("\n\n")

	if len(m.wave) > 0 {
		b.WriteString(waveStyle.Render(renderWave(m.wave, meterWidth)))
		b.WriteString("\n")
		_, db := audio.Level(m.wave)
		b.WriteString(infoStyle.Render(fmt.Sprintf("Level: %.1f dB", db)))
		b.WriteString("\n")
	}

	settings := fmt.Sprintf("Mode: %s | A4 = %.0f Hz | Filter: %s",
		m.tuner.Mode(), m.tuner.ReferencePitch(), onOff(m.tuner.FilterEnabled()))
	b.WriteString(infoStyle.Render(settings))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(infoStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render("m: auto/manual  ←/→: target  +/-: reference  f: filter  q: quit"))
	return b.String()
}

// renderNote draws the note tile; sharps get a split tile in the colors of
// the two neighbouring naturals.
func renderNote(note pitch.NoteInfo) string {
	noteText := note.String()
	if !strings.HasSuffix(note.Name, "#") {
		return getNoteStyle(note.Name).Render(noteText)
	}

	baseNote := note.Name[:1]
	nextNote := getNextNote(baseNote)

	half := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		BorderTop(true).
		BorderBottom(true).
		PaddingTop(2).
		PaddingBottom(2)

	leftStyle := half.
		Background(lipgloss.Color(noteColors[baseNote])).
		BorderLeft(true).
		BorderRight(false).
		PaddingLeft(2).
		PaddingRight(1)

	rightStyle := half.
		Background(lipgloss.Color(noteColors[nextNote])).
		BorderLeft(false).
		BorderRight(true).
		PaddingLeft(1).
		PaddingRight(2)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftStyle.Render(baseNote), rightStyle.Render(noteText[1:]))
}

// renderNeedle draws a -50..+50 cents scale with a marker at cents.
func renderNeedle(cents float64) string {
	clamped := math.Max(-50, math.Min(50, cents))
	pos := int(math.Round((clamped + 50) / 100 * float64(meterWidth-1)))

	cells := []rune(strings.Repeat("─", meterWidth))
	cells[meterWidth/2] = '┼'
	cells[pos] = '▲'

	style := offStyle
	if math.Abs(cents) <= inTuneCents {
		style = inTuneStyle
	}
	return "♭ " + style.Render(string(cells)) + " ♯"
}

// renderWave downsamples samples into a sparkline of the given width,
// one cell per bucket showing its peak magnitude.
func renderWave(samples []float32, width int) string {
	if len(samples) == 0 || width <= 0 {
		return ""
	}
	width = min(width, len(samples))
	bucket := len(samples) / width

	peaks := make([]float64, width)
	loudest := 0.0
	for i := range peaks {
		for _, s := range samples[i*bucket : (i+1)*bucket] {
			peaks[i] = math.Max(peaks[i], math.Abs(float64(s)))
		}
		loudest = math.Max(loudest, peaks[i])
	}

	out := make([]rune, width)
	for i, p := range peaks {
		level := 0
		if loudest > 0 && !math.IsNaN(p) {
			level = min(int(p/loudest*float64(len(sparkLevels)-1)), len(sparkLevels)-1)
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}
