package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xlemi/livetuner/internal/engine"
	"github.com/0xlemi/livetuner/internal/pitch"
)

type fakeTuner struct {
	reading engine.Reading
	wave    []float32
	mode    pitch.Mode
	ref     float64
	filter  bool
}

func newFakeTuner() *fakeTuner {
	return &fakeTuner{
		reading: engine.Reading{Note: pitch.NoteInfo{Name: pitch.NoPitch}},
		mode:    pitch.Auto{},
		ref:     440,
		filter:  true,
	}
}

func (f *fakeTuner) Latest() engine.Reading { return f.reading }
func (f *fakeTuner) Waveform(dst []float32) []float32 {
	return append(dst[:0], f.wave...)
}
func (f *fakeTuner) Mode() pitch.Mode { return f.mode }
func (f *fakeTuner) SetMode(m pitch.Mode) { f.mode = m }
func (f *fakeTuner) ReferencePitch() float64 { return f.ref }
func (f *fakeTuner) FilterEnabled() bool { return f.filter }
func (f *fakeTuner) SetFilterEnabled(on bool) {
	f.filter = on
}

func (f *fakeTuner) SetReferencePitch(hz float64) error {
	if hz <= 0 {
		return errors.New("bad reference")
	}
	f.ref = hz
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestTickPullsLatestReading(t *testing.T) {
	tuner := newFakeTuner()
	m := NewModel(tuner)
	assert.Contains(t, m.View(), "Listening for audio...")

	tuner.reading = engine.Reading{
		Frequency: 441.5,
		Note:      pitch.MapAuto(441.5, 440),
	}
	tuner.wave = []float32{0.1, -0.5, 0.25, 0.5}

	next, cmd := m.Update(TickMsg{})
	assert.NotNil(t, cmd)
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "A4")
	assert.Contains(t, view, "441.50 Hz")
	assert.Contains(t, view, "+5.9")
	assert.Contains(t, view, "Level:")
}

func TestViewManualSilence(t *testing.T) {
	tuner := newFakeTuner()
	tuner.mode = pitch.Manual{Target: 4}
	tuner.reading = engine.Reading{Note: pitch.MapManual(0, 4, 440)}
	m := update(t, NewModel(tuner), TickMsg{})
	assert.Contains(t, m.View(), "Listening for E...")
	assert.Contains(t, m.View(), "manual E")
}

func TestViewSharpNote(t *testing.T) {
	tuner := newFakeTuner()
	tuner.reading = engine.Reading{Frequency: 466.16, Note: pitch.MapAuto(466.16, 440)}
	m := update(t, NewModel(tuner), TickMsg{})
	view := m.View()
	assert.Contains(t, view, "A")
	assert.Contains(t, view, "#4")
}

func TestModeKeys(t *testing.T) {
	tuner := newFakeTuner()
	tuner.reading = engine.Reading{Frequency: 330, Note: pitch.MapAuto(330, 440)}
	m := update(t, NewModel(tuner), TickMsg{})

	m = update(t, m, key("m"))
	assert.Equal(t, pitch.Manual{Target: 4}, tuner.mode)

	m = update(t, m, key("right"))
	assert.Equal(t, pitch.Manual{Target: 5}, tuner.mode)
	m = update(t, m, key("left"))
	m = update(t, m, key("left"))
	assert.Equal(t, pitch.Manual{Target: 3}, tuner.mode)

	m = update(t, m, key("m"))
	assert.Equal(t, pitch.Auto{}, tuner.mode)

	// Arrows do nothing in auto mode.
	update(t, m, key("right"))
	assert.Equal(t, pitch.Auto{}, tuner.mode)
}

func TestManualDefaultsToA(t *testing.T) {
	tuner := newFakeTuner()
	m := update(t, NewModel(tuner), key("m"))
	assert.Equal(t, pitch.Manual{Target: 9}, tuner.mode)
	assert.Contains(t, m.View(), "mode: manual A")
}

func TestReferenceKeysStayInRange(t *testing.T) {
	tuner := newFakeTuner()
	m := NewModel(tuner)

	m = update(t, m, key("+"))
	assert.Equal(t, 441.0, tuner.ref)
	m = update(t, m, key("-"))
	m = update(t, m, key("-"))
	assert.Equal(t, 439.0, tuner.ref)

	tuner.ref = maxReference
	update(t, m, key("+"))
	assert.Equal(t, maxReference, tuner.ref)

	tuner.ref = minReference
	m = update(t, m, key("-"))
	assert.Equal(t, minReference, tuner.ref)
	assert.Contains(t, m.View(), "A4 = 415 Hz")
}

func TestFilterToggle(t *testing.T) {
	tuner := newFakeTuner()
	m := update(t, NewModel(tuner), key("f"))
	assert.False(t, tuner.filter)
	assert.Contains(t, m.View(), "noise filter: off")

	update(t, m, key("f"))
	assert.True(t, tuner.filter)
}

func TestQuit(t *testing.T) {
	_, cmd := NewModel(newFakeTuner()).Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderNeedle(t *testing.T) {
	center := renderNeedle(0)
	assert.Contains(t, center, "▲")
	assert.NotContains(t, center, "┼")

	flat := renderNeedle(-80)
	assert.True(t, strings.Index(flat, "▲") < strings.Index(flat, "┼"))

	sharp := renderNeedle(30)
	assert.True(t, strings.Index(sharp, "▲") > strings.Index(sharp, "┼"))
}

func TestRenderWave(t *testing.T) {
	assert.Empty(t, renderWave(nil, 10))
	assert.Equal(t, "▁▁", renderWave([]float32{0, 0, 0, 0}, 2))

	got := []rune(renderWave([]float32{0.1, -1, 0.5, 0.5}, 4))
	require.Len(t, got, 4)
	assert.Equal(t, '█', got[1])
	assert.Equal(t, '▁', got[0])
}
