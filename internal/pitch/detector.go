package pitch

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MIDI numbering: A4 is note 69. The playable range is the piano keyboard.
const (
	A4NoteNumber = 69
	LowestNote   = 21  // A0
	HighestNote  = 108 // C8

	// NoPitch is the note name reported when no pitch was detected.
	NoPitch = "--"
)

var ErrUnknownNote = errors.New("unknown note name")

// All note names in chromatic order
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchClass is a semitone index within an octave, C=0 .. B=11.
type PitchClass int

// Valid reports whether p lies in [0,11].
func (p PitchClass) Valid() bool { return p >= 0 && p < 12 }

func (p PitchClass) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PitchClass(%d)", int(p))
	}
	return noteNames[p]
}

// ParsePitchClass accepts a natural note letter with an optional '#' or 'b',
// e.g. "A", "c#", "Bb".
func ParsePitchClass(s string) (PitchClass, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, s)
	}
	naturals := map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
	base, ok := naturals[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, s)
	}
	if len(s) == 2 {
		switch s[1] {
		case '#':
			base++
		case 'b':
			base--
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownNote, s)
		}
	}
	return PitchClass((base + 12) % 12), nil
}

// NoteInfo describes a frequency relative to the equal-tempered scale.
type NoteInfo struct {
	Name      string  // e.g., "A", "A#", or NoPitch
	Octave    int     // e.g., 4 for middle C (C4); meaningful only if HasOctave
	HasOctave bool    // false for sentinel readings
	Cents     float64 // deviation from the named note
}

// String renders the note as "A4", "A" (no octave) or "--".
func (n NoteInfo) String() string {
	if !n.HasOctave {
		return n.Name
	}
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// Detected reports whether the note carries a real pitch.
func (n NoteInfo) Detected() bool { return n.HasOctave }

// NoteNumber returns the fractional MIDI note number of freq.
func NoteNumber(freq, ref float64) float64 {
	return 12*math.Log2(freq/ref) + A4NoteNumber
}

// IdealFrequency returns the equal-tempered frequency of note n.
func IdealFrequency(n int, ref float64) float64 {
	return ref * math.Exp2(float64(n-A4NoteNumber)/12)
}

// Cents returns the deviation of freq from note n in cents.
func Cents(freq float64, n int, ref float64) float64 {
	return 1200 * math.Log2(freq/IdealFrequency(n, ref))
}

// noteInfo names MIDI note n and measures freq against it.
func noteInfo(n int, freq, ref float64) NoteInfo {
	return NoteInfo{
		Name:      noteNames[n%12],
		Octave:    n/12 - 1,
		HasOctave: true,
		Cents:     Cents(freq, n, ref),
	}
}

func hasPitch(freq float64) bool {
	return freq > 0 && !math.IsInf(freq, 0)
}

// MapAuto maps freq to the nearest note. Notes outside the piano range are
// clamped to A0 or C8 and the cents are measured against the clamped note.
func MapAuto(freq, ref float64) NoteInfo {
	if !hasPitch(freq) || ref <= 0 {
		return NoteInfo{Name: NoPitch}
	}
	n := int(math.Round(NoteNumber(freq, ref)))
	n = max(LowestNote, min(HighestNote, n))
	return noteInfo(n, freq, ref)
}

// MapManual measures freq against the instance of target closest in pitch,
// searching the octave bucket around the rough estimate and its neighbours.
func MapManual(freq float64, target PitchClass, ref float64) NoteInfo {
	if !target.Valid() {
		return MapAuto(freq, ref)
	}
	if !hasPitch(freq) || ref <= 0 {
		return NoteInfo{Name: noteNames[target]}
	}

	rough := int(math.Round(NoteNumber(freq, ref) / 12))
	best, bestDist := -1, math.Inf(1)
	for o := rough - 1; o <= rough+1; o++ {
		n := o*12 + int(target)
		if n < LowestNote || n > HighestNote {
			continue
		}
		dist := math.Abs(math.Log2(freq / IdealFrequency(n, ref)))
		if dist < bestDist {
			best, bestDist = n, dist
		}
	}
	if best < 0 {
		best = edgeNote(target, rough*12 < LowestNote)
	}
	return noteInfo(best, freq, ref)
}

// edgeNote returns the lowest or highest playable note of pitch class p.
func edgeNote(p PitchClass, low bool) int {
	if low {
		n := LowestNote
		for n%12 != int(p) {
			n++
		}
		return n
	}
	n := HighestNote
	for n%12 != int(p) {
		n--
	}
	return n
}
