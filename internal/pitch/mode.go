package pitch

// Mode selects how frequencies are named: Auto picks the nearest note,
// Manual measures against a fixed pitch class. The set is closed.
type Mode interface {
	// Map turns a frequency into a note under this mode.
	Map(freq, ref float64) NoteInfo
	String() string
	isMode()
}

// Auto names the nearest equal-tempered note.
type Auto struct{}

func (Auto) Map(freq, ref float64) NoteInfo { return MapAuto(freq, ref) }
func (Auto) String() string                  { return "auto" }
func (Auto) isMode()                         {}

// Manual reports deviation against Target regardless of the detected note.
type Manual struct {
	Target PitchClass
}

func (m Manual) Map(freq, ref float64) NoteInfo { return MapManual(freq, m.Target, ref) }
func (m Manual) String() string                  { return "manual " + m.Target.String() }
func (Manual) isMode()                           {}
