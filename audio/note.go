package audio

import "math"

// NoteFrequencies contains precomputed frequencies for MIDI notes 0-127
// A4 (note 69) = 440Hz, equal temperament
var NoteFrequencies [128]float64

func init() {
	for i := range NoteFrequencies {
		NoteFrequencies[i] = 440.0 * math.Exp2((float64(i)-69.0)/12.0)
	}
}

// NoteFreq returns frequency in Hz for MIDI note number
func NoteFreq(midi int) float64 {
	if midi < 0 || midi >= 128 {
		return 0
	}
	return NoteFrequencies[midi]
}

// Scale names a harmonic quantization grid
type Scale int

const (
	ScaleChromatic Scale = iota
	ScaleMajor
	ScaleMinor
	ScalePentMajor
	ScalePentMinor
	ScaleWholeTone
)

// scaleIntervals maps each scale to its semitone degrees within one octave
var scaleIntervals = map[Scale][]int{
	ScaleChromatic: {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	ScaleMajor:     {0, 2, 4, 5, 7, 9, 11},
	ScaleMinor:     {0, 2, 3, 5, 7, 8, 10},
	ScalePentMajor: {0, 2, 4, 7, 9},
	ScalePentMinor: {0, 3, 5, 7, 10},
	ScaleWholeTone: {0, 2, 4, 6, 8, 10},
}

// ParseScale resolves a config name to a scale, defaulting to pentatonic
// major for unknown names
func ParseScale(name string) Scale {
	switch name {
	case "chromatic":
		return ScaleChromatic
	case "major":
		return ScaleMajor
	case "minor":
		return ScaleMinor
	case "pent-major", "pentatonic":
		return ScalePentMajor
	case "pent-minor":
		return ScalePentMinor
	case "whole-tone":
		return ScaleWholeTone
	}
	return ScalePentMajor
}

func (s Scale) String() string {
	switch s {
	case ScaleChromatic:
		return "chromatic"
	case ScaleMajor:
		return "major"
	case ScaleMinor:
		return "minor"
	case ScalePentMajor:
		return "pent-major"
	case ScalePentMinor:
		return "pent-minor"
	case ScaleWholeTone:
		return "whole-tone"
	}
	return "unknown"
}

// MusicSettings selects the harmonic grid triggers are quantized onto
type MusicSettings struct {
	Root  int // MIDI note of the scale root
	Scale Scale
}

// DefaultMusic returns A2 pentatonic major
func DefaultMusic() MusicSettings {
	return MusicSettings{Root: 45, Scale: ScalePentMajor}
}

// QuantizeFreq snaps a raw frequency onto the nearest degree of the given
// scale rooted at the given MIDI note. Pure function, no engine state.
func QuantizeFreq(freq float64, m MusicSettings) float64 {
	if freq <= 0 {
		return NoteFreq(m.Root)
	}

	midi := 69.0 + 12.0*math.Log2(freq/440.0)
	rel := midi - float64(m.Root)
	octave := math.Floor(rel / 12.0)
	within := rel - octave*12.0

	degrees := scaleIntervals[m.Scale]
	best := float64(degrees[0])
	bestDist := math.Abs(within - best)
	for _, d := range degrees {
		for _, cand := range []float64{float64(d), float64(d) + 12} {
			if dist := math.Abs(within - cand); dist < bestDist {
				best, bestDist = cand, dist
			}
		}
	}

	snapped := float64(m.Root) + octave*12.0 + best
	return 440.0 * math.Exp2((snapped-69.0)/12.0)
}
