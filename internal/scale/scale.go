package scale

// Table is an immutable ordered sequence of pitches with display names,
// indexed by the instrument's pitch index.
type Table struct {
	freqs []float64
	names []string
}

// New builds a table from parallel frequency/name slices. The shorter of
// the two slices bounds the table.
func New(freqs []float64, names []string) Table {
	n := len(freqs)
	if len(names) < n {
		n = len(names)
	}
	t := Table{
		freqs: make([]float64, n),
		names: make([]string, n),
	}
	copy(t.freqs, freqs)
	copy(t.names, names)
	return t
}

// C4Major returns the default one-octave C major scale, C4 through C5.
func C4Major() Table {
	return Table{
		freqs: []float64{261.63, 293.66, 329.63, 349.23, 392.00, 440.00, 493.88, 523.25},
		names: []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"},
	}
}

func (t Table) Len() int { return len(t.freqs) }

func (t Table) Frequency(i int) float64 { return t.freqs[i] }

func (t Table) Name(i int) string { return t.names[i] }

// Clamp maps an arbitrary index into the valid range [0, Len-1].
func (t Table) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(t.freqs) {
		return len(t.freqs) - 1
	}
	return i
}
