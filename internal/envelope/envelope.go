package envelope

// Decay is a repeating swell-and-decay envelope: the value falls linearly
// from a fixed peak toward zero, then snaps back to the peak on the advance
// after it reaches zero. It is advanced once per rendered buffer, not per
// sample, and is owned entirely by the render context.
type Decay struct {
	peak  float64
	value float64
}

// NewDecay returns an envelope starting at its peak.
func NewDecay(peak float64) Decay {
	return Decay{peak: peak, value: peak}
}

func (d *Decay) Value() float64 { return d.value }

func (d *Decay) Peak() float64 { return d.peak }

// Advance applies one linear decrement, or resets to the peak if the value
// has already decayed to zero.
func (d *Decay) Advance(step float64) {
	if d.value > 0 {
		d.value -= step
		if d.value < 0 {
			d.value = 0
		}
		return
	}
	d.value = d.peak
}

// Reset snaps the value back to the peak.
func (d *Decay) Reset() {
	d.value = d.peak
}
