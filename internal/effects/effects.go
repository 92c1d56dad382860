package effects

// Effector processes mono audio one sample at a time.
type Effector interface {
	Process(s float32) float32
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(s float32) float32 {
	for _, e := range c.effects {
		s = e.Process(s)
	}
	return s
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}
