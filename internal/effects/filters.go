package effects

// Coefficients of the console's analog output stage at 48 kHz.
const (
	HighPassK1 = 0.996039
	HighPassK2 = 0.999835
	LowPassK   = 0.815686
)

// HighPass is a one-pole high-pass: out = prevOut*K + in - prevIn.
type HighPass struct {
	K       float64
	prevIn  float64
	prevOut float64
}

func NewHighPass(k float64) *HighPass {
	return &HighPass{K: k}
}

func (f *HighPass) Process(x float64) float64 {
	out := f.prevOut*f.K + x - f.prevIn
	f.prevIn = x
	f.prevOut = out
	return out
}

func (f *HighPass) Reset() {
	f.prevIn = 0
	f.prevOut = 0
}

// LowPass is the fixed one-pole stage: out = (in - prevOut) * LowPassK.
type LowPass struct {
	prevOut float64
}

func NewLowPass() *LowPass {
	return &LowPass{}
}

func (f *LowPass) Process(x float64) float64 {
	out := (x - f.prevOut) * LowPassK
	f.prevOut = out
	return out
}

func (f *LowPass) Reset() {
	f.prevOut = 0
}

// NewOutputChain returns the post-mix cascade: two high-pass stages removing
// DC followed by the low-pass stage. Every call returns fresh filter state.
func NewOutputChain() *Chain {
	return NewChain(
		NewHighPass(HighPassK1),
		NewHighPass(HighPassK2),
		NewLowPass(),
	)
}
