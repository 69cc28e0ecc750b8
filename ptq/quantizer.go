package ptq

import "math"
import "strings"

import "github.com/chewxy/math32"
import "github.com/pkg/errors"
import "gorgonia.org/tensor"
import "gorgonia.org/vecf32"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/logging"

// ErrUnsupportedQuantizer is returned for an unknown quantizer name.
var ErrUnsupportedQuantizer = errors.New("unsupported quantizer")

// Quantizer names.
const (
	AbsmaxName           = "abs_max"
	PerChannelAbsmaxName = "channel_wise_abs_max"
	HistName             = "hist"
)

// Quantizer accumulates statistics of sampled tensors and turns them into
// quantization thresholds.
type Quantizer interface {
	Name() string
	Bits() int

	// SampleData observes tensors produced by or belonging to l.
	SampleData(l layer.Layer, tensors []*tensor.Dense)

	// CalThresholds computes the thresholds from everything sampled so far.
	CalThresholds()

	// Thresholds returns the last computed thresholds, nil before CalThresholds.
	Thresholds() []float32

	// Clone returns a quantizer with the same settings and no statistics.
	Clone() Quantizer
}

// NewQuantizer builds a quantizer by name. Bins and percentile apply to hist only.
func NewQuantizer(name string, bits, bins int, percentile float64) (Quantizer, error) {
	if bits < 2 || bits > 16 {
		return nil, errors.Errorf("quantizer bits %d", bits)
	}
	switch strings.ToLower(name) {
	case AbsmaxName, "":
		return NewAbsmax(bits), nil
	case PerChannelAbsmaxName:
		return NewPerChannelAbsmax(bits), nil
	case HistName:
		if bins <= 0 || percentile <= 0 || percentile > 1 {
			return nil, errors.Errorf("hist quantizer: %d bins, percentile %v", bins, percentile)
		}
		return NewHist(bits, bins, percentile), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedQuantizer, "%q", name)
}

func finite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}

// absMax ignores NaN and infinite values.
func absMax(v []float32) (m float32) {
	for _, x := range v {
		if !finite(x) {
			continue
		}
		if a := math32.Abs(x); a > m {
			m = a
		}
	}
	return
}

// Absmax uses the largest absolute value seen as the only threshold.
type Absmax struct {
	bits       int
	max        float32
	thresholds []float32
}

func NewAbsmax(bits int) *Absmax {
	return &Absmax{bits: bits}
}

func (q *Absmax) Name() string { return AbsmaxName }
func (q *Absmax) Bits() int    { return q.bits }

func (q *Absmax) SampleData(_ layer.Layer, tensors []*tensor.Dense) {
	for _, t := range tensors {
		if m := absMax(layer.Floats(t)); m > q.max {
			q.max = m
		}
	}
}

func (q *Absmax) CalThresholds() {
	q.thresholds = []float32{q.max}
}

func (q *Absmax) Thresholds() []float32 {
	return q.thresholds
}

func (q *Absmax) Clone() Quantizer {
	return NewAbsmax(q.bits)
}

// PerChannelAbsmax keeps one absolute maximum per column, that is per output
// channel of a [in, out] weight or per feature of a [batch, features] activation.
// The first sampled tensor fixes the channel count; tensors of another width
// are not sampled.
type PerChannelAbsmax struct {
	bits       int
	max        []float32
	thresholds []float32
}

func NewPerChannelAbsmax(bits int) *PerChannelAbsmax {
	return &PerChannelAbsmax{bits: bits}
}

func (q *PerChannelAbsmax) Name() string { return PerChannelAbsmaxName }
func (q *PerChannelAbsmax) Bits() int    { return q.bits }

func (q *PerChannelAbsmax) SampleData(_ layer.Layer, tensors []*tensor.Dense) {
	for _, t := range tensors {
		rows, cols := layer.Dims(t)
		if q.max == nil {
			q.max = make([]float32, cols)
		}
		if len(q.max) != cols {
			logging.Debug("channel count mismatch, tensor not sampled", logging.Quantization,
				"channels", len(q.max), "cols", cols)
			continue
		}
		data := layer.Floats(t)
		for r := 0; r < rows; r++ {
			for c, x := range data[r*cols : (r+1)*cols] {
				if !finite(x) {
					continue
				}
				if a := math32.Abs(x); a > q.max[c] {
					q.max[c] = a
				}
			}
		}
	}
}

func (q *PerChannelAbsmax) CalThresholds() {
	q.thresholds = append([]float32{}, q.max...)
}

func (q *PerChannelAbsmax) Thresholds() []float32 {
	return q.thresholds
}

func (q *PerChannelAbsmax) Clone() Quantizer {
	return NewPerChannelAbsmax(q.bits)
}

// Hist builds a histogram of absolute values over [0, upper) and picks the
// bin center below which the given fraction of samples lies. The range grows
// by rebinning when a larger value arrives. NaN and infinite values are not
// binned, only counted.
type Hist struct {
	bits       int
	bins       int
	percentile float64
	upper      float32
	hist       []float32
	thresholds []float32
	nonFinite  int
}

func NewHist(bits, bins int, percentile float64) *Hist {
	return &Hist{bits: bits, bins: bins, percentile: percentile}
}

func (q *Hist) Name() string { return HistName }
func (q *Hist) Bits() int    { return q.bits }

func (q *Hist) width() float32 {
	return q.upper / float32(q.bins)
}

func (q *Hist) grow(upper float32) {
	old, oldWidth := q.hist, q.width()
	q.upper = upper
	q.hist = make([]float32, q.bins)
	if old == nil {
		return
	}
	for i, n := range old {
		if n != 0 {
			q.add((float32(i)+0.5)*oldWidth, n)
		}
	}
}

func (q *Hist) add(x, n float32) {
	i := int(x / q.width())
	if i >= q.bins {
		i = q.bins - 1
	}
	q.hist[i] += n
}

func (q *Hist) SampleData(_ layer.Layer, tensors []*tensor.Dense) {
	for _, t := range tensors {
		data := layer.Floats(t)
		m := absMax(data)
		if m == 0 && q.hist == nil {
			continue
		}
		if m > q.upper || q.hist == nil {
			q.grow(m)
		}
		for _, x := range data {
			if !finite(x) {
				q.nonFinite++
				continue
			}
			q.add(math32.Abs(x), 1)
		}
	}
}

// NonFinite returns the number of NaN and infinite values seen.
func (q *Hist) NonFinite() int {
	return q.nonFinite
}

func (q *Hist) CalThresholds() {
	if q.hist == nil {
		q.thresholds = []float32{0}
		return
	}
	total := float64(vecf32.Sum(q.hist))
	if total == 0 {
		q.thresholds = []float32{0}
		return
	}
	var cum float64
	for i, n := range q.hist {
		cum += float64(n)
		if cum/total >= q.percentile || i == q.bins-1 {
			q.thresholds = []float32{(float32(i) + 0.5) * q.width()}
			return
		}
	}
}

func (q *Hist) Thresholds() []float32 {
	return q.thresholds
}

func (q *Hist) Clone() Quantizer {
	return NewHist(q.bits, q.bins, q.percentile)
}

// Scale maps a threshold to the quantization step of b bits.
func Scale(threshold float32, bits int) float32 {
	levels := float32(math.Pow(2, float64(bits-1)) - 1)
	return threshold / levels
}
