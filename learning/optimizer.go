package learning

import "math"

import "github.com/chewxy/math32"

import "github.com/neurlang/gantrainer/param"

// SGD is stochastic gradient descent with optional momentum.
type SGD struct {
	h        HyperParameters
	velocity map[*param.Parameter][]float32
}

func NewSGD(h HyperParameters) *SGD {
	return &SGD{h: h, velocity: make(map[*param.Parameter][]float32)}
}

func (o *SGD) Step(params []*param.Parameter) {
	lr := float32(o.h.LearningRate)
	mu := float32(o.h.Momentum)
	wd := float32(o.h.WeightDecay)
	for _, p := range params {
		if p.Static {
			continue
		}
		v := o.velocity[p]
		if v == nil && mu != 0 {
			v = make([]float32, p.Len())
			o.velocity[p] = v
		}
		for i, g := range p.Grad {
			g += wd * p.Value[i]
			if v != nil {
				v[i] = mu*v[i] + g
				g = v[i]
			}
			p.Value[i] -= lr * g
		}
	}
}

// Adam keeps per-parameter first and second moment estimates.
type Adam struct {
	h    HyperParameters
	t    int
	m, v map[*param.Parameter][]float32
}

func NewAdam(h HyperParameters) *Adam {
	return &Adam{
		h: h,
		m: make(map[*param.Parameter][]float32),
		v: make(map[*param.Parameter][]float32),
	}
}

func (o *Adam) Step(params []*param.Parameter) {
	o.t++
	b1 := float32(o.h.Beta1)
	b2 := float32(o.h.Beta2)
	eps := float32(o.h.Epsilon)
	wd := float32(o.h.WeightDecay)
	lr := float32(o.h.LearningRate)
	bias1 := float32(1 - math.Pow(o.h.Beta1, float64(o.t)))
	bias2 := float32(1 - math.Pow(o.h.Beta2, float64(o.t)))

	for _, p := range params {
		if p.Static {
			continue
		}
		m := o.m[p]
		if m == nil {
			m = make([]float32, p.Len())
			o.m[p] = m
		}
		v := o.v[p]
		if v == nil {
			v = make([]float32, p.Len())
			o.v[p] = v
		}
		for i, g := range p.Grad {
			g += wd * p.Value[i]
			m[i] = b1*m[i] + (1-b1)*g
			v[i] = b2*v[i] + (1-b2)*g*g
			mHat := m[i] / bias1
			vHat := v[i] / bias2
			p.Value[i] -= lr * mHat / (math32.Sqrt(vHat) + eps)
		}
	}
}
