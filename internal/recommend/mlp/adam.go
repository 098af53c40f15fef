// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package mlp

import "math"

// Adam hyperparameters.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

// adam holds the first and second moment estimates for every parameter.
type adam struct {
	lr   float64
	step int
	m    *gradients
	v    *gradients
}

func newAdam(n *Network, lr float64) *adam {
	return &adam{
		lr: lr,
		m:  n.newGradients(),
		v:  n.newGradients(),
	}
}

// apply updates the network with the mean gradient g over batch examples.
func (o *adam) apply(n *Network, g *gradients, batch int) {
	o.step++
	scale := 1 / float64(batch)
	c1 := 1 - math.Pow(adamBeta1, float64(o.step))
	c2 := 1 - math.Pow(adamBeta2, float64(o.step))

	update := func(param, grad, m, v *float64) {
		gr := *grad * scale
		mt := adamBeta1*(*m) + (1-adamBeta1)*gr
		vt := adamBeta2*(*v) + (1-adamBeta2)*gr*gr
		*m, *v = mt, vt
		*param -= o.lr * (mt / c1) / (math.Sqrt(vt/c2) + adamEpsilon)
	}

	for li, l := range n.layers {
		for i := 0; i < l.out; i++ {
			for j := 0; j < l.in; j++ {
				update(&l.w[i][j], &g.w[li][i][j], &o.m.w[li][i][j], &o.v.w[li][i][j])
			}
			update(&l.b[i], &g.b[li][i], &o.m.b[li][i], &o.v.b[li][i])
		}
	}
}
