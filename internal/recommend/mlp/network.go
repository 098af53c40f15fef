// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package mlp

import (
	"math"
	"math/rand"
)

// probEpsilon clips probabilities away from 0 and 1 in the loss.
const probEpsilon = 1e-7

// layer is one dense layer: out = act(W.in + b).
type layer struct {
	in, out int
	w       [][]float64 // out x in
	b       []float64
	relu    bool // false means sigmoid
}

// newLayer creates a layer with Glorot uniform weights and zero biases.
func newLayer(in, out int, relu bool, rng *rand.Rand) *layer {
	limit := math.Sqrt(6 / float64(in+out))
	l := &layer{
		in:   in,
		out:  out,
		w:    make([][]float64, out),
		b:    make([]float64, out),
		relu: relu,
	}
	for i := range l.w {
		l.w[i] = make([]float64, in)
		for j := range l.w[i] {
			l.w[i][j] = (rng.Float64()*2 - 1) * limit
		}
	}
	return l
}

// forward computes the pre-activation z and activation a for input x.
func (l *layer) forward(x, z, a []float64) {
	for i := 0; i < l.out; i++ {
		sum := l.b[i]
		row := l.w[i]
		for j, v := range x {
			sum += row[j] * v
		}
		z[i] = sum
		if l.relu {
			a[i] = max(sum, 0)
		} else {
			a[i] = sigmoid(sum)
		}
	}
}

// Network is a trained multi-layer perceptron. It implements
// recommend.Model and is immutable once returned by Fit.
type Network struct {
	layers     []*layer
	inputWidth int
}

// newNetwork builds the layer stack input -> hidden... -> 1.
func newNetwork(inputWidth int, hidden []int, rng *rand.Rand) *Network {
	n := &Network{inputWidth: inputWidth}
	prev := inputWidth
	for _, units := range hidden {
		n.layers = append(n.layers, newLayer(prev, units, true, rng))
		prev = units
	}
	n.layers = append(n.layers, newLayer(prev, 1, false, rng))
	return n
}

// InputWidth returns the row width the network accepts.
func (n *Network) InputWidth() int {
	return n.inputWidth
}

// Layers returns the unit count of every layer, output layer included.
func (n *Network) Layers() []int {
	units := make([]int, len(n.layers))
	for i, l := range n.layers {
		units[i] = l.out
	}
	return units
}

// Parameters returns the number of trainable weights and biases.
func (n *Network) Parameters() int {
	total := 0
	for _, l := range n.layers {
		total += l.in*l.out + l.out
	}
	return total
}

// activations holds per-layer buffers for one forward/backward pass.
type activations struct {
	z [][]float64
	a [][]float64
}

func (n *Network) newActivations() *activations {
	act := &activations{
		z: make([][]float64, len(n.layers)),
		a: make([][]float64, len(n.layers)),
	}
	for i, l := range n.layers {
		act.z[i] = make([]float64, l.out)
		act.a[i] = make([]float64, l.out)
	}
	return act
}

// forward runs x through every layer and returns the output probability.
func (n *Network) forward(x []float64, act *activations) float64 {
	in := x
	for i, l := range n.layers {
		l.forward(in, act.z[i], act.a[i])
		in = act.a[i]
	}
	return act.a[len(act.a)-1][0]
}

// gradients accumulates parameter gradients over a mini-batch.
type gradients struct {
	w [][][]float64
	b [][]float64
}

func (n *Network) newGradients() *gradients {
	g := &gradients{
		w: make([][][]float64, len(n.layers)),
		b: make([][]float64, len(n.layers)),
	}
	for i, l := range n.layers {
		g.w[i] = make([][]float64, l.out)
		for j := range g.w[i] {
			g.w[i][j] = make([]float64, l.in)
		}
		g.b[i] = make([]float64, l.out)
	}
	return g
}

func (g *gradients) reset() {
	for i := range g.w {
		for j := range g.w[i] {
			clear(g.w[i][j])
		}
		clear(g.b[i])
	}
}

// backward adds the gradient of the binary cross-entropy of one example to
// g. act must hold the activations of the forward pass for x. With a
// sigmoid output the output delta reduces to p - y.
func (n *Network) backward(x []float64, y float64, act *activations, g *gradients) {
	last := len(n.layers) - 1
	delta := []float64{act.a[last][0] - y}

	for li := last; li >= 0; li-- {
		l := n.layers[li]
		input := x
		if li > 0 {
			input = act.a[li-1]
		}

		for i := 0; i < l.out; i++ {
			d := delta[i]
			if d == 0 {
				continue
			}
			g.b[li][i] += d
			gw := g.w[li][i]
			for j, v := range input {
				gw[j] += d * v
			}
		}

		if li == 0 {
			break
		}

		prev := n.layers[li-1]
		next := make([]float64, prev.out)
		for j := 0; j < prev.out; j++ {
			if act.z[li-1][j] <= 0 {
				continue
			}
			var sum float64
			for i := 0; i < l.out; i++ {
				sum += l.w[i][j] * delta[i]
			}
			next[j] = sum
		}
		delta = next
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// binaryCrossEntropy returns the loss of predicting p for label y.
func binaryCrossEntropy(p, y float64) float64 {
	p = min(max(p, probEpsilon), 1-probEpsilon)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}
