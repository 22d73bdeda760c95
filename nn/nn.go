// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks on the autodiff engine.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	model := nn.NewSequential(
//	    nn.NewLinear(2, 4, rng),
//	    nn.NewTanh(),
//	    nn.NewLinear(4, 1, rng),
//	)
//	loss, _ := nn.NewMSELoss().Forward(pred, target)
package nn

import (
	"math/rand"

	"github.com/born-ml/dyngrad/internal/nn"
	"github.com/born-ml/dyngrad/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Stateful modules export and restore their parameters by name.
type Stateful = nn.Stateful

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and value.
func NewParameter(name string, buf *tensor.Buffer) *Parameter {
	return nn.NewParameter(name, buf)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// Sequential chains modules.
type Sequential = nn.Sequential

// NewSequential creates a container running modules in order.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Activations

// ReLU activation module.
type ReLU = nn.ReLU

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU { return nn.NewReLU() }

// Sigmoid activation module.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid() *Sigmoid { return nn.NewSigmoid() }

// Tanh activation module.
type Tanh = nn.Tanh

// NewTanh creates a Tanh activation.
func NewTanh() *Tanh { return nn.NewTanh() }

// Loss functions

// MSELoss computes the mean squared error.
type MSELoss = nn.MSELoss

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss { return nn.NewMSELoss() }
