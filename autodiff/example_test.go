package autodiff_test

import (
	"fmt"

	"github.com/born-ml/dyngrad/autodiff"
	"github.com/born-ml/dyngrad/nn"
	"github.com/born-ml/dyngrad/optim"
	"github.com/born-ml/dyngrad/tensor"
)

func ExampleBackward() {
	a := autodiff.New(tensor.Vector(3, 2), true)
	b := autodiff.New(tensor.Vector(2, 0.1), true)

	z, _ := autodiff.Mul(a, b)
	_ = autodiff.Backward(z, tensor.Ones(z.Shape()))

	fmt.Println(z.Data())
	fmt.Println(a.Grad())
	fmt.Println(b.Grad())
	// Output:
	// Buffer[2](6, 0.2)
	// Buffer[2](2, 0.1)
	// Buffer[2](3, 2)
}

func ExampleNewSGD() {
	w := nn.NewParameter("w", tensor.Vector(2))
	opt := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{LR: 0.25})

	// loss = w², dloss/dw = 2w
	loss, _ := autodiff.Pow(w.Tensor(), 2)
	_ = autodiff.BackwardScalar(loss)
	_ = opt.Step()

	fmt.Println(w.Data())
	// Output:
	// Buffer[1](1)
}
