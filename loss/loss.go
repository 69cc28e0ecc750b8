// Package loss implements the binary cross-entropy cost of the discriminator.
package loss

import "github.com/chewxy/math32"
import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/layer/activation"

// BinaryCrossEntropyWithLogits returns the mean cross-entropy of the [batch, 1]
// logits against 0/1 labels, together with the gradient with respect to the
// logits.
func BinaryCrossEntropyWithLogits(logits *tensor.Dense, labels []int) (float64, *tensor.Dense, error) {
	rows, cols := layer.Dims(logits)
	if cols != 1 || rows != len(labels) {
		return 0, nil, errors.Errorf("loss: logits %dx%d, %d labels", rows, cols, len(labels))
	}
	z := layer.Floats(logits)
	grad := make([]float32, rows)
	n := float32(rows)
	var sum float64
	for i, x := range z {
		y := float32(labels[i])
		// max(x,0) - x*y + log(1+e^-|x|)
		l := math32.Max(x, 0) - x*y + math32.Log1p(math32.Exp(-math32.Abs(x)))
		sum += float64(l)
		grad[i] = (activation.Logistic(x) - y) / n
	}
	return sum / float64(rows), layer.NewMatrix(rows, 1, grad), nil
}
