package layer

import "gorgonia.org/tensor"

// NewMatrix wraps data as a rows x cols float32 matrix without copying.
func NewMatrix(rows, cols int, data []float32) *tensor.Dense {
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

// Zeros allocates a rows x cols matrix.
func Zeros(rows, cols int) *tensor.Dense {
	return NewMatrix(rows, cols, make([]float32, rows*cols))
}

// Floats returns the backing slice of a float32 matrix.
func Floats(t *tensor.Dense) []float32 {
	return t.Data().([]float32)
}

// Dims returns the rows and columns of a matrix.
func Dims(t *tensor.Dense) (rows, cols int) {
	s := t.Shape()
	return s[0], s[1]
}

// Copy returns a matrix with its own backing array.
func Copy(t *tensor.Dense) *tensor.Dense {
	r, c := Dims(t)
	return NewMatrix(r, c, append([]float32(nil), Floats(t)...))
}
