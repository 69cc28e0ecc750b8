// Package datasets implements the image datasets fed to adversarial training
// and the random batches drawn from them.
package datasets

import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/parallel"

// ErrUnsupportedDataSource is returned for a data source other than mnist or cifar.
var ErrUnsupportedDataSource = errors.New("unsupported data source")

// Source names a training dataset.
type Source string

const (
	MNIST Source = "mnist"
	CIFAR Source = "cifar"
)

// ParseSource validates a --dataSource value.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case MNIST:
		return MNIST, nil
	case CIFAR:
		return CIFAR, nil
	}
	return "", errors.Wrapf(ErrUnsupportedDataSource, "%q", s)
}

// SampleDim returns the flattened sample size of the source.
func (s Source) SampleDim() int {
	switch s {
	case MNIST:
		return 28 * 28
	case CIFAR:
		return 32 * 32 * 3
	}
	return 0
}

// Dataset is N samples of Dim values each, stored row after row.
type Dataset struct {
	Data []float32
	Dim  int
}

// New wraps data as a dataset of dim-sized rows.
func New(dim int, data []float32) (*Dataset, error) {
	if dim <= 0 || len(data)%dim != 0 {
		return nil, errors.Errorf("dataset: %d values do not split into rows of %d", len(data), dim)
	}
	return &Dataset{Data: data, Dim: dim}, nil
}

// N returns the number of samples.
func (d *Dataset) N() int {
	return len(d.Data) / d.Dim
}

// Row returns the i-th sample without copying.
func (d *Dataset) Row(i int) []float32 {
	return d.Data[i*d.Dim : (i+1)*d.Dim]
}

const normalizeChunk = 1 << 16

// Normalize maps bytes to [-1, 1] as x/255*2-1, on up to threads goroutines.
func Normalize(raw []byte, threads int) []float32 {
	out := make([]float32, len(raw))
	chunks := (len(raw) + normalizeChunk - 1) / normalizeChunk
	parallel.ForEach(chunks, threads, func(c int) error {
		end := (c + 1) * normalizeChunk
		if end > len(raw) {
			end = len(raw)
		}
		for i := c * normalizeChunk; i < end; i++ {
			out[i] = float32(raw[i])/255*2 - 1
		}
		return nil
	})
	return out
}
