//go:build !cuda

package device

import "github.com/pkg/errors"

func probeGPU() (*GPU, error) {
	return nil, errors.New("built without cuda")
}
