// Package device describes the hardware training runs on and resolves the
// --useGpu setting.
package device

import "github.com/klauspost/cpuid/v2"
import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/logging"

// GPU is the first CUDA device.
type GPU struct {
	Name     string
	Memory   int64
	ClockKHz int
	Major    int
	Minor    int
	Driver   int
}

// Info is the probed hardware.
type Info struct {
	CPU           string
	PhysicalCores int
	LogicalCores  int
	AVX2          bool
	AVX512        bool
	FMA           bool
	Features      []string

	// GPU is nil when training on the CPU.
	GPU *GPU
}

// Probe describes the CPU and, when built with CUDA support, the first GPU.
func Probe() Info {
	i := Info{
		CPU:           cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		AVX2:          cpuid.CPU.Supports(cpuid.AVX2),
		AVX512:        cpuid.CPU.Supports(cpuid.AVX512F),
		FMA:           cpuid.CPU.Supports(cpuid.FMA3),
		Features:      cpuid.CPU.FeatureSet(),
	}
	if g, err := probeGPU(); err == nil {
		i.GPU = g
	} else {
		logging.Debug("no gpu", logging.Device, "reason", err)
	}
	return i
}

// Workers is the number of goroutines for data preparation.
func (i Info) Workers() int {
	if i.LogicalCores > 0 {
		return i.LogicalCores
	}
	return 1
}

// Select validates useGpu (0 or 1). Requesting a GPU without one falls back
// to the CPU with a warning.
func Select(useGpu int, i Info) (Info, error) {
	switch useGpu {
	case 0:
		i.GPU = nil
	case 1:
		if i.GPU == nil {
			logging.Warn("gpu requested but not available, training on cpu", logging.Device, "cpu", i.CPU)
		}
	default:
		return i, errors.Errorf("useGpu must be 0 or 1, got %d", useGpu)
	}
	logging.Info("device", logging.Device,
		"cpu", i.CPU, "cores", i.PhysicalCores, "threads", i.LogicalCores,
		"avx2", i.AVX2, "avx512", i.AVX512, "gpu", i.GPU != nil)
	return i, nil
}
