//go:build cuda

package device

import "github.com/pkg/errors"
import "gorgonia.org/cu"

func probeGPU() (*GPU, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("no cuda devices")
	}
	d := cu.Device(0)
	g := &GPU{Driver: cu.Version()}
	if g.Name, err = d.Name(); err != nil {
		return nil, err
	}
	if g.Memory, err = d.TotalMem(); err != nil {
		return nil, err
	}
	g.ClockKHz, _ = d.Attribute(cu.ClockRate)
	g.Major, _ = d.Attribute(cu.ComputeCapabilityMajor)
	g.Minor, _ = d.Attribute(cu.ComputeCapabilityMinor)
	return g, nil
}
