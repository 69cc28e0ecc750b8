package trainer

import "os"
import "path/filepath"

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/logging"

// Weights is a network stored as compressed weights.
type Weights interface {
	WriteCompressedWeightsToFile(name string) error
	ReadCompressedWeightsFromFile(name string) error
}

// Resume loads dstmodel into net when resume is set and the file exists.
// It reports whether weights were loaded.
func Resume(net Weights, resume bool, dstmodel string) (bool, error) {
	if !resume || dstmodel == "" {
		return false, nil
	}
	if _, err := os.Stat(dstmodel); os.IsNotExist(err) {
		logging.Warn("no checkpoint to resume from", logging.Training, "path", dstmodel)
		return false, nil
	}
	if err := net.ReadCompressedWeightsFromFile(dstmodel); err != nil {
		return false, errors.Wrapf(err, "resume %s", dstmodel)
	}
	logging.Info("resumed weights", logging.Training, "path", dstmodel)
	return true, nil
}

// Checkpoint writes net to dstmodel atomically, through a temporary file.
func Checkpoint(net Weights, dstmodel string) error {
	if err := os.MkdirAll(filepath.Dir(dstmodel), 0o755); err != nil {
		return errors.Wrapf(err, "checkpoint %s", dstmodel)
	}
	tmp := dstmodel + ".tmp"
	if err := net.WriteCompressedWeightsToFile(tmp); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "checkpoint %s", dstmodel)
	}
	if err := os.Rename(tmp, dstmodel); err != nil {
		return errors.Wrapf(err, "checkpoint %s", dstmodel)
	}
	return nil
}
