// Package cifar loads the CIFAR-10 binary training batches as a normalized dataset.
package cifar

import "io"
import "os"
import "path/filepath"
import "strconv"

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/datasets"
import "github.com/neurlang/gantrainer/logging"
import "github.com/neurlang/gantrainer/parallel"

const dataDirectory = `./data/cifar-10-batches-bin/`

const ImgSize = 32
const Channels = 3

// RecordSize is one label byte followed by the red, green and blue planes.
const RecordSize = 1 + ImgSize*ImgSize*Channels

const batches = 5

// BatchFile returns the name of the i-th training batch, 1 based.
func BatchFile(i int) string {
	return "data_batch_" + strconv.Itoa(i) + ".bin"
}

// ReadBatch returns the pixel planes of every record in r, labels dropped.
func ReadBatch(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%RecordSize != 0 {
		return nil, errors.Errorf("cifar: %d bytes is not a whole number of records", len(data))
	}
	n := len(data) / RecordSize
	pixels := make([]byte, 0, n*(RecordSize-1))
	for i := 0; i < n; i++ {
		pixels = append(pixels, data[i*RecordSize+1:(i+1)*RecordSize]...)
	}
	return pixels, nil
}

// Load reads data_batch_1.bin to data_batch_5.bin from dir and normalizes
// them to [-1, 1]. Batches are read concurrently.
func Load(dir string, threads int) (*datasets.Dataset, error) {
	if dir == "" {
		dir = dataDirectory
	}
	var parts [batches][]byte
	err := parallel.ForEach(batches, threads, func(i int) error {
		path := filepath.Join(dir, BatchFile(i+1))
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "cifar")
		}
		defer f.Close()
		if parts[i], err = ReadBatch(f); err != nil {
			return errors.Wrapf(err, "cifar: %s", path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var pixels []byte
	for _, part := range parts {
		pixels = append(pixels, part...)
	}
	logging.Info("loaded cifar", logging.Data, "dir", dir, "images", len(pixels)/(RecordSize-1))
	return datasets.New(RecordSize-1, datasets.Normalize(pixels, threads))
}
