// Package mnist loads the MNIST training images as a normalized dataset.
package mnist

import "compress/gzip"
import "crypto/sha256"
import "encoding/binary"
import "fmt"
import "io"
import "os"
import "path/filepath"

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/datasets"
import "github.com/neurlang/gantrainer/logging"

const tmpDirectory = `/tmp/mnist/`
const dataDirectory = `./data/raw_data/`

var searchDirectories = []string{dataDirectory, tmpDirectory}

const trainSetImg = "train-images-idx3-ubyte"
const trainDigImg = "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609"

const imageMagic = 0x00000803

const ImgSize = 28

// ReadImages parses an idx3 image file and returns the raw pixel bytes.
func ReadImages(r io.Reader) (pixels []byte, n, rows, cols int, err error) {
	var header [4]uint32
	if err = binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, 0, errors.Wrap(err, "mnist header")
	}
	if header[0] != imageMagic {
		return nil, 0, 0, 0, errors.Errorf("mnist: bad magic %#x", header[0])
	}
	n, rows, cols = int(header[1]), int(header[2]), int(header[3])
	pixels = make([]byte, n*rows*cols)
	if _, err = io.ReadFull(r, pixels); err != nil {
		return nil, 0, 0, 0, errors.Wrapf(err, "mnist: reading %d images", n)
	}
	return pixels, n, rows, cols, nil
}

// Find returns the first existing training image file under dir or the
// default search directories, preferring the uncompressed file.
func Find(dir string) (string, error) {
	dirs := searchDirectories
	if dir != "" {
		dirs = append([]string{dir}, dirs...)
	}
	for _, d := range dirs {
		for _, name := range []string{trainSetImg, trainSetImg + ".gz"} {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", errors.Errorf("mnist: %s not found in %v", trainSetImg, dirs)
}

// Load reads the training images from dir (or the search directories) and
// normalizes them to [-1, 1].
func Load(dir string, threads int) (*datasets.Dataset, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		if err := checkDigest(f, trainDigImg); err != nil {
			logging.Warn("mnist digest mismatch", logging.Data, "path", path, "error", err)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "mnist: %s", path)
		}
		defer gz.Close()
		r = gz
	}

	pixels, n, rows, cols, err := ReadImages(r)
	if err != nil {
		return nil, errors.Wrapf(err, "mnist: %s", path)
	}
	if rows != ImgSize || cols != ImgSize {
		return nil, errors.Errorf("mnist: %s has %dx%d images", path, rows, cols)
	}
	logging.Info("loaded mnist", logging.Data, "path", path, "images", n)
	return datasets.New(rows*cols, datasets.Normalize(pixels, threads))
}

func checkDigest(r io.Reader, want string) error {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return err
	}
	if got := fmt.Sprintf("%x", h.Sum(nil)); got != want {
		return errors.Errorf("sha256 %s, want %s", got, want)
	}
	return nil
}
