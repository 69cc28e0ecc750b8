//go:build !noopencv

package imagegrid

import "os"
import "path/filepath"

import "github.com/pkg/errors"
import "gocv.io/x/gocv"

// Save writes img to path, creating the directory. The format follows the extension.
func Save(path string, img *Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	mt, code := gocv.MatTypeCV8UC3, gocv.ColorRGBToBGR
	if img.Channels == 1 {
		mt, code = gocv.MatTypeCV8UC1, gocv.ColorGrayToBGR
	}
	src, err := gocv.NewMatFromBytes(img.Height, img.Width, mt, img.Pix)
	if err != nil {
		return errors.Wrap(err, "imagegrid")
	}
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, code)
	if !gocv.IMWrite(path, dst) {
		return errors.Errorf("imagegrid: cannot write %s", path)
	}
	return nil
}
