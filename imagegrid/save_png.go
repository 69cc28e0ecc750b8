//go:build noopencv

package imagegrid

import "image"
import "image/png"
import "os"
import "path/filepath"

// Save writes img to path as PNG, creating the directory.
func Save(path string, img *Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	rgb := img.RGB()
	for i := 0; i < img.Width*img.Height; i++ {
		copy(rgba.Pix[i*4:], rgb[i*3:i*3+3])
		rgba.Pix[i*4+3] = 0xff
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, rgba); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
