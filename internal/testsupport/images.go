package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// WriteCheckerImage writes a PNG checkerboard with the given block size.
// Smaller blocks mean more edges and a higher sharpness score, so a set of
// these yields a controlled sharpness ordering.
func WriteCheckerImage(t testing.TB, path string, size, block int) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/block+y/block)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	writePNG(t, path, img)
}

// WriteFlatImage writes a uniform gray PNG, the least sharp image possible.
func WriteFlatImage(t testing.TB, path string, size int) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	writePNG(t, path, img)
}

func writePNG(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
