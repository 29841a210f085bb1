package scoring

import (
	"image"

	"golang.org/x/image/draw"
)

// LaplacianVariance is the default sharpness measure: the variance of the
// Laplacian over a grayscale copy of the frame. Sharper frames carry more
// high-frequency edge detail, which shows up as wider Laplacian spread.
//
// The frame is downscaled to half resolution first. Sharpness ranking is
// stable under the downscale and it cuts the per-frame cost fourfold.
func LaplacianVariance(img image.Image) float64 {
	gray := halfResGray(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	// 3x3 Laplacian: 4*center minus the orthogonal neighbors.
	n := 0
	var sum, sumSq float64
	for y := 1; y < h-1; y++ {
		row := gray.Pix[y*gray.Stride:]
		above := gray.Pix[(y-1)*gray.Stride:]
		below := gray.Pix[(y+1)*gray.Stride:]
		for x := 1; x < w-1; x++ {
			v := 4*int(row[x]) - int(row[x-1]) - int(row[x+1]) - int(above[x]) - int(below[x])
			f := float64(v)
			sum += f
			sumSq += f * f
			n++
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

func halfResGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	w := max(bounds.Dx()/2, 1)
	h := max(bounds.Dy()/2, 1)
	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, bounds, draw.Src, nil)
	return gray
}
