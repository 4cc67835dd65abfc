package attach

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
)

// decodeImage flattens the picture to RGB, downscales it so neither dimension
// exceeds the configured maximum (aspect ratio preserved, never upscaled),
// re-encodes it as JPEG at fixed quality and base64-encodes the bytes.
func (n *Normalizer) decodeImage(name string, data []byte) (Normalized, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Normalized{}, &IngestionError{Name: name, Err: err}
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	maxDim := float64(n.policy.MaxImageDimension)
	scale := math.Min(maxDim/float64(w), maxDim/float64(h))
	if scale < 1 {
		w = int(math.Round(float64(w) * scale))
		h = int(math.Round(float64(h) * scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if scale < 1 {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.policy.JPEGQuality}); err != nil {
		return Normalized{}, &IngestionError{Name: name, Err: err}
	}

	return Normalized{
		MediaType: "image/jpeg",
		ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
