// Package photo prepares captured images before they are stored or sent.
package photo

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"net/http"

	_ "image/gif" // decoders
	_ "image/png"

	"github.com/nfnt/resize"
)

const (
	// MaxSide is the longest edge of an uploaded photo.
	MaxSide = 1280
	// ThumbSide is the longest edge of the inline copy kept for guest stories.
	ThumbSide = 800
	Quality   = 85
)

// Prepare shrinks data to fit MaxSide x MaxSide and re-encodes it as JPEG.
// Images that already fit, and data that is not a decodable image, are
// returned unchanged.
func Prepare(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	b := img.Bounds()
	if b.Dx() <= MaxSide && b.Dy() <= MaxSide {
		return data
	}

	out, err := encode(resize.Thumbnail(MaxSide, MaxSide, img, resize.Lanczos3))
	if err != nil {
		return data
	}
	return out
}

// DataURL returns an inline data: URL for data, downscaled to fit
// maxSide x maxSide when it is a decodable image.
func DataURL(data []byte, maxSide uint) string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	out, err := encode(resize.Thumbnail(maxSide, maxSide, img, resize.Lanczos3))
	if err != nil {
		return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(out)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
