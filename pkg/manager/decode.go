package manager

import (
	"bytes"
	"image"

	// Register the stdlib decoders. Callers can register more via
	// image.RegisterFormat before building a Manager.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

func decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}
