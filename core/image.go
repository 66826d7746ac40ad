package core

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
)

var ErrEmptyCrop = errors.New("crop area does not intersect the image")

// DecodeImage decodes a PNG (or any other format registered with [image]) from memory.
func DecodeImage(input []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(input))
}

// Crop returns the part of img inside box. The box is clipped to the image bounds first;
// a box entirely outside the image is an error rather than an empty image.
func Crop(img image.Image, box image.Rectangle) (image.Image, error) {
	if box.Intersect(img.Bounds()).Empty() {
		return nil, ErrEmptyCrop
	}
	return imaging.Crop(img, box), nil
}

// EncodePNG compresses img as a PNG at the highest compression level.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes img as a lossless WebP.
func EncodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, &nativewebp.Options{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
