package reportsvc

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

var (
	// ErrUnknownInterpolator is returned when an unsupported interpolation method is configured.
	ErrUnknownInterpolator = errors.New("unknown interpolator")

	// ErrUnsupportedFormat is returned when an unsupported image format is configured.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

type imageFormat struct {
	ext    string
	encode func(io.Writer, image.Image) error
}

//nolint:gochecknoglobals
var (
	imageFormats = map[string]imageFormat{
		"png":  {ext: ".png", encode: png.Encode},
		"jpeg": {ext: ".jpg", encode: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 90}) }},
		"jpg":  {ext: ".jpg", encode: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 90}) }},
		"tiff": {ext: ".tiff", encode: func(w io.Writer, i image.Image) error { return tiff.Encode(w, i, nil) }},
	}

	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

func getImageFormat(name string) (imageFormat, error) {
	format, ok := imageFormats[strings.ToLower(name)]
	if !ok {
		return imageFormat{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}

	return format, nil
}

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// scaleImage scales src to width x height. The image is returned as is when it
// already has that size.
func scaleImage(src image.Image, width, height int, interpolator string) (image.Image, error) {
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		return src, nil
	}

	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, err
	}

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	interpol.Scale(bitmap, bitmap.Bounds(), src, src.Bounds(), draw.Over, nil)

	return bitmap, nil
}
