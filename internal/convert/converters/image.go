package converters

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/eskil/fileforge/internal/convert"
)

// Image converts raster images natively, without external tools. webp is
// decode-only (no encoder in x/image), so it appears among inputs but not
// outputs.
type Image struct {
	caps convert.Capabilities
}

// NewImage creates the native raster image converter.
func NewImage() *Image {
	inputs := []convert.Format{"png", "jpeg", "gif", "webp", "bmp", "tiff"}
	outputs := []convert.Format{"png", "jpeg", "gif", "bmp", "tiff"}

	caps := convert.Capabilities{
		Inputs:  inputs,
		Outputs: make(map[convert.Format][]convert.Format, len(inputs)),
	}
	for _, in := range inputs {
		caps.Outputs[in] = others(outputs, in)
	}
	return &Image{caps: caps}
}

func (i *Image) Name() string {
	return "image"
}

func (i *Image) Capabilities() convert.Capabilities {
	return i.caps
}

func (i *Image) Convert(ctx context.Context, req convert.Request) error {
	src, err := os.Open(req.SourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decode %s: %w", req.SourceFormat, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dst, err := os.Create(req.TargetPath)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	defer dst.Close()

	switch req.TargetFormat {
	case "png":
		err = png.Encode(dst, img)
	case "jpeg":
		err = jpeg.Encode(dst, img, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(dst, img, nil)
	case "bmp":
		err = bmp.Encode(dst, img)
	case "tiff":
		err = tiff.Encode(dst, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = fmt.Errorf("no encoder for %s", req.TargetFormat)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", req.TargetFormat, err)
	}

	return dst.Close()
}
