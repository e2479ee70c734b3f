package asset

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/gift"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when texture data is not a recognised image.
var ErrNotImage = errors.New("asset: not an image")

// sniffLen covers the magic numbers of every supported format.
const sniffLen = 512

// DecodeImage decodes a PNG, JPEG, BMP, TIFF or WebP image into RGBA. Rows
// are flipped so the first row is the bottom of the image, which is where
// GL samples texture coordinate v = 0. A non-zero maxSize shrinks larger
// images to fit maxSize x maxSize, keeping their aspect ratio.
func DecodeImage(r io.Reader, maxSize int) (*image.RGBA, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	header, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	if !filetype.IsImage(header) {
		return nil, ErrNotImage
	}
	kind, err := filetype.Match(header)
	if err != nil {
		return nil, fmt.Errorf("sniff image: %w", err)
	}

	img, _, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", kind.Extension, err)
	}

	filters := []gift.Filter{gift.FlipVertical()}
	if b := img.Bounds(); maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		filters = append(filters, gift.ResizeToFit(maxSize, maxSize, gift.LinearResampling))
	}
	g := gift.New(filters...)

	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst, nil
}
