// Package texture owns decoded page images behind stable references.
//
// Atlas pages are registered by path and decoded lazily: Register hands back a
// rig.TextureRef immediately and Registry.Update performs the pending loads.
// A ref stays valid until the registry is closed.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

var errTGATruncated = errors.New("TGA data truncated")

// tgaReader walks true-color pixels in file order and writes them to img.
type tgaReader struct {
	img           *image.RGBA
	width, height int
	bytesPerPixel int
	topToBottom   bool
	next          int
}

func (r *tgaReader) done() bool { return r.next >= r.width*r.height }

func (r *tgaReader) pixel(p []byte) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}

func (r *tgaReader) put(c color.RGBA) {
	x, y := r.next%r.width, r.next/r.width
	if !r.topToBottom {
		y = r.height - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.next++
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA files.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}
	pix := data[offset:]

	r := &tgaReader{
		img:           image.NewRGBA(image.Rect(0, 0, width, height)),
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		topToBottom:   descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		if len(pix) < width*height*r.bytesPerPixel {
			return nil, errTGATruncated
		}
		for i := 0; !r.done(); i += r.bytesPerPixel {
			r.put(r.pixel(pix[i:]))
		}
		return r.img, nil
	}

	i := 0
	for !r.done() && i < len(pix) {
		packet := pix[i]
		i++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if i+r.bytesPerPixel > len(pix) {
				return nil, errTGATruncated
			}
			c := r.pixel(pix[i:])
			i += r.bytesPerPixel
			for n := 0; n < count && !r.done(); n++ {
				r.put(c)
			}
			continue
		}

		for n := 0; n < count && !r.done(); n++ {
			if i+r.bytesPerPixel > len(pix) {
				return nil, errTGATruncated
			}
			r.put(r.pixel(pix[i:]))
			i += r.bytesPerPixel
		}
	}

	return r.img, nil
}
