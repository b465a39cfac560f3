// pkg/render/engo/assets.go
package engo

import (
	"image"

	"github.com/EngoEngine/engo/common"
)

// frameImage copies a rendered frame into dst, reallocating it only when
// the size changes. Canvas pixels are always opaque, so the premultiplied
// bytes are already straight alpha and can be copied as they are.
func frameImage(src *image.RGBA, dst *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	if dst == nil || dst.Bounds() != bounds {
		dst = image.NewNRGBA(bounds)
	}
	if src.Stride == dst.Stride {
		copy(dst.Pix, src.Pix)
		return dst
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}

// uploadTexture converts an image to an Engo-compatible texture.
func uploadTexture(img *image.NRGBA) common.Drawable {
	texture := common.NewImageObject(img)
	return common.NewTextureSingle(texture)
}
