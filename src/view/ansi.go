package view

import (
	"bytes"
	"image"
	"image/color"

	"github.com/logrusorgru/aurora"
)

//upperHalf is drawn with the upper pixel as foreground and the lower pixel as background
//so one character cell shows two rows of the frame
const upperHalf = "▀"

//Index256 returns the xterm 256-color palette index closest to c, composited over black
func Index256(c color.RGBA) uint8 {
	r, g, b := premultiply(c)
	//the gray ramp is closer for neutral colors
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return uint8(232 + (int(r)-8)*24/241)
	}
	return uint8(16 + 36*cube(r) + 6*cube(g) + cube(b))
}

func premultiply(c color.RGBA) (uint8, uint8, uint8) {
	a := uint32(c.A)
	return uint8(uint32(c.R) * a / 255), uint8(uint32(c.G) * a / 255), uint8(uint32(c.B) * a / 255)
}

//cube maps a channel to the 6 levels of the color cube
func cube(v uint8) int {
	return (int(v)*5 + 127) / 255
}

//ANSI renders the frame with 256-color escape sequences, two frame rows per text line
//maxW and maxH limit the output in characters, zero means no limit
func ANSI(au aurora.Aurora, img *image.RGBA, maxW int, maxH int) string {
	var b bytes.Buffer
	bounds := img.Rect
	lines := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if maxH > 0 && lines >= maxH {
			break
		}
		if lines != 0 {
			b.WriteByte('\n')
		}
		lines++
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if maxW > 0 && x-bounds.Min.X >= maxW {
				break
			}
			top := Index256(img.RGBAAt(x, y))
			bottom := uint8(16)
			if y+1 < bounds.Max.Y {
				bottom = Index256(img.RGBAAt(x, y+1))
			}
			b.WriteString(au.Index(top, upperHalf).BgIndex(bottom).String())
		}
	}
	return b.String()
}
