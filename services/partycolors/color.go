package partycolors

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/disintegration/imaging"
)

// brightness follows the perceived luminance weights of the human
// eye: green reads brighter than red, red brighter than blue.
func brightness(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func saturation(r, g, b float64) float64 {
	max := math.Max(r, math.Max(g, b))
	if max == 0 {
		return 0
	}
	min := math.Min(r, math.Min(g, b))
	return (max - min) / max
}

// usable reports whether a color reads as an actual brand color
// rather than a white, black or gray background.
func usable(c rgb) bool {
	r, g, b := float64(c[0]), float64(c[1]), float64(c[2])
	br := brightness(r, g, b)
	if br < 60 || br > 235 {
		return false
	}
	return saturation(r, g, b) >= 0.15
}

type rgb [3]int

// quantize groups similar channel values into steps of 10.
func quantize(v uint8) int {
	q := int(math.Round(float64(v)/10)) * 10
	if q > 255 {
		q = 255
	}
	return q
}

// dominantColor reduces an icon to its most common quantized color,
// ignoring very dark and very light background pixels. When the most
// common color is not usable the runner-up gets a chance. Reports
// false when neither is usable.
func dominantColor(img image.Image) (string, bool) {
	small := imaging.Resize(img, 50, 50, imaging.Lanczos)

	var all []rgb
	var filtered []rgb
	for y := 0; y < small.Bounds().Dy(); y++ {
		for x := 0; x < small.Bounds().Dx(); x++ {
			i := y*small.Stride + x*4
			r := small.Pix[i]
			g := small.Pix[i+1]
			b := small.Pix[i+2]

			c := rgb{quantize(r), quantize(g), quantize(b)}
			all = append(all, c)
			br := brightness(float64(r), float64(g), float64(b))
			if br >= 50 && br <= 245 {
				filtered = append(filtered, c)
			}
		}
	}
	if len(filtered) == 0 {
		// icons that are all background still get a shot
		filtered = all
	}

	counts := map[rgb]int{}
	var order []rgb
	for _, c := range filtered {
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	// most common first, first seen wins ties
	slices.SortStableFunc(order, func(a, b rgb) int {
		return counts[b] - counts[a]
	})

	for _, c := range order[:min(2, len(order))] {
		if usable(c) {
			return fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2]), true
		}
	}
	return "", false
}
