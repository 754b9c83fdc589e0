package board

import (
	"image"
	imgcolor "image/color"
	"math"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
)

// Raster is a deterministic in-memory Surface. The same stroke log always
// produces the same pixels, which is what makes replay-based sync
// verifiable: two participants holding identical logs render identical
// bitmaps.
type Raster struct {
	img   *image.RGBA
	bg    imgcolor.RGBA
	bgHex string
}

const DefaultBackground = "#FFFFFF"

func NewRaster(width, height int, background string) *Raster {
	r := &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		bg:    parseHexColor(background),
		bgHex: background,
	}
	r.Clear()
	return r
}

func (r *Raster) Clear() {
	b := r.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r.img.SetRGBA(x, y, r.bg)
		}
	}
}

func (r *Raster) BackgroundColor() string {
	return r.bgHex
}

// DrawStroke stamps a disc at every point, then fills each segment by
// stamping interpolated discs one pixel apart. A single point is a dot.
func (r *Raster) DrawStroke(points []model.Point, color string, size float64) {
	if len(points) == 0 {
		return
	}

	col := parseHexColor(color)
	radius := size / 2
	if radius < 0.5 {
		radius = 0.5
	}

	r.stampDisc(points[0], radius, col)
	for i := 1; i < len(points); i++ {
		r.stampSegment(points[i-1], points[i], radius, col)
	}
}

func (r *Raster) stampSegment(from, to model.Point, radius float64, col imgcolor.RGBA) {
	dx, dy := to.X-from.X, to.Y-from.Y
	dist := math.Hypot(dx, dy)
	steps := int(math.Ceil(dist))
	if steps == 0 {
		r.stampDisc(to, radius, col)
		return
	}
	for s := 1; s <= steps; s++ {
		t := float64(s) / float64(steps)
		r.stampDisc(model.Point{X: from.X + dx*t, Y: from.Y + dy*t}, radius, col)
	}
}

func (r *Raster) stampDisc(center model.Point, radius float64, col imgcolor.RGBA) {
	minX := int(math.Floor(center.X - radius))
	maxX := int(math.Ceil(center.X + radius))
	minY := int(math.Floor(center.Y - radius))
	maxY := int(math.Ceil(center.Y + radius))

	rr := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - center.X
			dy := float64(y) + 0.5 - center.Y
			if dx*dx+dy*dy <= rr {
				r.img.SetRGBA(x, y, col)
			}
		}
	}
}

// Pix returns a copy of the raw pixel buffer, suitable for comparing two
// renders byte for byte.
func (r *Raster) Pix() []uint8 {
	pix := make([]uint8, len(r.img.Pix))
	copy(pix, r.img.Pix)
	return pix
}

func (r *Raster) Image() *image.RGBA {
	return r.img
}

// parseHexColor parses #RGB and #RRGGBB. Unparseable input falls back to
// opaque black rather than failing a render.
func parseHexColor(s string) imgcolor.RGBA {
	c := imgcolor.RGBA{A: 0xff}
	if len(s) == 0 || s[0] != '#' {
		return c
	}
	hexVal := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}
	switch len(s) {
	case 7:
		for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
			hi, ok1 := hexVal(s[1+i*2])
			lo, ok2 := hexVal(s[2+i*2])
			if !ok1 || !ok2 {
				return imgcolor.RGBA{A: 0xff}
			}
			*dst = hi<<4 | lo
		}
	case 4:
		for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
			v, ok := hexVal(s[1+i])
			if !ok {
				return imgcolor.RGBA{A: 0xff}
			}
			*dst = v<<4 | v
		}
	}
	return c
}
