package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(12, 0, 10))
	assert.Equal(t, 4.5, Clamp(4.5, 0, 10))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 10))
}

func TestMapInputToCanvas(t *testing.T) {
	res := Size{Width: 1000, Height: 500}
	rect := Rect{X: 20, Y: 10, Width: 500, Height: 250}

	tests := []struct {
		name  string
		input Point
		want  Point
	}{
		{"origin", Pt(20, 10), Pt(0, 0)},
		{"middle", Pt(270, 135), Pt(500, 250)},
		{"far corner", Pt(520, 260), Pt(1000, 500)},
		{"left of surface is clamped", Pt(-40, 100), Pt(0, 180)},
		{"below surface is clamped", Pt(100, 900), Pt(160, 500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapInputToCanvas(tt.input, rect, res)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestMapInputToCanvasDegenerateRect(t *testing.T) {
	got := MapInputToCanvas(Pt(30, 40), Rect{}, Size{Width: 100, Height: 100})
	assert.Equal(t, Pt(30, 40), got)
}

func TestRotatePoint(t *testing.T) {
	c := Pt(50, 50)
	got := RotatePoint(Pt(50, 10), c, math.Pi/2)
	assert.InDelta(t, 90, got.X, 1e-9)
	assert.InDelta(t, 50, got.Y, 1e-9)

	back := RotatePoint(got, c, -math.Pi/2)
	assert.InDelta(t, 50, back.X, 1e-9)
	assert.InDelta(t, 10, back.Y, 1e-9)

	assert.Equal(t, c, RotatePoint(c, c, 1.234))
}

func TestSizeCenter(t *testing.T) {
	assert.Equal(t, Pt(320, 240), Size{Width: 640, Height: 480}.Center())
}
