package yuv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Reference conversion in plain arithmetic, for cross-checking the tables.
func referenceRGB(y, u, v int) (r, g, b uint8) {
	r = clamp8(y + (v-128)*359/256)
	g = clamp8(y - ((u-128)*88+(v-128)*183)/256)
	b = clamp8(y + (u-128)*454/256)
	return
}

func TestMidGrayHasNoChroma(t *testing.T) {
	tables := NewTables()

	// Y=128 with neutral chroma must come out mid-gray.
	src := []byte{128, 128, 128, 128} // U Y0 V Y1
	dst := make([]byte, 6)
	tables.ToRGB(src, dst, 2)

	for i, c := range dst {
		assert.InDelta(t, 128, int(c), 1, "component %d", i)
	}
}

func TestRedClamping(t *testing.T) {
	tables := NewTables()

	// Y=235, V=240 pushes red past 255; it must saturate.
	src := []byte{128, 235, 240, 235}
	dst := make([]byte, 6)
	tables.ToRGB(src, dst, 2)

	assert.EqualValues(t, 255, dst[0])
	assert.EqualValues(t, 255, dst[3])
}

func TestTablesMatchReference(t *testing.T) {
	tables := NewTables()

	// Spot-check a grid of (Y,U,V) combinations against direct arithmetic.
	for y := 0; y < 256; y += 17 {
		for u := 0; u < 256; u += 51 {
			for v := 0; v < 256; v += 51 {
				r, g, b := referenceRGB(y, u, v)

				src := []byte{byte(u), byte(y), byte(v), byte(y)}
				dst := make([]byte, 6)
				tables.ToRGB(src, dst, 2)

				if dst[0] != r || dst[1] != g || dst[2] != b {
					t.Fatalf("Y=%d U=%d V=%d: got (%d,%d,%d), want (%d,%d,%d)",
						y, u, v, dst[0], dst[1], dst[2], r, g, b)
				}
			}
		}
	}
}

func TestBothPixelsOfQuartet(t *testing.T) {
	tables := NewTables()

	// Y0 and Y1 share chroma but keep their own luma.
	src := []byte{100, 50, 200, 220}
	dst := make([]byte, 6)
	tables.ToRGB(src, dst, 2)

	r0, g0, b0 := referenceRGB(50, 100, 200)
	r1, g1, b1 := referenceRGB(220, 100, 200)
	assert.Equal(t, []byte{r0, g0, b0, r1, g1, b1}, dst)
}

func TestToGray(t *testing.T) {
	src := []byte{
		10, 0x11, 20, 0x22,
		30, 0x33, 40, 0x44,
	}
	dst := make([]byte, 4)
	ToGray(src, dst, 4)

	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, dst)
}
