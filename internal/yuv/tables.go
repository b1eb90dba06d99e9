package yuv

// Tables hold the precomputed YUV to RGB component lookups. Red depends on
// (V,Y), blue on (U,Y), green on all three. The green table is a flat
// 16 MiB slice indexed u<<16 | v<<8 | y; red and blue are 64 KiB arrays.
type Tables struct {
	red   [256][256]uint8 // [v][y]
	blue  [256][256]uint8 // [u][y]
	green []uint8         // [u<<16 | v<<8 | y]
}

func clamp8(v int) uint8 {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// NewTables builds the component lookups. Call once per owning channel or
// device, before capture starts; the result is immutable.
func NewTables() *Tables {
	t := &Tables{
		green: make([]uint8, 1<<24),
	}

	for y := 0; y < 256; y++ {
		for v := 0; v < 256; v++ {
			vr := (v - 128) * 359 / 256
			t.red[v][y] = clamp8(y + vr)
		}
		for u := 0; u < 256; u++ {
			ub := (u - 128) * 454 / 256
			t.blue[u][y] = clamp8(y + ub)
		}
	}

	for u := 0; u < 256; u++ {
		for v := 0; v < 256; v++ {
			ugvg := ((u-128)*88 + (v-128)*183) / 256
			base := u<<16 | v<<8
			for y := 0; y < 256; y++ {
				t.green[base|y] = clamp8(y - ugvg)
			}
		}
	}

	return t
}

// ToRGB converts pixelCount pixels of packed UYVY into 24-bit RGB.
// src must hold at least 2*pixelCount bytes and dst at least 3*pixelCount.
func (t *Tables) ToRGB(src, dst []byte, pixelCount int) {
	srcLen := 2 * pixelCount
	for i, j := 0, 0; i < srcLen; i, j = i+4, j+6 {
		u := src[i]
		y0 := src[i+1]
		v := src[i+2]
		y1 := src[i+3]

		green := t.green[int(u)<<16|int(v)<<8:]

		dst[j+0] = t.red[v][y0]
		dst[j+1] = green[y0]
		dst[j+2] = t.blue[u][y0]

		dst[j+3] = t.red[v][y1]
		dst[j+4] = green[y1]
		dst[j+5] = t.blue[u][y1]
	}
}

// ToGray extracts the luma plane from packed UYVY. Luma occupies every
// second byte starting at offset 1. src must hold at least 2*pixelCount
// bytes and dst at least pixelCount.
func ToGray(src, dst []byte, pixelCount int) {
	for i, j := 0, 1; i < pixelCount; i, j = i+1, j+2 {
		dst[i] = src[j]
	}
}
