/*
Package yuv converts packed 4:2:2 YUV (UYVY byte order) into RGB and
grayscale.

The input layout is U Y0 V Y1 repeating: one chroma pair shared by two
horizontally adjacent luma samples, two bytes per pixel. Grayscale output is
just the luma plane, extracted directly. RGB output uses BT.601-style
fixed-point math precomputed into dense lookup tables, so conversion is a
table lookup per component with no arithmetic in the pixel loop:

	R = clamp8( Y + (V-128)*359/256 )
	G = clamp8( Y - ((U-128)*88 + (V-128)*183)/256 )
	B = clamp8( Y + (U-128)*454/256 )

Tables are indexed by the raw byte values of Y, U and V. They are built once
by NewTables and read-only afterward; a Tables value is safe for concurrent
readers.
*/
package yuv
