package emu

// lineBuffer is the double-buffered hand-off between the draw domain and
// scan-out. Each entry is a 9-bit color index (palette select << 4 |
// pixel nibble). The two domains keep their own select bits, each
// toggled only after that domain's locally observed line-start, so at
// any instant the buffer a domain touches is disjoint from the other
// domain's: scan reads (and clears) buf[sel], draw writes buf[sel^1].
type lineBuffer struct {
	buf [2][ScreenWidth]uint16
}

// readClear returns the pixel at x in the selected buffer and clears it.
// The clear stands in for the bulk-clear write port: by the time the
// buffer flips back to the draw side it reads all-backdrop.
func (lb *lineBuffer) readClear(sel, x int) uint16 {
	p := lb.buf[sel][x]
	lb.buf[sel][x] = 0
	return p
}

// writeGroup writes one aligned native group into the selected buffer.
// Only positions with the enable mask set are written; positions outside
// the screen are clipped.
func (lb *lineBuffer) writeGroup(sel, slot, width int, pix []uint16, mask []bool) {
	base := slot * width
	for i := 0; i < width; i++ {
		if !mask[i] {
			continue
		}
		x := base + i
		if x < 0 || x >= ScreenWidth {
			continue
		}
		lb.buf[sel][x] = pix[i]
	}
}

// pixel reads without clearing. Test and debug access.
func (lb *lineBuffer) pixel(sel, x int) uint16 {
	return lb.buf[sel][x]
}
