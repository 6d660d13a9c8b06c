package emu

// rasterState is the display-timing generator's per-tick output: beam
// position, data enable, the line/frame boundary pulses, and the one-
// and two-line-ahead vertical positions consumed by the look-ahead scan.
type rasterState struct {
	sx, sy     int
	dataEnable bool
	lineStart  bool
	lineEnd    bool
	frameEnd   bool
	syPlus1    int
	syPlus2    int
}

// raster is the 720p60 position counter pair.
type raster struct {
	sx, sy int
}

// tick reports the state for the current position, then advances.
func (r *raster) tick() rasterState {
	st := rasterState{
		sx:         r.sx,
		sy:         r.sy,
		dataEnable: r.sx < ScreenWidth && r.sy < ScreenHeight,
		lineStart:  r.sx == 0,
		lineEnd:    r.sx == hTotal-1,
		frameEnd:   r.sx == hTotal-1 && r.sy == ScreenHeight-1,
		syPlus1:    (r.sy + 1) % vTotal,
		syPlus2:    (r.sy + 2) % vTotal,
	}

	r.sx++
	if r.sx == hTotal {
		r.sx = 0
		r.sy++
		if r.sy == vTotal {
			r.sy = 0
		}
	}
	return st
}

// scanDomain is the display-clock side of the pipeline: raster timing,
// the look-ahead sprite scan, scan-out from the on-screen line buffer,
// and the frame-gated velocity write-back. All fields are private to
// the domain; the draw side sees only the published snapshots.
type scanDomain struct {
	raster raster

	sel int // line buffer select bit, locally latched

	targetLine int    // line being scanned, two ahead of the beam
	matchCount int    // records appended for targetLine so far
	batchStart uint32 // ring head index when the current batch began

	// storeValid gates matching. It drops at the frame boundary while
	// velocity write-back runs and is reasserted after settleLines
	// line starts.
	storeValid bool
	settle     int

	frame uint64
}

// scanTick advances the scan domain by one pixel-clock tick.
func (v *VDP) scanTick() {
	s := &v.scan
	st := s.raster.tick()

	if st.lineStart {
		v.scanLineStart(st)
	}

	// One sprite record evaluated per tick, in index order, against the
	// two-lines-ahead target.
	if st.sx < numSprites {
		v.scanMatch(st.sx)
	}

	// Scan-out: one pixel per tick during active display. The read also
	// clears the entry, so the buffer comes back around blank when it
	// becomes the draw side's off-screen target.
	if st.dataEnable {
		v.emitPixel(st.sx, st.sy, v.lbuf.readClear(s.sel, st.sx))
	}

	if st.frameEnd {
		v.scanFrameEnd()
	}
}

// scanLineStart publishes the just-completed batch to the draw domain,
// flips the locally latched buffer select, and opens the next batch.
func (v *VDP) scanLineStart(st rasterState) {
	s := &v.scan

	v.sync.publish(st.sy, st.sy == 0, s.matchCount, s.batchStart)
	s.sel ^= 1

	s.batchStart = v.ring.headIndex()
	s.matchCount = 0
	s.targetLine = st.syPlus2

	if !s.storeValid {
		s.settle--
		if s.settle <= 0 {
			s.storeValid = true
		}
	}
}

// scanFrameEnd runs at the end of the last active line: the velocity
// write-back window. Matching stays disabled until the settle delay
// after the write-back has elapsed.
func (v *VDP) scanFrameEnd() {
	s := &v.scan
	s.storeValid = false
	s.settle = settleLines
	s.frame++
	v.integrateVelocity()
}

// emitPixel resolves a line buffer color index through the palette into
// the RGBA framebuffer. Index 0 is the backdrop entry.
func (v *VDP) emitPixel(x, y int, index uint16) {
	c := v.palette[index&(paletteSize-1)]
	pix := v.framebuffer.Pix
	p := y*v.framebuffer.Stride + x*4
	pix[p] = uint8(c >> 16)
	pix[p+1] = uint8(c >> 8)
	pix[p+2] = uint8(c)
	pix[p+3] = 0xFF
}
