package emu

const (
	pixelsPerWord = 4 // 4bpp pixels per 16-bit bitmap word

	// Widest pipeline build (4x quadrupling); the 2x build uses the
	// first 16 lanes of each vector.
	maxNativeGroup = tileWidth * 4
)

// groupBurst is the single-slot latch between the draw iterator and the
// packer: one fetched tile-group of 8 source pixels, or the explicit
// flush marker the iterator inserts between sprites.
type groupBurst struct {
	valid bool
	first bool // first group of a sprite: latches slot and shift
	flush bool // no pixels; drain the packer's carry
	destX int  // destination X in native pixels (first group only)
	pix   [tileWidth]uint16
	mask  [tileWidth]bool
}

// packedWrite is one aligned line-buffer write: a native group of pixels
// plus a per-pixel enable mask, at a fixed slot address.
type packedWrite struct {
	valid bool
	slot  int
	pix   [maxNativeGroup]uint16
	mask  [maxNativeGroup]bool
}

// packer is the rate doubler/quadrupler plus shift aligner. Each source
// pixel is replicated scale times, the result is concatenated with the
// previous tick's carry, and a full destination-width window is selected
// so every write lands on a fixed slot boundary. The cut point is the
// sprite's starting offset modulo the group width; pixels past the
// window spill into the carry for the next tick. Selection only, no
// arithmetic that can overflow.
type packer struct {
	scale int
	group int // native pixels per write, tileWidth*scale

	busy  bool // carry state live for the sprite in progress
	slot  int
	shift int

	carry     [maxNativeGroup]uint16
	carryMask [maxNativeGroup]bool

	out packedWrite
}

func (pk *packer) configure(scale int) {
	pk.scale = scale
	pk.group = tileWidth * scale
	pk.reset()
}

func (pk *packer) reset() {
	pk.busy = false
	pk.out.valid = false
	pk.carryMask = [maxNativeGroup]bool{}
}

// ready reports whether the packer can accept a new sprite's first
// group: the previous sprite's carry must have been flushed.
func (pk *packer) ready() bool {
	return !pk.busy
}

// consume folds one burst into the pipeline, producing at most one
// aligned write in pk.out. The caller guarantees pk.out is free.
func (pk *packer) consume(b *groupBurst) {
	if b.flush {
		pk.flushCarry()
		return
	}

	if b.first {
		pk.slot = b.destX / pk.group
		pk.shift = b.destX % pk.group
		pk.carryMask = [maxNativeGroup]bool{}
		pk.busy = true
	}

	// Rate expansion: each source pixel occupies scale native lanes.
	var exp [maxNativeGroup]uint16
	var expMask [maxNativeGroup]bool
	for i := 0; i < pk.group; i++ {
		exp[i] = b.pix[i/pk.scale]
		expMask[i] = b.mask[i/pk.scale]
	}

	// Window select: the first shift lanes complete the slot from the
	// carry, the rest come from the expanded burst. The burst's tail
	// becomes the next carry.
	pk.out.slot = pk.slot
	for j := 0; j < pk.group; j++ {
		if j < pk.shift {
			pk.out.pix[j] = pk.carry[j]
			pk.out.mask[j] = pk.carryMask[j]
		} else {
			pk.out.pix[j] = exp[j-pk.shift]
			pk.out.mask[j] = expMask[j-pk.shift]
		}
	}
	for j := 0; j < pk.group; j++ {
		if j < pk.shift {
			pk.carry[j] = exp[pk.group-pk.shift+j]
			pk.carryMask[j] = expMask[pk.group-pk.shift+j]
		} else {
			pk.carryMask[j] = false
		}
	}
	pk.out.valid = true
	pk.slot++
}

// flushCarry emits whatever the carry holds as a final partial write.
func (pk *packer) flushCarry() {
	any := false
	for j := 0; j < pk.group; j++ {
		if pk.carryMask[j] {
			any = true
			break
		}
	}
	if any {
		pk.out.slot = pk.slot
		pk.out.pix = pk.carry
		pk.out.mask = pk.carryMask
		pk.out.valid = true
	}
	pk.carryMask = [maxNativeGroup]bool{}
	pk.busy = false
}

// drawState is the iterator's per-line progression.
type drawState int

const (
	drawIdle drawState = iota
	drawLoading
	drawLoaded
	drawDrawing
	drawDone
)

// drawDomain is the render-clock side: the sprite draw iterator and the
// fetch/pack pipeline, one line behind the scan engine. All fields are
// private to the domain; its only inputs are the resampled line-start
// snapshots and the ring records they cover.
type drawDomain struct {
	rs  resampler
	sel int // line buffer select bit, locally latched

	snap    lineSnapshot
	state   drawState
	recIdx  int // position within the active batch
	rec     activeSprite
	tileIdx int

	in groupBurst // single-slot latch feeding the packer
	pk packer
}

// drawTick advances the draw domain by one render-clock tick.
func (v *VDP) drawTick() {
	d := &v.draw

	if pulse, snap := d.rs.sample(&v.sync); pulse {
		v.drawLineStart(snap)
	}

	// Stages fire consumer-first so each item advances one stage per
	// tick: the writer drains the packer's output slot, the packer
	// consumes the input latch, the iterator refills the latch. A
	// stage with nothing to do simply leaves its slot empty; nothing
	// ever stalls the tick itself.
	if d.pk.out.valid {
		v.lbuf.writeGroup(d.sel^1, d.pk.out.slot, d.pk.group, d.pk.out.pix[:], d.pk.out.mask[:])
		d.pk.out.valid = false
	}

	if !d.pk.out.valid && d.in.valid {
		d.pk.consume(&d.in)
		d.in.valid = false
	}

	if !d.in.valid {
		v.drawIterate()
	}
}

// drawLineStart adopts a new line snapshot. If the previous line's work
// is unfinished this is an overrun: the leftovers are abandoned and
// counted, never carried into the new line.
func (v *VDP) drawLineStart(snap lineSnapshot) {
	d := &v.draw

	switch d.state {
	case drawLoading, drawLoaded, drawDrawing:
		left := d.snap.count - d.recIdx
		v.lineOverrun = true
		v.countMetric(MetricLineOverrun, d.snap.line, left)
	}
	// Release the old batch in full, consumed or not.
	v.ring.free(d.snap.start + uint32(d.snap.count))

	d.snap = snap
	d.sel ^= 1
	d.in.valid = false
	d.pk.reset()
	d.recIdx = 0
	if snap.count == 0 {
		d.state = drawDone
	} else {
		d.state = drawLoading
	}
}

// drawIterate runs the iterator state machine for one tick, refilling
// the packer's input latch with the next tile-group, a flush marker, or
// nothing (an explicit not-valid tick).
func (v *VDP) drawIterate() {
	d := &v.draw

	switch d.state {
	case drawIdle, drawDone:
		// No work; the pipeline sees a not-valid tick.

	case drawLoading:
		if !d.pk.ready() {
			return
		}
		d.rec = v.ring.at(d.snap.start + uint32(d.recIdx))
		d.tileIdx = 0
		d.state = drawLoaded
		fallthrough

	case drawLoaded:
		v.fetchGroup(true)
		d.state = drawDrawing

	case drawDrawing:
		if d.tileIdx < d.rec.tileCount {
			v.fetchGroup(false)
			return
		}
		// Exactly one inactive cycle between sprites so the packer can
		// flush its carry before the next sprite latches a new shift.
		d.in = groupBurst{valid: true, flush: true}
		v.ring.free(d.snap.start + uint32(d.recIdx) + 1)
		d.recIdx++
		if d.recIdx < d.snap.count {
			d.state = drawLoading
		} else {
			d.state = drawDone
		}
	}
}

// fetchGroup looks up the tilemap entry and bitmap row for the current
// tile column and latches the combined pixels as the packer's next
// burst. Under X-flip the column order and the pixels within the group
// are both mirrored.
func (v *VDP) fetchGroup(first bool) {
	d := &v.draw

	col := d.tileIdx
	if d.rec.xFlip {
		col = d.rec.tileCount - 1 - col
	}

	entry := v.tilemapAt(d.rec.tilemapAddr + uint32(col))
	tile := uint32(entry) & tilemapTileMask
	pal := (entry >> tilemapPalShift) & tilemapPalMask

	base := d.rec.tileBitmapAddr + tile*wordsPerTile
	words := [wordsPerRow]uint16{v.tileWordAt(base), v.tileWordAt(base + 1)}

	var b groupBurst
	b.valid = true
	b.first = first
	if first {
		b.destX = d.rec.lineBufferX
	}
	for i := 0; i < tileWidth; i++ {
		w := words[i/pixelsPerWord]
		nib := w >> uint(12-4*(i%pixelsPerWord)) & 0xF
		b.pix[i] = pal<<4 | nib
		b.mask[i] = true
	}
	if d.rec.xFlip {
		for i, j := 0, tileWidth-1; i < j; i, j = i+1, j-1 {
			b.pix[i], b.pix[j] = b.pix[j], b.pix[i]
		}
	}

	d.in = b
	d.tileIdx++
}
