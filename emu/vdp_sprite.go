package emu

// SpriteRecord is one entry of the sprite attribute store. Width and
// Height are in tiles; the on-screen extent in native pixels is
// width/height << (3 + log2(scale)). Velocities are signed sub-pixel
// (1/16 pixel) deltas applied once per frame during the write-back
// window after the beam leaves active display.
type SpriteRecord struct {
	ScreenY    uint16 // native pixel Y, 0-719 after wrap
	ScreenSubY uint8  // fractional Y, 4 bits
	Height     uint8  // tiles
	TilemapY   uint8  // tile row offset into the sprite's tilemap page
	SizeClass  uint8  // 0-3, indexes mainStride
	ExtraClass uint8  // 0-3, indexes extraStride
	YFlip      bool

	ScreenX    uint16 // native pixel X, 0-1279 after wrap
	ScreenSubX uint8
	Width      uint8 // tiles
	TilemapX   uint8
	XFlip      bool

	TilemapAddr    uint16 // base word address into the tilemap table
	TileBitmapAddr uint16 // base word address into the tile bitmap table

	XVelocity int8 // sub-pixels per frame
	YVelocity int8
}

// rowStride returns the sprite's tilemap row stride in tiles.
func (s *SpriteRecord) rowStride() int {
	return mainStride[s.SizeClass&3] + extraStride[s.ExtraClass&3]
}

// spriteMove is a queued external position update, applied in the same
// frame-gated window as velocity integration so the scan engine never
// observes a half-written record.
type spriteMove struct {
	index int
	x, y  int // combined pixel<<subPixelBits | sub-pixel values
}

// spriteStore is the sprite attribute table: one scan read per tick,
// write access only inside the per-frame write-back window.
type spriteStore struct {
	rec     [numSprites]SpriteRecord
	pending []spriteMove
}

func (st *spriteStore) load(records []SpriteRecord) {
	st.rec = [numSprites]SpriteRecord{}
	copy(st.rec[:], records)
	st.pending = st.pending[:0]
}

// queueMove records an external position write for sprite index, to be
// applied at the next frame boundary.
func (st *spriteStore) queueMove(index, x, y int) {
	if index < 0 || index >= numSprites {
		return
	}
	st.pending = append(st.pending, spriteMove{index: index, x: x, y: y})
}

// scanMatch evaluates one sprite record against the scan target line and
// appends an active record on intersection. Called once per scan tick
// while the store-valid flag is asserted; the record index advances with
// the tick counter so the whole store is walked in index order during
// the first 128 ticks of each line.
func (v *VDP) scanMatch(index int) {
	s := &v.scan
	if !s.storeValid || s.targetLine >= ScreenHeight {
		return
	}

	spr := &v.sprites.rec[index]
	if spr.Height == 0 || spr.Width == 0 {
		return
	}
	extent := int(spr.Height) << (3 + v.scaleShift)
	y := int(spr.ScreenY)
	if s.targetLine < y || s.targetLine >= y+extent {
		return
	}

	// Row within the sprite, mirrored under Y-flip, then reduced to a
	// source bitmap row. Every source row covers scale display lines.
	row := s.targetLine - y
	if spr.YFlip {
		row = extent - 1 - row
	}
	srcRow := row >> v.scaleShift
	tileRow := srcRow >> 3
	pixRow := srcRow & 7

	rowAddr := uint32(spr.TilemapAddr) +
		uint32(int(spr.TilemapY)+tileRow)*uint32(spr.rowStride()) +
		uint32(spr.TilemapX)

	rec := activeSprite{
		tilemapAddr:    rowAddr,
		tileBitmapAddr: uint32(spr.TileBitmapAddr) + uint32(pixRow)*wordsPerRow,
		lineBufferX:    int(spr.ScreenX),
		tileCount:      int(spr.Width),
		xFlip:          spr.XFlip,
	}
	if !v.ring.push(rec) {
		v.spriteOverflow = true
		v.countMetric(MetricSpriteOverflow, s.targetLine, 1)
		return
	}
	s.matchCount++
}

// integrateVelocity applies each sprite's per-frame velocity to its
// position, wrapping at the screen dimensions in sub-pixel units. The
// addition is exact: repeated integration accumulates no rounding error.
// Queued external position writes land in the same window.
func (v *VDP) integrateVelocity() {
	const (
		wrapX = ScreenWidth << subPixelBits
		wrapY = ScreenHeight << subPixelBits
	)

	for i := range v.sprites.rec {
		spr := &v.sprites.rec[i]
		if spr.XVelocity == 0 && spr.YVelocity == 0 {
			continue
		}

		x := int(spr.ScreenX)<<subPixelBits | int(spr.ScreenSubX)
		x = ((x+int(spr.XVelocity))%wrapX + wrapX) % wrapX
		spr.ScreenX = uint16(x >> subPixelBits)
		spr.ScreenSubX = uint8(x & subPixelMask)

		y := int(spr.ScreenY)<<subPixelBits | int(spr.ScreenSubY)
		y = ((y+int(spr.YVelocity))%wrapY + wrapY) % wrapY
		spr.ScreenY = uint16(y >> subPixelBits)
		spr.ScreenSubY = uint8(y & subPixelMask)
	}

	for _, m := range v.sprites.pending {
		spr := &v.sprites.rec[m.index]
		x := ((m.x % wrapX) + wrapX) % wrapX
		y := ((m.y % wrapY) + wrapY) % wrapY
		spr.ScreenX = uint16(x >> subPixelBits)
		spr.ScreenSubX = uint8(x & subPixelMask)
		spr.ScreenY = uint16(y >> subPixelBits)
		spr.ScreenSubY = uint8(y & subPixelMask)
	}
	v.sprites.pending = v.sprites.pending[:0]
}

// SpritePosition returns sprite index's position in combined sub-pixel
// units (pixel<<4 | sub-pixel). Intended for external updaters between
// frames; reads during a running frame may observe the pre-integration
// value.
func (v *VDP) SpritePosition(index int) (x, y int) {
	if index < 0 || index >= numSprites {
		return 0, 0
	}
	spr := &v.sprites.rec[index]
	x = int(spr.ScreenX)<<subPixelBits | int(spr.ScreenSubX)
	y = int(spr.ScreenY)<<subPixelBits | int(spr.ScreenSubY)
	return
}

// QueueSpritePosition schedules an absolute position write (combined
// sub-pixel units) through the store's write port. The write takes
// effect at the next frame-gated write-back window.
func (v *VDP) QueueSpritePosition(index, x, y int) {
	v.sprites.queueMove(index, x, y)
}
