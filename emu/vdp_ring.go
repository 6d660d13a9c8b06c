package emu

import "sync/atomic"

// activeSprite is one draw record: a sprite found visible on a specific
// display line by the scan engine, consumed exactly once by the draw
// iterator one line later. Addresses are already offset for the sprite's
// current row, so the draw side never touches the attribute store.
type activeSprite struct {
	tilemapAddr    uint32 // tilemap entry address of the row's first tile column
	tileBitmapAddr uint32 // bitmap base offset to the pixel row within a tile
	lineBufferX    int    // destination X in native pixels
	tileCount      int
	xFlip          bool
}

// lineRing is the active-sprite hand-off between the two domains: a
// fixed arena indexed by monotonic head/tail counters (mod ringSize).
// The scan domain pushes at head, the draw domain reads a published span
// and frees it by advancing tail. The arena holds two display lines of
// records, so the head may never advance more than ringSize past tail;
// a push that would do so is an overflow and the record is dropped.
type lineRing struct {
	records [ringSize]activeSprite
	head    atomic.Uint32
	tail    atomic.Uint32
}

// push appends a record at head. Returns false, dropping the record,
// when the ring is full.
func (r *lineRing) push(rec activeSprite) bool {
	head := r.head.Load()
	if head-r.tail.Load() >= ringSize {
		return false
	}
	r.records[head%ringSize] = rec
	r.head.Store(head + 1)
	return true
}

// headIndex returns the monotonic index the next push will occupy.
func (r *lineRing) headIndex() uint32 {
	return r.head.Load()
}

// at reads the record at a monotonic index. The caller must hold a
// published span covering idx; records outside the live window are
// already logically freed.
func (r *lineRing) at(idx uint32) activeSprite {
	return r.records[idx%ringSize]
}

// free advances tail to the given monotonic index, releasing every
// record before it for reuse by the scan side. Tail only moves forward;
// the signed distance keeps the comparison valid when the monotonic
// counters wrap the uint32 range.
func (r *lineRing) free(upTo uint32) {
	if int32(upTo-r.tail.Load()) > 0 {
		r.tail.Store(upTo)
	}
}
