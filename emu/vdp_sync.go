package emu

import "sync/atomic"

// lineSnapshot is the scan domain's per-line hand-off to the draw domain:
// the line now starting, whether it is also a frame start, and the span
// of active records scanned for the line the draw side must now render.
type lineSnapshot struct {
	line       int
	frameStart bool
	count      int
	start      uint32 // monotonic ring index of the batch's first record
}

// Packed snapshot layout inside the synchronizer word:
//
//	bit  0      toggle
//	bit  1      frame start
//	bits 2-13   line (12 bits)
//	bits 16-23  record count (8 bits)
//	bits 24-55  batch start index (32 bits)
const (
	syncToggleBit = 1 << 0
	syncFrameBit  = 1 << 1
	syncLineShift = 2
	syncLineMask  = 0xFFF
	syncCntShift  = 16
	syncCntMask   = 0xFF
	syncStartSh   = 24
)

// pulseSync carries line-start events from the scan domain to the draw
// domain using a toggle-and-resample handshake. The scan side flips the
// toggle bit and stores the packed snapshot in a single atomic word; the
// draw side passes the word through two resampling registers per tick and
// edge-detects the toggle, so it observes exactly one pulse per published
// event regardless of relative domain phase, and only ever decodes a
// snapshot that was stable when captured.
type pulseSync struct {
	word   atomic.Uint64
	toggle uint64 // scan side only
}

// publish makes a new snapshot visible to the draw domain. Scan side only.
func (ps *pulseSync) publish(line int, frameStart bool, count int, start uint32) {
	ps.toggle ^= syncToggleBit
	w := ps.toggle
	if frameStart {
		w |= syncFrameBit
	}
	w |= uint64(line&syncLineMask) << syncLineShift
	w |= uint64(count&syncCntMask) << syncCntShift
	w |= uint64(start) << syncStartSh
	ps.word.Store(w)
}

func unpackSnapshot(w uint64) lineSnapshot {
	return lineSnapshot{
		line:       int(w >> syncLineShift & syncLineMask),
		frameStart: w&syncFrameBit != 0,
		count:      int(w >> syncCntShift & syncCntMask),
		start:      uint32(w >> syncStartSh),
	}
}

// resampler is the draw-domain half of the handshake: two registers the
// published word moves through, one stage per draw tick, plus the last
// acknowledged toggle level.
type resampler struct {
	meta uint64 // first resampling register
	sync uint64 // second register; the only value the domain may decode
	prev uint64 // toggle level already acted on
}

// sample advances the resampling registers by one draw tick and reports
// whether a new line-start pulse arrived. The snapshot is decoded from
// the double-registered word, never from the live scan-side state.
func (rs *resampler) sample(ps *pulseSync) (bool, lineSnapshot) {
	raw := ps.word.Load()
	rs.sync, rs.meta = rs.meta, raw
	if rs.sync&syncToggleBit == rs.prev&syncToggleBit {
		return false, lineSnapshot{}
	}
	rs.prev = rs.sync
	return true, unpackSnapshot(rs.sync)
}
