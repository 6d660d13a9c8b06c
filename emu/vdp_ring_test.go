package emu

import "testing"

func TestRing_PushAndReadInOrder(t *testing.T) {
	var r lineRing
	for i := 0; i < 5; i++ {
		if !r.push(activeSprite{lineBufferX: i}) {
			t.Fatalf("push %d rejected on an empty ring", i)
		}
	}
	for i := uint32(0); i < 5; i++ {
		if got := r.at(i).lineBufferX; got != int(i) {
			t.Errorf("at(%d).lineBufferX = %d, want %d", i, got, i)
		}
	}
}

func TestRing_OverflowAtCapacity(t *testing.T) {
	var r lineRing
	for i := 0; i < ringSize; i++ {
		if !r.push(activeSprite{}) {
			t.Fatalf("push %d rejected below capacity", i)
		}
	}
	if r.push(activeSprite{}) {
		t.Error("push accepted on a full ring")
	}
}

func TestRing_FreeMakesRoom(t *testing.T) {
	var r lineRing
	for i := 0; i < ringSize; i++ {
		r.push(activeSprite{})
	}
	r.free(10)
	for i := 0; i < 10; i++ {
		if !r.push(activeSprite{lineBufferX: 1000 + i}) {
			t.Fatalf("push %d rejected after freeing 10 records", i)
		}
	}
	if r.push(activeSprite{}) {
		t.Error("push accepted past the freed span")
	}
	// Monotonic indexing survives wraparound.
	if got := r.at(uint32(ringSize)).lineBufferX; got != 1000 {
		t.Errorf("at(%d).lineBufferX = %d, want 1000", ringSize, got)
	}
}

func TestRing_FreeNeverMovesBackward(t *testing.T) {
	var r lineRing
	for i := 0; i < 20; i++ {
		r.push(activeSprite{})
	}
	r.free(15)
	r.free(10)
	if got := r.tail.Load(); got != 15 {
		t.Errorf("tail = %d, want 15", got)
	}
}

func TestRing_FreeCrossesCounterWrap(t *testing.T) {
	var r lineRing
	start := ^uint32(0) - 4 // five pushes from the uint32 wrap
	r.head.Store(start)
	r.tail.Store(start)

	for i := 0; i < 10; i++ {
		if !r.push(activeSprite{lineBufferX: i}) {
			t.Fatalf("push %d rejected near the counter wrap", i)
		}
	}
	r.free(start + 10)
	if got := r.tail.Load(); got != start+10 {
		t.Fatalf("tail = %d, want %d", got, start+10)
	}

	// The ring stays live on the far side of the wrap.
	for i := 0; i < ringSize; i++ {
		if !r.push(activeSprite{}) {
			t.Fatalf("push %d rejected after freeing across the wrap", i)
		}
	}
	if r.push(activeSprite{}) {
		t.Error("push accepted on a full ring after the wrap")
	}
}

func TestRing_HeadIndexIsMonotonic(t *testing.T) {
	var r lineRing
	for i := 0; i < ringSize; i++ {
		r.push(activeSprite{})
	}
	r.free(uint32(ringSize))
	for i := 0; i < 10; i++ {
		r.push(activeSprite{})
	}
	if got := r.headIndex(); got != uint32(ringSize+10) {
		t.Errorf("headIndex = %d, want %d", got, ringSize+10)
	}
}
