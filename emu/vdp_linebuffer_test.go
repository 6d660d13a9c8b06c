package emu

import "testing"

func TestLineBuffer_ReadClears(t *testing.T) {
	var lb lineBuffer
	lb.buf[0][50] = 0x123

	if got := lb.readClear(0, 50); got != 0x123 {
		t.Errorf("readClear = %#x, want 0x123", got)
	}
	if got := lb.readClear(0, 50); got != 0 {
		t.Errorf("second readClear = %#x, want 0", got)
	}
}

func TestLineBuffer_BuffersAreIndependent(t *testing.T) {
	var lb lineBuffer
	lb.buf[0][10] = 1
	lb.buf[1][10] = 2

	if lb.readClear(0, 10) != 1 || lb.readClear(1, 10) != 2 {
		t.Error("buffer select mixed up the two halves")
	}
}

func TestLineBuffer_WriteGroupMask(t *testing.T) {
	var lb lineBuffer
	pix := []uint16{1, 2, 3, 4}
	mask := []bool{true, false, true, false}
	lb.buf[0][1] = 99

	lb.writeGroup(0, 0, 4, pix, mask)

	want := []uint16{1, 99, 3, 0}
	for i, w := range want {
		if got := lb.pixel(0, i); got != w {
			t.Errorf("pixel %d = %d, want %d", i, got, w)
		}
	}
}

func TestLineBuffer_WriteGroupClipsAtScreenEdge(t *testing.T) {
	var lb lineBuffer
	group := 16
	pix := make([]uint16, group)
	mask := make([]bool, group)
	for i := range pix {
		pix[i] = 7
		mask[i] = true
	}

	// Last slot of the line; nothing may wrap or panic.
	lb.writeGroup(0, ScreenWidth/group-1, group, pix, mask)
	if lb.pixel(0, ScreenWidth-1) != 7 {
		t.Error("last on-screen pixel not written")
	}

	lb.writeGroup(0, ScreenWidth/group, group, pix, mask)
	if lb.pixel(0, 0) != 0 {
		t.Error("off-screen write wrapped to column 0")
	}
}
