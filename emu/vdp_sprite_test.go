package emu

import "testing"

func TestSprite_RowStride(t *testing.T) {
	tests := []struct {
		size, extra uint8
		want        int
	}{
		{0, 0, 8},
		{1, 0, 16},
		{2, 0, 32},
		{3, 0, 64},
		{3, 1, 72},
		{3, 2, 80},
		{3, 3, 96},
	}
	for _, tc := range tests {
		s := SpriteRecord{SizeClass: tc.size, ExtraClass: tc.extra}
		if got := s.rowStride(); got != tc.want {
			t.Errorf("rowStride(size=%d, extra=%d) = %d, want %d",
				tc.size, tc.extra, got, tc.want)
		}
	}
}

func TestScanMatch_IntersectionBounds(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 384, ScreenY: 104,
		Width: 1, Height: 1,
	})

	// 1 tile at 2x spans lines 104..119.
	for _, tc := range []struct {
		line  int
		match bool
	}{
		{103, false},
		{104, true},
		{119, true},
		{120, false},
	} {
		v.resetPipeline()
		v.scan.targetLine = tc.line
		v.scanMatch(0)
		got := v.ring.headIndex() == 1
		if got != tc.match {
			t.Errorf("line %d: match = %v, want %v", tc.line, got, tc.match)
		}
	}
}

func TestScanMatch_RecordAddresses(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 200, ScreenY: 100,
		Width: 2, Height: 2, SizeClass: 1, // stride 16
		TilemapAddr: 5, TilemapX: 3, TilemapY: 1,
		TileBitmapAddr: 32,
	})

	// Display line 127 is sprite row 27; at 2x that is source row 13:
	// tile row 1, pixel row 5.
	v.scan.targetLine = 127
	v.scanMatch(0)

	if v.ring.headIndex() != 1 {
		t.Fatal("expected a match")
	}
	rec := v.ring.at(0)
	wantTM := uint32(5 + (1+1)*16 + 3)
	if rec.tilemapAddr != wantTM {
		t.Errorf("tilemapAddr = %d, want %d", rec.tilemapAddr, wantTM)
	}
	wantBM := uint32(32 + 5*wordsPerRow)
	if rec.tileBitmapAddr != wantBM {
		t.Errorf("tileBitmapAddr = %d, want %d", rec.tileBitmapAddr, wantBM)
	}
	if rec.lineBufferX != 200 {
		t.Errorf("lineBufferX = %d, want 200", rec.lineBufferX)
	}
	if rec.tileCount != 2 {
		t.Errorf("tileCount = %d, want 2", rec.tileCount)
	}
}

func TestScanMatch_YFlipPixelRow(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 0, ScreenY: 100,
		Width: 1, Height: 1, YFlip: true,
	})

	// Top display line of a flipped sprite reads the bottom source row.
	v.scan.targetLine = 100
	v.scanMatch(0)

	rec := v.ring.at(0)
	if rec.tileBitmapAddr != 7*wordsPerRow {
		t.Errorf("tileBitmapAddr = %d, want %d", rec.tileBitmapAddr, 7*wordsPerRow)
	}
}

func TestScanMatch_StoreValidGate(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 0, ScreenY: 100,
		Width: 1, Height: 1,
	})

	v.scan.targetLine = 100
	v.scan.storeValid = false
	v.scanMatch(0)
	if v.ring.headIndex() != 0 {
		t.Error("match accepted while the store is invalid")
	}

	v.scan.storeValid = true
	v.scanMatch(0)
	if v.ring.headIndex() != 1 {
		t.Error("match rejected with a valid store")
	}
}

func TestScanMatch_ZeroSizeNeverMatches(t *testing.T) {
	v := newTestVDP(t, 2,
		SpriteRecord{ScreenY: 100, Width: 0, Height: 1},
		SpriteRecord{ScreenY: 100, Width: 1, Height: 0},
	)
	v.scan.targetLine = 100
	v.scanMatch(0)
	v.scanMatch(1)
	if v.ring.headIndex() != 0 {
		t.Error("zero-size sprite matched")
	}
}

func TestScanMatch_BlankingTargetNeverMatches(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 0, ScreenY: 719,
		Width: 1, Height: 4, // extends past the active area
	})
	v.scan.targetLine = 720
	v.scanMatch(0)
	if v.ring.headIndex() != 0 {
		t.Error("matched a blanking-interval target line")
	}
}

func TestVelocity_ExactAccumulation(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 100, ScreenY: 100,
		Width: 1, Height: 1,
		XVelocity: 3, YVelocity: -1,
	})

	// 16 integrations of 3/16 px must advance exactly 3 pixels, with no
	// residual error in the fraction.
	for i := 0; i < 16; i++ {
		v.integrateVelocity()
	}

	x, y := v.SpritePosition(0)
	if x != 103<<subPixelBits {
		t.Errorf("x = %d, want %d", x, 103<<subPixelBits)
	}
	if y != 99<<subPixelBits {
		t.Errorf("y = %d, want %d", y, 99<<subPixelBits)
	}
}

func TestVelocity_WrapNegative(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 0, ScreenY: 0,
		Width: 1, Height: 1,
		XVelocity: -1, YVelocity: -1,
	})
	v.integrateVelocity()

	spr := v.sprites.rec[0]
	if spr.ScreenX != ScreenWidth-1 || spr.ScreenSubX != subPixelMask {
		t.Errorf("x = (%d, %d), want (%d, %d)",
			spr.ScreenX, spr.ScreenSubX, ScreenWidth-1, subPixelMask)
	}
	if spr.ScreenY != ScreenHeight-1 || spr.ScreenSubY != subPixelMask {
		t.Errorf("y = (%d, %d), want (%d, %d)",
			spr.ScreenY, spr.ScreenSubY, ScreenHeight-1, subPixelMask)
	}
}

func TestVelocity_WrapPositive(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: ScreenWidth - 1, ScreenSubX: subPixelMask,
		ScreenY: 100,
		Width:   1, Height: 1,
		XVelocity: 1,
	})
	v.integrateVelocity()

	spr := v.sprites.rec[0]
	if spr.ScreenX != 0 || spr.ScreenSubX != 0 {
		t.Errorf("x = (%d, %d), want (0, 0)", spr.ScreenX, spr.ScreenSubX)
	}
}

func TestVelocity_QueuedMoveAppliesInWindow(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 100, ScreenY: 100,
		Width: 1, Height: 1,
	})

	v.QueueSpritePosition(0, 500<<subPixelBits|7, 300<<subPixelBits)

	// Nothing moves until the write-back window.
	if x, _ := v.SpritePosition(0); x != 100<<subPixelBits {
		t.Fatalf("position changed before integration: x = %d", x)
	}

	v.integrateVelocity()
	x, y := v.SpritePosition(0)
	if x != 500<<subPixelBits|7 {
		t.Errorf("x = %d, want %d", x, 500<<subPixelBits|7)
	}
	if y != 300<<subPixelBits {
		t.Errorf("y = %d, want %d", y, 300<<subPixelBits)
	}

	// The queue drains after one window.
	v.sprites.rec[0].ScreenX = 0
	v.sprites.rec[0].ScreenSubX = 0
	v.integrateVelocity()
	if x, _ := v.SpritePosition(0); x != 0 {
		t.Errorf("queued move reapplied: x = %d", x)
	}
	if len(v.sprites.pending) != 0 {
		t.Errorf("pending queue holds %d entries after the window", len(v.sprites.pending))
	}
}

func TestVelocity_FrameGatedDuringRun(t *testing.T) {
	v := newTestVDP(t, 2, SpriteRecord{
		ScreenX: 100, ScreenY: 100,
		Width: 1, Height: 1,
		XVelocity: 16, // one pixel per frame
	})

	v.RunFrame()
	if x, _ := v.SpritePosition(0); x != 101<<subPixelBits {
		t.Errorf("x = %d after one frame, want %d", x, 101<<subPixelBits)
	}
	v.RunFrame()
	if x, _ := v.SpritePosition(0); x != 102<<subPixelBits {
		t.Errorf("x = %d after two frames, want %d", x, 102<<subPixelBits)
	}
}
