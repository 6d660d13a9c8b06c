package emu

import "testing"

const testBundle = `# demo bundle
@palette
000000 ff0000 00ff00 0000ff

@tilemap
0401 0401 # two columns of palette 1, tile 1
@tiles
0000 0000 0000 0000 0000 0000 0000 0000
0000 0000 0000 0000 0000 0000 0000 0000
1111 1111 1111 1111 1111 1111 1111 1111
1111 1111 1111 1111 1111 1111 1111 1111
@sprites
0068 0101 0180 0001 0000 0000 0000 0000
`

func TestParseAssets_Sections(t *testing.T) {
	a, err := ParseAssets([]byte(testBundle))
	if err != nil {
		t.Fatalf("ParseAssets failed: %v", err)
	}

	if len(a.Palette) != 4 {
		t.Errorf("palette entries = %d, want 4", len(a.Palette))
	}
	if a.Palette[1] != 0xFF0000 {
		t.Errorf("palette[1] = %#x, want 0xff0000", a.Palette[1])
	}
	if len(a.Tilemap) != 2 || a.Tilemap[0] != 0x0401 {
		t.Errorf("tilemap = %v, want two 0x0401 entries", a.Tilemap)
	}
	if len(a.Tiles) != 2*wordsPerTile {
		t.Errorf("tile words = %d, want %d", len(a.Tiles), 2*wordsPerTile)
	}
	if len(a.Sprites) != 1 {
		t.Fatalf("sprites = %d, want 1", len(a.Sprites))
	}

	s := a.Sprites[0]
	if s.ScreenY != 0x68 || s.ScreenX != 0x180 {
		t.Errorf("position = (%d, %d), want (384, 104)", s.ScreenX, s.ScreenY)
	}
	if s.Height != 1 || s.Width != 1 {
		t.Errorf("size = %dx%d tiles, want 1x1", s.Width, s.Height)
	}
	if s.SizeClass != 1 {
		t.Errorf("size class = %d, want 1", s.SizeClass)
	}

	if a.CRC == 0 {
		t.Error("bundle CRC not computed")
	}
}

func TestParseAssets_CommentsAnywhere(t *testing.T) {
	a, err := ParseAssets([]byte("# leading\n@palette # trailing\n123456 # after data\n"))
	if err != nil {
		t.Fatalf("ParseAssets failed: %v", err)
	}
	if len(a.Palette) != 1 || a.Palette[0] != 0x123456 {
		t.Errorf("palette = %v, want [0x123456]", a.Palette)
	}
}

func TestParseAssets_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"no sections", "1234 5678\n"},
		{"data before section", "# x\nabcd\n@tiles\n"},
		{"unknown section", "@bogus\n"},
		{"bad hex", "@tiles\nzzzz\n"},
		{"palette word too wide", "@palette\n1234567\n"},
		{"tile word too wide", "@tiles\n12345\n"},
		{"ragged sprite words", "@sprites\n0001 0002 0003\n"},
	}
	for _, tc := range tests {
		if _, err := ParseAssets([]byte(tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestParseAssets_TooManySprites(t *testing.T) {
	data := "@sprites\n"
	for i := 0; i < (numSprites+1)*spriteRecordWords; i++ {
		data += "0000 "
	}
	if _, err := ParseAssets([]byte(data)); err == nil {
		t.Error("expected error for oversized sprite table")
	}
}

func TestSpriteWords_RoundTrip(t *testing.T) {
	records := []SpriteRecord{
		{},
		{
			ScreenX: 1279, ScreenSubX: 15, ScreenY: 719, ScreenSubY: 9,
			Width: 16, Height: 8,
			SizeClass: 3, ExtraClass: 2,
			XFlip: true, YFlip: true,
			TilemapAddr: 0xBEEF, TilemapX: 7, TilemapY: 200,
			TileBitmapAddr: 0x1234,
			XVelocity:      -128, YVelocity: 127,
		},
		{ScreenX: 500, XVelocity: -1, YVelocity: 1},
	}
	for i, want := range records {
		got := decodeSpriteWords(encodeSpriteWords(want))
		if got != want {
			t.Errorf("record %d: round trip = %+v, want %+v", i, got, want)
		}
	}
}

func TestParseAssets_CRCDiffersPerBundle(t *testing.T) {
	a, err := ParseAssets([]byte(testBundle))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseAssets([]byte(testBundle + "# extra\n"))
	if err != nil {
		t.Fatal(err)
	}
	if a.CRC == b.CRC {
		t.Error("different bundles share a CRC")
	}
}
