package emu

import (
	"fmt"
	"image"
)

// Core name and version reported to frontends.
const (
	Name    = "evdp"
	Version = "0.1.0"
)

// Display geometry: fixed 720p60 (CEA-861) raster.
const (
	ScreenWidth  = 1280
	ScreenHeight = 720

	hTotal = 1650 // pixel-clock ticks per display line
	vTotal = 750  // display lines per frame

	// The render clock runs at half the pixel clock.
	drawTicksPerLine = hTotal / 2
)

// Tile and table geometry.
const (
	tileWidth    = 8 // source pixels per tile row
	tileRows     = 8
	wordsPerRow  = 2 // 16-bit nibble-packed words per tile row
	wordsPerTile = tileRows * wordsPerRow

	numSprites  = 128
	ringSize    = 128 // two display lines of active records
	paletteSize = 512 // 32 palettes x 16 colors

	// Tilemap entry: bits 9:0 tile index, bits 14:10 palette select.
	tilemapTileMask = 0x03FF
	tilemapPalShift = 10
	tilemapPalMask  = 0x1F

	subPixelBits = 4 // fractional position bits (1/16 pixel)
	subPixelMask = 1<<subPixelBits - 1

	// Scan lines after the velocity write-back window before the
	// store-valid flag is reasserted and matching resumes.
	settleLines = 2
)

// Tilemap row strides in tiles, selected by the two 2-bit size classes in
// each sprite record. The effective stride is the sum of one entry from
// each table, so a 64-wide map with a 16-tile extra stride gives the
// 80-column layout used for text modes.
var (
	mainStride  = [4]int{8, 16, 32, 64}
	extraStride = [4]int{0, 8, 16, 32}
)

// MetricEvent identifies a reportable pipeline condition.
type MetricEvent int

const (
	// MetricSpriteOverflow: a scan match was dropped because the active
	// ring had no room before the draw side caught up.
	MetricSpriteOverflow MetricEvent = iota

	// MetricLineOverrun: the draw side ran out of render ticks before
	// finishing a line's active list; the remaining sprites were abandoned.
	MetricLineOverrun
)

// MetricsFunc receives pipeline condition reports. line is the display
// line the condition applies to, count the number of affected records.
type MetricsFunc func(event MetricEvent, line, count int)

// VDP is the tile/sprite video display processor. It renders 8x8 4bpp
// tiles referenced by up to 128 sprite records into a double-buffered
// line buffer, across two concurrent timing domains: the scan domain
// matches sprites two lines ahead of the beam and consumes the line
// buffer, the draw domain fetches and packs pixels one line ahead.
type VDP struct {
	// Lookup tables, loaded from the asset bundle. Read-only after reset.
	palette []uint32 // index -> 24-bit RGB
	tilemap []uint16 // palette select + tile index entries
	tiles   []uint16 // nibble-packed tile bitmap rows

	sprites spriteStore

	// Pixel replication factor, 2 or 4. One 8-pixel source tile-group
	// expands to 8*scale native pixels, which is also the line buffer
	// write port width.
	scale      int
	scaleShift uint

	ring lineRing
	sync pulseSync
	lbuf lineBuffer

	scan scanDomain
	draw drawDomain

	framebuffer *image.RGBA

	// Sticky status flags, cleared by ReadStatus.
	spriteOverflow bool
	lineOverrun    bool

	metricsFunc MetricsFunc
}

// NewVDP creates a VDP from a parsed asset bundle. scale selects the
// pixel doubling (2) or quadrupling (4) build of the packing pipeline.
func NewVDP(assets *Assets, scale int) (*VDP, error) {
	v := &VDP{
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
	}
	if err := v.setScale(scale); err != nil {
		return nil, err
	}

	v.palette = make([]uint32, paletteSize)
	copy(v.palette, assets.Palette)
	v.tilemap = make([]uint16, len(assets.Tilemap))
	copy(v.tilemap, assets.Tilemap)
	v.tiles = make([]uint16, len(assets.Tiles))
	copy(v.tiles, assets.Tiles)

	v.sprites.load(assets.Sprites)
	v.resetPipeline()
	return v, nil
}

func (v *VDP) setScale(scale int) error {
	switch scale {
	case 2:
		v.scaleShift = 1
	case 4:
		v.scaleShift = 2
	default:
		return fmt.Errorf("unsupported pixel scale %d (must be 2 or 4)", scale)
	}
	v.scale = scale
	v.draw.pk.configure(scale)
	return nil
}

// nativeGroup returns the line buffer write port width in native pixels.
func (v *VDP) nativeGroup() int {
	return tileWidth * v.scale
}

// Reset restores load-time state: sprite records revert to the asset
// image, all pipeline and buffer state clears. Lookup tables are
// unaffected; nothing else persists across resets.
func (v *VDP) Reset(assets *Assets) {
	v.sprites.load(assets.Sprites)
	v.resetPipeline()
}

func (v *VDP) resetPipeline() {
	v.ring = lineRing{}
	v.sync = pulseSync{}
	v.lbuf = lineBuffer{}
	v.scan = scanDomain{storeValid: true}
	v.draw = drawDomain{state: drawIdle}
	v.draw.pk.configure(v.scale)
	v.spriteOverflow = false
	v.lineOverrun = false
}

// RunFrame advances both timing domains by one full frame. The domains
// are stepped a display line at a time: 1650 scan ticks, then 825 draw
// ticks. All cross-domain traffic goes through the pulse synchronizer,
// the ring indices and the disjoint halves of the line buffer, so the
// same code is safe under any interleaving.
func (v *VDP) RunFrame() {
	for line := 0; line < vTotal; line++ {
		v.stepLine()
	}
}

// stepLine advances both domains by one display line.
func (v *VDP) stepLine() {
	for t := 0; t < hTotal; t++ {
		v.scanTick()
	}
	for t := 0; t < drawTicksPerLine; t++ {
		v.drawTick()
	}
}

// ReadStatus returns and clears the sticky overflow flags.
func (v *VDP) ReadStatus() (spriteOverflow, lineOverrun bool) {
	spriteOverflow = v.spriteOverflow
	lineOverrun = v.lineOverrun
	v.spriteOverflow = false
	v.lineOverrun = false
	return
}

// SetMetricsFunc installs a callback fired on overflow and overrun
// conditions. Pass nil to disable.
func (v *VDP) SetMetricsFunc(fn MetricsFunc) {
	v.metricsFunc = fn
}

func (v *VDP) countMetric(event MetricEvent, line, count int) {
	if v.metricsFunc != nil {
		v.metricsFunc(event, line, count)
	}
}

// tilemapAt reads a tilemap entry. Out-of-range addresses read as zero,
// matching an unmapped table region.
func (v *VDP) tilemapAt(addr uint32) uint16 {
	if addr >= uint32(len(v.tilemap)) {
		return 0
	}
	return v.tilemap[addr]
}

// tileWordAt reads one nibble-packed bitmap word.
func (v *VDP) tileWordAt(addr uint32) uint16 {
	if addr >= uint32(len(v.tiles)) {
		return 0
	}
	return v.tiles[addr]
}

// GetFramebuffer returns the raw RGBA pixel data.
func (v *VDP) GetFramebuffer() []byte {
	return v.framebuffer.Pix
}

// GetStride returns the stride (bytes per row) of the framebuffer.
func (v *VDP) GetStride() int {
	return v.framebuffer.Stride
}
