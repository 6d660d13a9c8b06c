package emu

import (
	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*EmulatorBase)(nil)
var _ emucore.SaveStater = (*EmulatorBase)(nil)
var _ emucore.MemoryInspector = (*EmulatorBase)(nil)

// Flat address windows for ReadMemory. The 16-bit tables are exposed
// big-endian, two bytes per word; reads past a table's end return 0
// within its window.
const (
	tilemapMemStart = 0x000000
	tilemapMemEnd   = 0x00FFFF
	tilesMemStart   = 0x010000
	tilesMemEnd     = 0x02FFFF
	paletteMemStart = 0x030000
	paletteMemEnd   = 0x0307FF
	spriteMemStart  = 0x031000
	spriteMemEnd    = 0x0317FF
)

const defaultPixelScale = 2

// Sub-pixel position units moved per frame per held direction.
const inputStepSubPixels = 1 << subPixelBits

// EmulatorBase contains fields shared by all platform implementations.
type EmulatorBase struct {
	vdp    *VDP
	assets *Assets

	region Region
	timing RegionTiming

	// Held button state for player 1; sampled once per frame to steer
	// sprite 0.
	buttons uint32

	// The core has no audio unit; frontends get an empty buffer.
	audioBuffer []int16
}

// InitEmulatorBase parses an asset bundle and initializes the shared
// emulator components.
func InitEmulatorBase(bundle []byte, region Region) (EmulatorBase, error) {
	assets, err := ParseAssets(bundle)
	if err != nil {
		return EmulatorBase{}, err
	}

	vdp, err := NewVDP(assets, defaultPixelScale)
	if err != nil {
		return EmulatorBase{}, err
	}

	return EmulatorBase{
		vdp:         vdp,
		assets:      assets,
		region:      region,
		timing:      GetTimingForRegion(region),
		audioBuffer: make([]int16, 0),
	}, nil
}

// NewEmulator creates an emulator for frontends with no platform layer
// of their own.
func NewEmulator(bundle []byte, region Region) (*EmulatorBase, error) {
	base, err := InitEmulatorBase(bundle, region)
	if err != nil {
		return nil, err
	}
	return &base, nil
}

// RunFrame executes one frame: held input is folded into sprite 0's
// position, then both timing domains advance a full frame.
func (e *EmulatorBase) RunFrame() {
	e.applyInput()
	e.vdp.RunFrame()
}

// applyInput converts held directions into a queued position update for
// sprite 0. Updates land in the same write-back window as velocity
// integration, so steering never tears a frame.
func (e *EmulatorBase) applyInput() {
	if e.buttons == 0 {
		return
	}
	x, y := e.vdp.SpritePosition(0)
	if e.buttons&(1<<emucore.ButtonUp) != 0 {
		y -= inputStepSubPixels
	}
	if e.buttons&(1<<emucore.ButtonDown) != 0 {
		y += inputStepSubPixels
	}
	if e.buttons&(1<<emucore.ButtonLeft) != 0 {
		x -= inputStepSubPixels
	}
	if e.buttons&(1<<emucore.ButtonRight) != 0 {
		x += inputStepSubPixels
	}

	const wrapX = ScreenWidth << subPixelBits
	const wrapY = ScreenHeight << subPixelBits
	x = ((x % wrapX) + wrapX) % wrapX
	y = ((y % wrapY) + wrapY) % wrapY
	e.vdp.QueueSpritePosition(0, x, y)
}

// SetInput records held buttons for the given player. Only player 1 is
// wired; the d-pad steers sprite 0.
func (e *EmulatorBase) SetInput(player int, buttons uint32) {
	if player == 0 {
		e.buttons = buttons
	}
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (e *EmulatorBase) GetFramebuffer() []byte {
	return e.vdp.GetFramebuffer()
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *EmulatorBase) GetFramebufferStride() int {
	return e.vdp.GetStride()
}

// GetActiveHeight returns the active display height.
func (e *EmulatorBase) GetActiveHeight() int {
	return ScreenHeight
}

// GetAudioSamples returns the audio generated by the last frame. The
// display pipeline produces none.
func (e *EmulatorBase) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// GetRegion returns the emulator's region setting.
func (e *EmulatorBase) GetRegion() Region {
	return e.region
}

// SetRegion updates the emulator's region configuration. The raster is
// fixed, so only the reported region changes.
func (e *EmulatorBase) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
}

// GetTiming returns FPS and scanline count.
func (e *EmulatorBase) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// Reset restores the sprite table from the asset bundle and clears all
// pipeline state.
func (e *EmulatorBase) Reset() {
	e.vdp.Reset(e.assets)
}

// ReadStatus returns and clears the sticky overflow flags.
func (e *EmulatorBase) ReadStatus() (spriteOverflow, lineOverrun bool) {
	return e.vdp.ReadStatus()
}

// SetMetricsFunc installs a pipeline condition callback.
func (e *EmulatorBase) SetMetricsFunc(fn MetricsFunc) {
	e.vdp.SetMetricsFunc(fn)
}

// Close releases any resources held by the emulator.
func (e *EmulatorBase) Close() {}

// SetOption applies a core option change identified by key. A scale
// change rebuilds the packing pipeline, which clears all in-flight
// line state.
func (e *EmulatorBase) SetOption(key string, value string) {
	switch key {
	case "quad_scale":
		scale := 2
		if value == "true" {
			scale = 4
		}
		if scale == e.vdp.scale {
			return
		}
		if err := e.vdp.setScale(scale); err != nil {
			return
		}
		e.vdp.resetPipeline()
	}
}

// readTableByte reads one byte of a big-endian word table image.
func readTableByte(table []uint16, byteOff uint32) byte {
	idx := byteOff >> 1
	if idx >= uint32(len(table)) {
		return 0
	}
	w := table[idx]
	if byteOff&1 == 0 {
		return byte(w >> 8)
	}
	return byte(w)
}

// readMemoryByte reads one byte from the flat inspection map.
func (e *EmulatorBase) readMemoryByte(addr uint32) (byte, bool) {
	switch {
	case addr >= tilemapMemStart && addr <= tilemapMemEnd:
		return readTableByte(e.vdp.tilemap, addr-tilemapMemStart), true
	case addr >= tilesMemStart && addr <= tilesMemEnd:
		return readTableByte(e.vdp.tiles, addr-tilesMemStart), true
	case addr >= paletteMemStart && addr <= paletteMemEnd:
		off := addr - paletteMemStart
		idx := off >> 2
		if idx >= uint32(len(e.vdp.palette)) {
			return 0, true
		}
		shift := (3 - off&3) * 8
		return byte(e.vdp.palette[idx] >> shift), true
	case addr >= spriteMemStart && addr <= spriteMemEnd:
		off := addr - spriteMemStart
		idx := int(off / (spriteRecordWords * 2))
		if idx >= numSprites {
			return 0, true
		}
		w := encodeSpriteWords(e.vdp.sprites.rec[idx])
		wordOff := off % (spriteRecordWords * 2)
		return readTableByte(w[:], wordOff), true
	default:
		return 0, false
	}
}

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read.
func (e *EmulatorBase) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		b, ok := e.readMemoryByte(addr + uint32(i))
		if !ok {
			return count
		}
		buf[i] = b
		count++
	}
	return count
}
