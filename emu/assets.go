package emu

import (
	"bufio"
	"bytes"
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
)

// Assets is a parsed asset bundle: the three lookup tables and the
// initial sprite attribute image, loaded once at reset.
//
// A bundle is UTF-8 text in the same shape as the hex images a memory
// initializer consumes: `#` starts a comment, `@name` starts a section,
// and everything else is whitespace-separated hex words. Palette words
// are 24-bit (one per color), all other sections are 16-bit. The
// @sprites section holds eight words per record.
type Assets struct {
	Palette []uint32
	Tilemap []uint16
	Tiles   []uint16
	Sprites []SpriteRecord

	// CRC of the raw bundle bytes, used to match save states to the
	// bundle they were taken against.
	CRC uint32
}

// Section names accepted in a bundle.
const (
	sectionPalette = "palette"
	sectionTilemap = "tilemap"
	sectionTiles   = "tiles"
	sectionSprites = "sprites"
)

// ParseAssets parses an asset bundle.
func ParseAssets(data []byte) (*Assets, error) {
	a := &Assets{CRC: crc32.ChecksumIEEE(data)}

	var (
		section     string
		spriteWords []uint16
		sections    int
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		for _, tok := range strings.Fields(line) {
			if tok[0] == '@' {
				section = tok[1:]
				switch section {
				case sectionPalette, sectionTilemap, sectionTiles, sectionSprites:
					sections++
				default:
					return nil, fmt.Errorf("line %d: unknown section %q", lineNo, tok)
				}
				continue
			}
			if section == "" {
				return nil, fmt.Errorf("line %d: data before first section marker", lineNo)
			}

			bits := 16
			if section == sectionPalette {
				bits = 24
			}
			word, err := strconv.ParseUint(tok, 16, bits)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s word %q", lineNo, section, tok)
			}

			switch section {
			case sectionPalette:
				a.Palette = append(a.Palette, uint32(word))
			case sectionTilemap:
				a.Tilemap = append(a.Tilemap, uint16(word))
			case sectionTiles:
				a.Tiles = append(a.Tiles, uint16(word))
			case sectionSprites:
				spriteWords = append(spriteWords, uint16(word))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	if sections == 0 {
		return nil, fmt.Errorf("not an asset bundle: no section markers")
	}
	if len(a.Palette) > paletteSize {
		return nil, fmt.Errorf("palette has %d entries, limit %d", len(a.Palette), paletteSize)
	}
	if len(spriteWords)%spriteRecordWords != 0 {
		return nil, fmt.Errorf("sprite section has %d words, not a multiple of %d",
			len(spriteWords), spriteRecordWords)
	}
	if len(spriteWords)/spriteRecordWords > numSprites {
		return nil, fmt.Errorf("bundle declares %d sprites, limit %d",
			len(spriteWords)/spriteRecordWords, numSprites)
	}

	for i := 0; i < len(spriteWords); i += spriteRecordWords {
		var w [spriteRecordWords]uint16
		copy(w[:], spriteWords[i:i+spriteRecordWords])
		a.Sprites = append(a.Sprites, decodeSpriteWords(w))
	}
	return a, nil
}

// spriteRecordWords is the serialized sprite record size in 16-bit words.
const spriteRecordWords = 8

// Serialized sprite record layout, per word:
//
//	w0  subY<<12 | screenY          w4  tilemapAddr
//	w1  yFlip<<12 | extra<<10       w5  tilemapY<<8 | tilemapX
//	    | size<<8 | height          w6  tileBitmapAddr
//	w2  subX<<12 | screenX          w7  yVelocity<<8 | xVelocity
//	w3  xFlip<<12 | width
func decodeSpriteWords(w [spriteRecordWords]uint16) SpriteRecord {
	return SpriteRecord{
		ScreenY:    w[0] & 0x0FFF,
		ScreenSubY: uint8(w[0] >> 12),
		Height:     uint8(w[1]),
		SizeClass:  uint8(w[1]>>8) & 3,
		ExtraClass: uint8(w[1]>>10) & 3,
		YFlip:      w[1]&0x1000 != 0,

		ScreenX:    w[2] & 0x0FFF,
		ScreenSubX: uint8(w[2] >> 12),
		Width:      uint8(w[3]),
		XFlip:      w[3]&0x1000 != 0,

		TilemapAddr:    w[4],
		TilemapX:       uint8(w[5]),
		TilemapY:       uint8(w[5] >> 8),
		TileBitmapAddr: w[6],

		XVelocity: int8(w[7]),
		YVelocity: int8(w[7] >> 8),
	}
}

func encodeSpriteWords(s SpriteRecord) [spriteRecordWords]uint16 {
	var w [spriteRecordWords]uint16
	w[0] = uint16(s.ScreenSubY&0xF)<<12 | s.ScreenY&0x0FFF
	w[1] = uint16(s.ExtraClass&3)<<10 | uint16(s.SizeClass&3)<<8 | uint16(s.Height)
	if s.YFlip {
		w[1] |= 0x1000
	}
	w[2] = uint16(s.ScreenSubX&0xF)<<12 | s.ScreenX&0x0FFF
	w[3] = uint16(s.Width)
	if s.XFlip {
		w[3] |= 0x1000
	}
	w[4] = s.TilemapAddr
	w[5] = uint16(s.TilemapY)<<8 | uint16(s.TilemapX)
	w[6] = s.TileBitmapAddr
	w[7] = uint16(uint8(s.YVelocity))<<8 | uint16(uint8(s.XVelocity))
	return w
}
