package emu

import (
	"encoding/binary"
	"errors"
)

const (
	vdpSerializeVersion = 1

	// Component sizes in bytes. Derived from the fixed pipeline
	// geometry so the total tracks the struct layouts.
	spriteTableBytes = numSprites * spriteRecordWords * 2
	ringRecordBytes  = 4 + 4 + 4 + 4 + 1 // addrs, destX, tileCount, flip
	ringBytes        = ringSize*ringRecordBytes + 4 + 4
	syncBytes        = 8 + 8 // packed word + scan-side toggle
	lineBufBytes     = 2 * ScreenWidth * 2
	scanBytes        = 4 + 4 + 1 + 4 + 4 + 4 + 1 + 4 + 8
	burstBytes       = 1 + 1 + 1 + 4 + tileWidth*2 + tileWidth
	writeBytes       = 1 + 4 + maxNativeGroup*2 + maxNativeGroup
	packerBytes      = 1 + 4 + 4 + maxNativeGroup*2 + maxNativeGroup + writeBytes
	snapshotBytes    = 4 + 1 + 4 + 4
	drawBytes        = 3*8 + 1 + snapshotBytes + 1 + 4 + ringRecordBytes +
		4 + burstBytes + packerBytes

	// VDPSerializeSize is the total bytes needed for VDP serialization:
	// version, scale, sticky flags, then each pipeline component.
	VDPSerializeSize = 1 + 1 + 2 + spriteTableBytes + ringBytes + syncBytes +
		lineBufBytes + scanBytes + drawBytes
)

func putActiveSprite(buf []byte, offset int, rec *activeSprite) int {
	binary.LittleEndian.PutUint32(buf[offset:], rec.tilemapAddr)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], rec.tileBitmapAddr)
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(rec.lineBufferX)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(rec.tileCount)))
	offset += 4
	buf[offset] = boolByte(rec.xFlip)
	offset++
	return offset
}

func getActiveSprite(buf []byte, offset int, rec *activeSprite) int {
	rec.tilemapAddr = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4
	rec.tileBitmapAddr = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4
	rec.lineBufferX = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	rec.tileCount = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	rec.xFlip = buf[offset] != 0
	offset++
	return offset
}

func putBurst(buf []byte, offset int, b *groupBurst) int {
	buf[offset] = boolByte(b.valid)
	offset++
	buf[offset] = boolByte(b.first)
	offset++
	buf[offset] = boolByte(b.flush)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(b.destX)))
	offset += 4
	for i := 0; i < tileWidth; i++ {
		binary.LittleEndian.PutUint16(buf[offset:], b.pix[i])
		offset += 2
	}
	for i := 0; i < tileWidth; i++ {
		buf[offset] = boolByte(b.mask[i])
		offset++
	}
	return offset
}

func getBurst(buf []byte, offset int, b *groupBurst) int {
	b.valid = buf[offset] != 0
	offset++
	b.first = buf[offset] != 0
	offset++
	b.flush = buf[offset] != 0
	offset++
	b.destX = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	for i := 0; i < tileWidth; i++ {
		b.pix[i] = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}
	for i := 0; i < tileWidth; i++ {
		b.mask[i] = buf[offset] != 0
		offset++
	}
	return offset
}

// Serialize writes VDP state to buf. buf must be at least VDPSerializeSize bytes.
// Queued external position writes are not captured; they are transient
// input, like held buttons.
func (v *VDP) Serialize(buf []byte) error {
	if len(buf) < VDPSerializeSize {
		return errors.New("VDP serialize buffer too small")
	}

	offset := 0

	buf[offset] = vdpSerializeVersion
	offset++
	buf[offset] = uint8(v.scale)
	offset++
	buf[offset] = boolByte(v.spriteOverflow)
	offset++
	buf[offset] = boolByte(v.lineOverrun)
	offset++

	// Sprite attribute store, in bundle word layout
	for i := range v.sprites.rec {
		w := encodeSpriteWords(v.sprites.rec[i])
		for _, word := range w {
			binary.LittleEndian.PutUint16(buf[offset:], word)
			offset += 2
		}
	}

	// Active-sprite ring
	for i := range v.ring.records {
		offset = putActiveSprite(buf, offset, &v.ring.records[i])
	}
	binary.LittleEndian.PutUint32(buf[offset:], v.ring.head.Load())
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], v.ring.tail.Load())
	offset += 4

	// Pulse synchronizer
	binary.LittleEndian.PutUint64(buf[offset:], v.sync.word.Load())
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], v.sync.toggle)
	offset += 8

	// Line buffers
	for sel := 0; sel < 2; sel++ {
		for x := 0; x < ScreenWidth; x++ {
			binary.LittleEndian.PutUint16(buf[offset:], v.lbuf.buf[sel][x])
			offset += 2
		}
	}

	// Scan domain
	s := &v.scan
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(s.raster.sx)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(s.raster.sy)))
	offset += 4
	buf[offset] = uint8(s.sel)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(s.targetLine)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(s.matchCount)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], s.batchStart)
	offset += 4
	buf[offset] = boolByte(s.storeValid)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(s.settle)))
	offset += 4
	binary.LittleEndian.PutUint64(buf[offset:], s.frame)
	offset += 8

	// Draw domain
	d := &v.draw
	binary.LittleEndian.PutUint64(buf[offset:], d.rs.meta)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], d.rs.sync)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], d.rs.prev)
	offset += 8
	buf[offset] = uint8(d.sel)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(d.snap.line)))
	offset += 4
	buf[offset] = boolByte(d.snap.frameStart)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(d.snap.count)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], d.snap.start)
	offset += 4
	buf[offset] = uint8(d.state)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(d.recIdx)))
	offset += 4
	offset = putActiveSprite(buf, offset, &d.rec)
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(d.tileIdx)))
	offset += 4
	offset = putBurst(buf, offset, &d.in)

	// Packer
	pk := &d.pk
	buf[offset] = boolByte(pk.busy)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(pk.slot)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(pk.shift)))
	offset += 4
	for i := 0; i < maxNativeGroup; i++ {
		binary.LittleEndian.PutUint16(buf[offset:], pk.carry[i])
		offset += 2
	}
	for i := 0; i < maxNativeGroup; i++ {
		buf[offset] = boolByte(pk.carryMask[i])
		offset++
	}
	buf[offset] = boolByte(pk.out.valid)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(pk.out.slot)))
	offset += 4
	for i := 0; i < maxNativeGroup; i++ {
		binary.LittleEndian.PutUint16(buf[offset:], pk.out.pix[i])
		offset += 2
	}
	for i := 0; i < maxNativeGroup; i++ {
		buf[offset] = boolByte(pk.out.mask[i])
		offset++
	}

	return nil
}

// Deserialize reads VDP state from buf. buf must be at least VDPSerializeSize bytes.
func (v *VDP) Deserialize(buf []byte) error {
	if len(buf) < VDPSerializeSize {
		return errors.New("VDP deserialize buffer too small")
	}

	offset := 0

	version := buf[offset]
	offset++
	if version > vdpSerializeVersion {
		return errors.New("unsupported VDP state version")
	}

	scale := int(buf[offset])
	offset++
	switch scale {
	case 2:
		v.scaleShift = 1
	case 4:
		v.scaleShift = 2
	default:
		return errors.New("invalid pixel scale in VDP state")
	}
	v.scale = scale
	v.draw.pk.scale = scale
	v.draw.pk.group = tileWidth * scale

	v.spriteOverflow = buf[offset] != 0
	offset++
	v.lineOverrun = buf[offset] != 0
	offset++

	// Sprite attribute store
	for i := range v.sprites.rec {
		var w [spriteRecordWords]uint16
		for j := range w {
			w[j] = binary.LittleEndian.Uint16(buf[offset:])
			offset += 2
		}
		v.sprites.rec[i] = decodeSpriteWords(w)
	}
	v.sprites.pending = v.sprites.pending[:0]

	// Active-sprite ring
	for i := range v.ring.records {
		offset = getActiveSprite(buf, offset, &v.ring.records[i])
	}
	v.ring.head.Store(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	v.ring.tail.Store(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4

	// Pulse synchronizer
	v.sync.word.Store(binary.LittleEndian.Uint64(buf[offset:]))
	offset += 8
	v.sync.toggle = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8

	// Line buffers
	for sel := 0; sel < 2; sel++ {
		for x := 0; x < ScreenWidth; x++ {
			v.lbuf.buf[sel][x] = binary.LittleEndian.Uint16(buf[offset:])
			offset += 2
		}
	}

	// Scan domain
	s := &v.scan
	s.raster.sx = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	s.raster.sy = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	s.sel = int(buf[offset]) & 1
	offset++
	s.targetLine = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	s.matchCount = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	s.batchStart = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4
	s.storeValid = buf[offset] != 0
	offset++
	s.settle = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	s.frame = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8

	// Draw domain
	d := &v.draw
	d.rs.meta = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	d.rs.sync = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	d.rs.prev = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	d.sel = int(buf[offset]) & 1
	offset++
	d.snap.line = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	d.snap.frameStart = buf[offset] != 0
	offset++
	d.snap.count = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	d.snap.start = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4
	d.state = drawState(buf[offset])
	offset++
	d.recIdx = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	offset = getActiveSprite(buf, offset, &d.rec)
	d.tileIdx = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	offset = getBurst(buf, offset, &d.in)

	// Packer
	pk := &d.pk
	pk.busy = buf[offset] != 0
	offset++
	pk.slot = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	pk.shift = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	for i := 0; i < maxNativeGroup; i++ {
		pk.carry[i] = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}
	for i := 0; i < maxNativeGroup; i++ {
		pk.carryMask[i] = buf[offset] != 0
		offset++
	}
	pk.out.valid = buf[offset] != 0
	offset++
	pk.out.slot = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	for i := 0; i < maxNativeGroup; i++ {
		pk.out.pix[i] = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}
	for i := 0; i < maxNativeGroup; i++ {
		pk.out.mask[i] = buf[offset] != 0
		offset++
	}

	return nil
}
