package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "eVDPState\x00\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + assetCRC(4) + dataCRC(4)
)

// Fixed serialization size for EmulatorBase inline state
const emulatorBaseSerializeSize = 4 // held buttons

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SerializeSize returns the total size in bytes of a save state. The
// state layout has no variable-length components.
func SerializeSize() int {
	return stateHeaderSize +
		VDPSerializeSize +
		emulatorBaseSerializeSize
}

// SerializeSize returns the total size in bytes needed for a save state.
func (e *EmulatorBase) SerializeSize() int {
	return SerializeSize()
}

// Serialize creates a save state and returns it as a byte slice.
func (e *EmulatorBase) Serialize() ([]byte, error) {
	size := e.SerializeSize()
	data := make([]byte, size)

	// Write header
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.assets.CRC)

	offset := stateHeaderSize

	// VDP
	if err := e.vdp.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += VDPSerializeSize

	// EmulatorBase inline state
	e.serializeBase(data, offset)

	// Calculate and write data CRC32 (over everything after header)
	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
// Region is NOT restored: the current region setting is preserved.
func (e *EmulatorBase) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize

	// VDP
	if err := e.vdp.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += VDPSerializeSize

	// EmulatorBase inline state
	e.deserializeBase(data, offset)

	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *EmulatorBase) VerifyState(data []byte) error {
	expectedSize := e.SerializeSize()
	if len(data) < expectedSize {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	assetCRC := binary.LittleEndian.Uint32(data[14:18])
	if assetCRC != e.assets.CRC {
		return errors.New("save state is for a different asset bundle")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}

// serializeBase writes EmulatorBase inline state to the data buffer.
func (e *EmulatorBase) serializeBase(data []byte, offset int) int {
	binary.LittleEndian.PutUint32(data[offset:], e.buttons)
	offset += 4
	return offset
}

// deserializeBase reads EmulatorBase inline state from the data buffer.
func (e *EmulatorBase) deserializeBase(data []byte, offset int) int {
	e.buttons = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	return offset
}
