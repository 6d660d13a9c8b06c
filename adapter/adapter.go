package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/evdp/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the tile/sprite display
// processor.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "evdp",
		ConsoleName:     "Tile Sprite VDP",
		Extensions:      []string{".vdp", ".hex"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     16.0 / 9.0,
		SampleRate:      48000,
		Buttons:         []emucore.Button{},
		Players:         1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "quad_scale",
				Label:       "4x Pixel Scale",
				Description: "Quadruple source pixels instead of doubling them",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
		},
		DataDirName:   "evdp",
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator creates a new emulator instance with the given asset
// bundle and region.
func (f *Factory) CreateEmulator(bundle []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(bundle, region)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DetectRegion reports the bundle's region. The display pipeline has a
// single fixed 60 Hz mode, so detection is unconditional.
func (f *Factory) DetectRegion(bundle []byte) (emucore.Region, bool) {
	return emu.DetectRegion(bundle), false
}
