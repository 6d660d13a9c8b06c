package emu

import emucore "github.com/user-none/eblitui/api"

// Region is an alias for emucore.Region so internal code compiles unchanged.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds timing constants for a video mode.
type RegionTiming struct {
	Scanlines int // Total scanlines per frame, including blanking
	FPS       int // Frames per second
}

// The display pipeline drives a single fixed 720p60 mode. Region
// selection is accepted for frontend compatibility but does not change
// the raster.
var Timing720p60 = RegionTiming{
	Scanlines: vTotal,
	FPS:       60,
}

// GetTimingForRegion returns timing constants for the given region.
func GetTimingForRegion(region Region) RegionTiming {
	return Timing720p60
}

// DetectRegion reports the region for an asset bundle. Bundles carry no
// region marker and the raster is fixed, so every bundle is NTSC.
func DetectRegion(bundle []byte) Region {
	return RegionNTSC
}
