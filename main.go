package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	emubridge "github.com/user-none/evdp/bridge/ebiten"
	"github.com/user-none/evdp/cli"
	"github.com/user-none/evdp/emu"
)

func main() {
	assetPath := flag.String("assets", "", "path to asset bundle (required)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	quadScale := flag.Bool("quad", false, "quadruple source pixels instead of doubling")
	flag.Parse()

	if *assetPath == "" {
		log.Fatal("Asset bundle path is required. Usage: evdp -assets <path>")
	}

	bundle, err := os.ReadFile(*assetPath)
	if err != nil {
		log.Fatalf("Failed to load asset bundle: %v", err)
	}

	// Determine region
	var region emu.Region
	switch strings.ToLower(*regionFlag) {
	case "auto":
		region = emu.DetectRegion(bundle)
	case "ntsc":
		region = emu.RegionNTSC
	case "pal":
		region = emu.RegionPAL
	default:
		log.Fatalf("Invalid region: %s (use auto, ntsc, or pal)", *regionFlag)
	}

	e, err := emubridge.NewEmulator(bundle, region)
	if err != nil {
		log.Fatalf("Failed to initialize emulator: %v", err)
	}

	if *quadScale {
		e.SetOption("quad_scale", "true")
	}

	ebiten.SetWindowSize(emu.ScreenWidth, emu.ScreenHeight)
	ebiten.SetWindowTitle(emu.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(640, 360, -1, -1)
	ebiten.SetTPS(60)

	runner := cli.NewRunner(e)
	defer runner.Close()
	defer e.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
