//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/evdp/adapter"
)

func main() {
	assetPath := flag.String("assets", "", "path to asset bundle (opens UI if not provided)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	quadScale := flag.Bool("quad", false, "render sprites at quadruple scale")
	flag.Parse()

	factory := &adapter.Factory{}

	if *assetPath != "" {
		options := map[string]string{}
		if *quadScale {
			options["quad_scale"] = "true"
		} else {
			options["quad_scale"] = "false"
		}
		if err := standalone.RunDirect(factory, *assetPath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
