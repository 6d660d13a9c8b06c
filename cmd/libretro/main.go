package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/evdp/adapter"
)

func init() {
	// Only the d-pad is used, which the frontend maps on its own.
	libretro.RegisterFactory(&adapter.Factory{}, nil)
}

func main() {}
