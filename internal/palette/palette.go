package palette

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Name identifies one of the built-in retro palettes.
type Name string

const (
	C64       Name = "c64"
	NES       Name = "nes"
	Apple2    Name = "apple2"
	Atari2600 Name = "atari2600"
	GameBoy   Name = "gameboy"
)

// ColorID is a logical color slot used by the watchface renderer.
type ColorID string

const (
	Background1 ColorID = "bg1"
	Background2 ColorID = "bg2"
	Battery0    ColorID = "batt0"
	Battery1    ColorID = "batt1"
	Battery2    ColorID = "batt2"
	Battery3    ColorID = "batt3"
	Battery4    ColorID = "batt4"
	Bar         ColorID = "bar"
	Black       ColorID = "black"
	White       ColorID = "white"
)

// Default is the palette selected at startup when nothing else is configured.
const Default = C64

// cycle is the order in which user input steps through palettes.
var cycle = []Name{C64, NES, Apple2, Atari2600, GameBoy}

type entry struct {
	colors   map[ColorID]color.RGBA
	fallback color.RGBA
}

var table = map[Name]entry{
	C64: build("#ffffff", map[ColorID]string{
		Background1: "#7869c4",
		Background2: "#40318d",
		Battery0:    "#883932",
		Battery1:    "#b86962",
		Battery2:    "#bfce72",
		Battery3:    "#55a049",
		Battery4:    "#94e089",
		Bar:         "#9f9f9f",
		Black:       "#000000",
		White:       "#67b6bd",
	}),
	NES: build("#fcfcfc", map[ColorID]string{
		Background1: "#0058f8",
		Background2: "#0000bc",
		Battery0:    "#a81000",
		Battery1:    "#e45c10",
		Battery2:    "#f8b800",
		Battery3:    "#b8f818",
		Battery4:    "#00b800",
		Bar:         "#7c7c7c",
		Black:       "#000000",
		White:       "#3cbcfc",
	}),
	Apple2: build("#ffffff", map[ColorID]string{
		Background1: "#1bcb01",
		Background2: "#0e5940",
		Battery0:    "#40337f",
		Battery1:    "#722640",
		Battery2:    "#e46501",
		Battery3:    "#bfcc80",
		Battery4:    "#0e5940",
		Bar:         "#808080",
		Black:       "#000000",
		White:       "#8dd9bf",
	}),
	Atari2600: build("#ffffff", map[ColorID]string{
		Background1: "#b4586c",
		Background2: "#700014",
		Battery0:    "#947020",
		Battery1:    "#a8843c",
		Battery2:    "#bc9c58",
		Battery3:    "#ccac70",
		Battery4:    "#dcc084",
		Bar:         "#949494",
		Black:       "#282828",
		White:       "#d0d0d0",
	}),
	GameBoy: build("#ffffff", map[ColorID]string{
		Background1: "#8bac0f",
		Background2: "#306230",
		Battery0:    "#306230",
		Battery1:    "#306230",
		Battery2:    "#306230",
		Battery3:    "#306230",
		Battery4:    "#306230",
		Bar:         "#0f380f",
		Black:       "#0f380f",
		White:       "#9bbc0f",
	}),
}

// Resolve returns the concrete color for id under palette name.
// Ids a palette does not define resolve to that palette's fallback.
// An unknown palette name panics: names only come from Parse and Next.
func Resolve(name Name, id ColorID) color.RGBA {
	e, ok := table[name]
	if !ok {
		panic(fmt.Sprintf("palette: unknown palette %q", string(name)))
	}
	if c, ok := e.colors[id]; ok {
		return c
	}
	return e.fallback
}

// Next returns the palette after name in the fixed cycle order.
func Next(name Name) Name {
	for i, n := range cycle {
		if n == name {
			return cycle[(i+1)%len(cycle)]
		}
	}
	panic(fmt.Sprintf("palette: unknown palette %q", string(name)))
}

// Names returns the palettes in cycle order.
func Names() []Name {
	out := make([]Name, len(cycle))
	copy(out, cycle)
	return out
}

// Parse validates a user supplied palette name.
func Parse(raw string) (Name, error) {
	name := Name(strings.ToLower(strings.TrimSpace(raw)))
	if name == "" {
		return Default, nil
	}
	if _, ok := table[name]; !ok {
		return "", fmt.Errorf("unknown palette %q (want one of %v)", raw, cycle)
	}
	return name, nil
}

func build(fallback string, hex map[ColorID]string) entry {
	e := entry{colors: make(map[ColorID]color.RGBA, len(hex)), fallback: mustHex(fallback)}
	for id, h := range hex {
		e.colors[id] = mustHex(h)
	}
	return e
}

func mustHex(h string) color.RGBA {
	c, err := colorful.Hex(h)
	if err != nil {
		panic(fmt.Sprintf("palette: bad color %q: %v", h, err))
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
