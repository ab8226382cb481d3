package visualization

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"opticalct/internal/models"
)

// paletteSize is the number of discrete colours in every colormap
const paletteSize = 256

// Colormap maps normalized intensities in [0, 1] to colours.
type Colormap struct {
	name   string
	colors []color.RGBA
}

// Name returns the registered name of the colormap.
func (c *Colormap) Name() string { return c.name }

// At returns the colour for t, clamped to [0, 1].
func (c *Colormap) At(t float64) color.RGBA {
	if !(t > 0) {
		return c.colors[0]
	}
	if t >= 1 {
		return c.colors[len(c.colors)-1]
	}
	return c.colors[int(t*float64(len(c.colors)-1)+0.5)]
}

var colormaps = map[string]func() []color.Color{
	"gray": grayColors,
	"heat": func() []color.Color { return palette.Heat(paletteSize, 1).Colors() },
	"kindlmann": func() []color.Color {
		return fromColorMap(moreland.Kindlmann())
	},
	"blackbody": func() []color.Color {
		return fromColorMap(moreland.BlackBody())
	},
	"coolwarm": func() []color.Color {
		return fromColorMap(moreland.SmoothBlueRed())
	},
	"rainbow": func() []color.Color {
		return palette.Rainbow(paletteSize, palette.Blue, palette.Red, 1, 1, 1).Colors()
	},
}

// aliases accepts common matplotlib names
var aliases = map[string]string{
	"":     "gray",
	"grey": "gray",
	"hot":  "heat",
	"bwr":  "coolwarm",
	"jet":  "rainbow",
}

// ColormapNames lists the registered colormaps in sorted order.
func ColormapNames() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupColormap returns the named colormap. An empty name selects gray.
func LookupColormap(name string) (*Colormap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	build, ok := colormaps[key]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q, expected one of %s: %w",
			name, strings.Join(ColormapNames(), ", "), models.ErrConfiguration)
	}

	src := build()
	cm := &Colormap{name: key, colors: make([]color.RGBA, len(src))}
	for i, c := range src {
		cm.colors[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return cm, nil
}

func grayColors() []color.Color {
	out := make([]color.Color, paletteSize)
	for i := range out {
		out[i] = color.Gray{Y: uint8(i)}
	}
	return out
}

func fromColorMap(cm palette.ColorMap) []color.Color {
	cm.SetMin(0)
	cm.SetMax(1)
	return cm.Palette(paletteSize).Colors()
}
