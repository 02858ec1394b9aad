// catalog.go — Built-in layouts and themes (600 × 1800 strip, 1200 × 1800
// postcard and the themed canvases), all in native 300 DPI pixels.
package layout

// builtinLayouts are registered by Default in this order.
var builtinLayouts = []Spec{
	{
		ID:     "2x6",
		Name:   "2×6 inch Photo Strip",
		Family: FamilyStrip,
		Width:  600,
		Height: 1800,
		Slots: []SlotRect{
			{X: 0, Y: 0, Width: 600, Height: 600},
			{X: 0, Y: 600, Width: 600, Height: 600},
			{X: 0, Y: 1200, Width: 600, Height: 600},
		},
	},
	{
		ID:     "4x6",
		Name:   "4×6 inch Postcard",
		Family: FamilyPostcard,
		Width:  1200,
		Height: 1800,
		Slots: []SlotRect{
			{X: 0, Y: 0, Width: 1200, Height: 900},
			{X: 0, Y: 900, Width: 400, Height: 900},
			{X: 400, Y: 900, Width: 400, Height: 900},
			{X: 800, Y: 900, Width: 400, Height: 900},
		},
	},
	{
		ID:     "blacktheme1",
		Name:   "Black Classic Strip",
		Family: FamilyStrip,
		Width:  600,
		Height: 1800,
		Slots: []SlotRect{
			{X: 77, Y: 115, Width: 448, Height: 450},
			{X: 77, Y: 587, Width: 448, Height: 450},
			{X: 77, Y: 1059, Width: 448, Height: 450},
		},
	},
	{
		ID:     "blacktheme3",
		Name:   "Black Modern Landscape",
		Family: FamilyLandscape,
		Width:  1800,
		Height: 1200,
		Slots: []SlotRect{
			{X: 90, Y: 150, Width: 500, Height: 700},
			{X: 650, Y: 150, Width: 500, Height: 700},
			{X: 1210, Y: 150, Width: 500, Height: 700},
		},
	},
}

var builtinThemes = []Theme{
	{ID: "zootopia-strip", Name: "Zootopia", Overlay: "zootopiatheme.png", LayoutID: "2x6", Description: "Fun animal theme for strip layout"},
	{ID: "black-strip-1", Name: "Black Classic", Overlay: "Blacktheme1.png", LayoutID: "2x6", Description: "Elegant black theme"},
	{ID: "black-strip-3", Name: "Black Modern", Overlay: "Blacktheme3.png", LayoutID: "2x6", Description: "Modern black style"},
	{ID: "adventure-strip", Name: "Adventure Time", Overlay: "adventuretimetheme.png", LayoutID: "2x6", Description: "Adventure themed layout"},
	{ID: "zootopia-card", Name: "Zootopia", Overlay: "zootopiatheme.png", LayoutID: "4x6", Description: "Fun animal theme for postcard"},
	{ID: "black-card-1", Name: "Black Classic", Overlay: "Blacktheme1.png", LayoutID: "4x6", Description: "Elegant black postcard"},
	{ID: "black-card-3", Name: "Black Modern", Overlay: "Blacktheme3.png", LayoutID: "4x6", Description: "Modern black postcard"},
	{ID: "adventure-card", Name: "Adventure Time", Overlay: "adventuretimetheme.png", LayoutID: "4x6", Description: "Adventure themed postcard"},
	{
		ID:       "blacktheme1",
		Name:     "Black Classic",
		Overlay:  "blacktheme1.png",
		LayoutID: "blacktheme1",
		Caption:  &CaptionBox{X: 40, Y: 1560, Width: 520, Height: 180, FontSize: 44, Align: "center"},
	},
	{ID: "blacktheme3", Name: "Black Modern", Overlay: "blacktheme3.png", LayoutID: "blacktheme3"},
}

// DefaultThemeID is selected when a session starts without an explicit theme.
const DefaultThemeID = "blacktheme1"

// Default returns a registry holding the built-in catalog.
func Default() *Registry {
	r := NewRegistry()
	for _, spec := range builtinLayouts {
		if err := r.AddLayout(spec); err != nil {
			panic("layout: built-in catalog: " + err.Error())
		}
	}
	for _, t := range builtinThemes {
		if err := r.AddTheme(t); err != nil {
			panic("layout: built-in catalog: " + err.Error())
		}
	}
	return r
}
