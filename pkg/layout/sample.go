// sample.go — Example configuration generation.
package layout

// SampleYAML returns a starter themes.yaml for photobooth init. It shows a
// shared layout with two themes and a theme carrying its own canvas.
func SampleYAML() string {
	return `# Photo booth themes. Coordinates are native print pixels (300 DPI).
layouts:
  - id: strip-3
    name: "2x6 inch Photo Strip"
    family: strip
    canvas: { width: 600, height: 1800 }
    slots:
      - { x: 0, y: 0, width: 600, height: 600 }
      - { x: 0, y: 600, width: 600, height: 600 }
      - { x: 0, y: 1200, width: 600, height: 600 }

themes:
  - themeId: classic-strip
    name: Classic
    description: Plain frame with rounded corners
    overlay: overlays/classic.png
    layout: strip-3

  - themeId: party-strip
    name: Party
    overlay: overlays/party.png
    layout: strip-3
    caption: { x: 40, y: 1640, width: 520, height: 120, fontSize: 40, color: "#ffffff" }

  - themeId: wide-trio
    name: Wide Trio
    overlay: overlays/wide.png
    family: landscape
    canvas: { width: 1800, height: 1200 }
    slots:
      - { x: 90, y: 150, width: 500, height: 700 }
      - { x: 650, y: 150, width: 500, height: 700 }
      - { x: 1210, y: 150, width: 500, height: 700 }
`
}
