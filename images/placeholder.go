package images

import (
	"bytes"
	"text/template"
)

// ContentTypeSVG is the media type of generated placeholders.
const ContentTypeSVG = "image/svg+xml"

var placeholderTmpl = template.Must(template.New("placeholder").Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 300 400">` +
		`<defs><linearGradient id="bg" x1="0%" y1="0%" x2="0%" y2="100%">` +
		`<stop offset="0%" style="stop-color:#1a1a2e"/><stop offset="100%" style="stop-color:#0f0f1a"/>` +
		`</linearGradient></defs>` +
		`<rect fill="url(#bg)" width="300" height="400"/>` +
		`<circle cx="150" cy="150" r="60" fill="#FFE81F" opacity="0.1"/>` +
		`<text x="150" y="170" text-anchor="middle" fill="#FFE81F" font-size="64" font-family="Arial">{{.Icon}}</text>` +
		`<text x="150" y="280" text-anchor="middle" fill="#9CA3AF" font-size="16" font-family="Arial">{{.Label}}</text>` +
		`<text x="150" y="310" text-anchor="middle" fill="#FFE81F" font-size="24" font-family="Arial">#{{.ID}}</text>` +
		`</svg>`))

var icons = map[Kind]string{
	Characters: "👤",
	Films:      "🎬",
	Starships:  "🚀",
	Planets:    "🌍",
	Species:    "👽",
	Vehicles:   "🚗",
}

// Placeholder renders the SVG served when no image is available.
func Placeholder(kind Kind, id int) Image {
	icon, ok := icons[kind]
	if !ok {
		icon = "★"
	}
	var buf bytes.Buffer
	// The template only interpolates fixed strings and an int.
	_ = placeholderTmpl.Execute(&buf, struct {
		Icon, Label string
		ID          int
	}{icon, kind.Label(), id})
	return Image{Data: buf.Bytes(), ContentType: ContentTypeSVG, Placeholder: true}
}
