package components

import (
	"html/template"
	"strings"
)

// GlowColor tints the glow of a card
type GlowColor string

const (
	GlowDefault GlowColor = "default"
	GlowGreen   GlowColor = "green"
	GlowBlue    GlowColor = "blue"
	GlowRed     GlowColor = "red"
)

const cardBaseClass = "bg-gray-900 rounded-xl border border-gray-700 shadow-md p-6 transition-all"

// CardProps configures Card. Body is trusted markup placed inside the card.
type CardProps struct {
	Title      string
	Subtitle   string
	Icon       template.HTML
	Hover      bool
	GlowEffect bool
	GlowColor  GlowColor
	Class      string
	Body       template.HTML
}

var cardOpenTmpl = template.Must(template.New("card").Parse(
	`<div class="{{.Class}}">` +
		`{{if or .Title .Icon}}<div class="flex items-center space-x-3 mb-4">` +
		`{{if .Icon}}<div class="p-2 bg-primary-500/10 rounded-lg flex items-center justify-center">{{.Icon}}</div>{{end}}` +
		`{{if or .Title .Subtitle}}<div>` +
		`{{if .Title}}<h3 class="text-lg font-medium">{{.Title}}</h3>{{end}}` +
		`{{if .Subtitle}}<p class="text-sm text-gray-400">{{.Subtitle}}</p>{{end}}` +
		`</div>{{end}}</div>{{end}}`))

func glowClass(p CardProps) string {
	if !p.GlowEffect {
		return ""
	}
	switch p.GlowColor {
	case GlowGreen:
		return "glow-green"
	case GlowBlue:
		return "glow-blue"
	case GlowRed:
		return "glow-red"
	default:
		return "glow"
	}
}

// CardClass returns the class attribute of the card container
func CardClass(p CardProps) string {
	classes := []string{cardBaseClass}
	if p.Hover {
		classes = append(classes, "cursor-pointer hover:border-primary-500 hover:shadow-lg hover:-translate-y-0.5")
	}
	if glow := glowClass(p); glow != "" {
		classes = append(classes, glow)
	}
	if p.Class != "" {
		classes = append(classes, p.Class)
	}
	return strings.Join(classes, " ")
}

// CardOpen renders the container and header, leaving the card open for
// content written by the caller. Close it with CardClose.
func CardOpen(p CardProps) template.HTML {
	return render(cardOpenTmpl, struct {
		Class, Title, Subtitle string
		Icon                   template.HTML
	}{
		Class:    CardClass(p),
		Title:    p.Title,
		Subtitle: p.Subtitle,
		Icon:     p.Icon,
	})
}

// CardClose ends a card started with CardOpen
func CardClose() template.HTML {
	return template.HTML("</div>")
}

// Card renders a complete card around p.Body
func Card(p CardProps) template.HTML {
	return CardOpen(p) + p.Body + CardClose()
}
