package components

import (
	"html/template"
	"strings"
)

// ButtonVariant selects the colour scheme of a button
type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonOutline   ButtonVariant = "outline"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonSuccess   ButtonVariant = "success"
	ButtonDanger    ButtonVariant = "danger"
)

var buttonVariantClasses = map[ButtonVariant]string{
	ButtonPrimary:   "bg-primary-500 text-[#051626] font-semibold hover:bg-primary-600 active:translate-y-0",
	ButtonOutline:   "border border-primary-500 text-primary-500 hover:bg-primary-500/10",
	ButtonSecondary: "bg-gray-800 text-white hover:bg-gray-700",
	ButtonSuccess:   "bg-green-500 text-[#051626] hover:brightness-90",
	ButtonDanger:    "bg-red-500 font-semibold text-[#051626] hover:brightness-90",
}

const buttonBaseClass = "cursor-pointer px-5 py-2.5 rounded-xl font-medium transition-all flex items-center justify-center"

// ButtonProps configures Button. Zero values render an enabled primary
// type="button".
type ButtonProps struct {
	Label     string
	Variant   ButtonVariant
	Type      string // button, submit or reset
	Name      string
	Value     string
	FullWidth bool
	IsLoading bool
	Disabled  bool
	Class     string
}

var buttonTmpl = template.Must(template.New("button").Parse(
	`<button type="{{.Type}}" class="{{.Class}}"` +
		`{{if .Name}} name="{{.Name}}"{{end}}` +
		`{{if .Value}} value="{{.Value}}"{{end}}` +
		`{{if .Disabled}} disabled aria-disabled="true"{{end}}>` +
		`{{if .Loading}}<span class="flex justify-center items-center">` + spinnerSVG + `{{.Label}}</span>` +
		`{{else}}{{.Label}}{{end}}</button>`))

const spinnerSVG = `<svg class="animate-spin -ml-1 mr-2 h-4 w-4 text-current" fill="none" viewBox="0 0 24 24" role="status">` +
	`<title>Loading</title>` +
	`<circle class="opacity-25" cx="12" cy="12" r="10" stroke="currentColor" stroke-width="4"></circle>` +
	`<path class="opacity-75" fill="currentColor" d="M4 12a8 8 0 018-8v4a4 4 0 00-4 4H4z"></path></svg>`

// ButtonClass returns the class attribute Button renders
func ButtonClass(p ButtonProps) string {
	variant, ok := buttonVariantClasses[p.Variant]
	if !ok {
		variant = buttonVariantClasses[ButtonPrimary]
	}

	classes := []string{buttonBaseClass, variant}
	if p.IsLoading || p.Disabled {
		classes = append(classes, "opacity-70 cursor-not-allowed")
	}
	if p.Class != "" {
		classes = append(classes, p.Class)
	}
	if p.FullWidth {
		classes = append(classes, "w-full")
	}
	return strings.Join(classes, " ")
}

// Button renders a button. A loading button shows a spinner next to its
// label and is disabled.
func Button(p ButtonProps) template.HTML {
	typ := p.Type
	switch typ {
	case "submit", "reset":
	default:
		typ = "button"
	}

	return render(buttonTmpl, struct {
		Type, Class, Name, Value, Label string
		Disabled, Loading               bool
	}{
		Type:     typ,
		Class:    ButtonClass(p),
		Name:     p.Name,
		Value:    p.Value,
		Label:    p.Label,
		Disabled: p.IsLoading || p.Disabled,
		Loading:  p.IsLoading,
	})
}
