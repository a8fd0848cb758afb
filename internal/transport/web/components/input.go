package components

import (
	"html/template"
	"strings"
)

// InputProps configures Input. Icon is trusted markup shown on the left.
type InputProps struct {
	ID          string
	Name        string
	Type        string
	Value       string
	Placeholder string
	Label       string
	Icon        template.HTML
	Error       string
	FullWidth   bool
	Required    bool
	Class       string
}

var inputTmpl = template.Must(template.New("input").Parse(
	`<div class="{{.WrapperClass}}">` +
		`{{if .Label}}<label for="{{.ID}}" class="block mb-2 font-medium text-sm text-gray-700">{{.Label}}</label>{{end}}` +
		`<div class="relative">` +
		`{{if .Icon}}<div class="absolute inset-y-0 left-0 flex items-center pl-3 pointer-events-none text-gray-400">{{.Icon}}</div>{{end}}` +
		`<input id="{{.ID}}" type="{{.Type}}" class="{{.Class}}"` +
		`{{if .Name}} name="{{.Name}}"{{end}}` +
		`{{if .Value}} value="{{.Value}}"{{end}}` +
		`{{if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}` +
		`{{if .Required}} required{{end}}` +
		`{{if .Error}} aria-invalid="true"{{end}}>` +
		`</div>` +
		`{{if .Error}}<p class="mt-1 text-sm text-red-500">{{.Error}}</p>{{end}}` +
		`</div>`))

// InputClass returns the class attribute of the input element
func InputClass(p InputProps) string {
	classes := []string{"block w-full rounded-xl border"}
	if p.Error != "" {
		classes = append(classes, "border-red-500")
	} else {
		classes = append(classes, "border-gray-700")
	}
	classes = append(classes, "bg-gray-800 px-4 py-3 text-sm text-gray-50 transition-all focus:outline-none focus:ring-2")
	if p.Error != "" {
		classes = append(classes, "focus:border-red-500 focus:ring-red-500/20")
	} else {
		classes = append(classes, "focus:border-primary-500 focus:ring-primary-500/20")
	}
	if p.Icon != "" {
		classes = append(classes, "pl-10")
	}
	if p.Class != "" {
		classes = append(classes, p.Class)
	}
	return strings.Join(classes, " ")
}

// Input renders a labelled text input. The id falls back to the name so the
// label stays attached.
func Input(p InputProps) template.HTML {
	id := p.ID
	if id == "" {
		id = p.Name
	}
	typ := p.Type
	if typ == "" {
		typ = "text"
	}
	wrapper := "mb-4"
	if p.FullWidth {
		wrapper = "w-full mb-4"
	}

	return render(inputTmpl, struct {
		WrapperClass, ID, Type, Class, Name, Value, Placeholder, Label, Error string
		Icon                                                                  template.HTML
		Required                                                              bool
	}{
		WrapperClass: wrapper,
		ID:           id,
		Type:         typ,
		Class:        InputClass(p),
		Name:         p.Name,
		Value:        p.Value,
		Placeholder:  p.Placeholder,
		Label:        p.Label,
		Error:        p.Error,
		Icon:         p.Icon,
		Required:     p.Required,
	})
}
