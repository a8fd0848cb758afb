package components

import (
	"fmt"
	"html/template"
	"strings"
)

// render executes a component template. The templates are static and their
// data is always well typed, so execution cannot fail short of a bug.
func render(t *template.Template, data any) template.HTML {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		panic(fmt.Sprintf("components: render %s: %v", t.Name(), err))
	}
	return template.HTML(b.String())
}

// FuncMap exposes the components to page templates. Each function takes
// key/value pairs, e.g. {{button "label" "Delete" "variant" "danger"}}.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"button": func(kv ...any) (template.HTML, error) {
			p, err := ButtonFromPairs(kv...)
			if err != nil {
				return "", err
			}
			return Button(p), nil
		},
		"cardOpen": func(kv ...any) (template.HTML, error) {
			p, err := CardFromPairs(kv...)
			if err != nil {
				return "", err
			}
			return CardOpen(p), nil
		},
		"cardClose": CardClose,
		"input": func(kv ...any) (template.HTML, error) {
			p, err := InputFromPairs(kv...)
			if err != nil {
				return "", err
			}
			return Input(p), nil
		},
	}
}

type pairs map[string]any

func toPairs(kv []any) (pairs, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("odd number of arguments: %d", len(kv))
	}
	out := make(pairs, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("argument %d: key must be a string, got %T", i, kv[i])
		}
		out[key] = kv[i+1]
	}
	return out, nil
}

func (p pairs) str(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
}

func (p pairs) html(key string) (template.HTML, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	switch h := v.(type) {
	case template.HTML:
		return h, nil
	case string:
		return template.HTML(template.HTMLEscapeString(h)), nil
	default:
		return "", fmt.Errorf("%s: expected HTML, got %T", key, v)
	}
}

func (p pairs) flag(key string) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected bool, got %T", key, v)
	}
	return b, nil
}

func (p pairs) known(keys ...string) error {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}
	for k := range p {
		if _, ok := allowed[k]; !ok {
			return fmt.Errorf("unknown property %q", k)
		}
	}
	return nil
}

// decoder collects the first error across a run of lookups
type decoder struct {
	p   pairs
	err error
}

func (d *decoder) str(key string) string {
	if d.err != nil {
		return ""
	}
	s, err := d.p.str(key)
	d.err = err
	return s
}

func (d *decoder) html(key string) template.HTML {
	if d.err != nil {
		return ""
	}
	h, err := d.p.html(key)
	d.err = err
	return h
}

func (d *decoder) flag(key string) bool {
	if d.err != nil {
		return false
	}
	b, err := d.p.flag(key)
	d.err = err
	return b
}

// ButtonFromPairs builds ButtonProps from template arguments
func ButtonFromPairs(kv ...any) (ButtonProps, error) {
	p, err := toPairs(kv)
	if err != nil {
		return ButtonProps{}, fmt.Errorf("button: %w", err)
	}
	if err := p.known("label", "variant", "type", "name", "value", "fullWidth", "loading", "disabled", "class"); err != nil {
		return ButtonProps{}, fmt.Errorf("button: %w", err)
	}

	d := &decoder{p: p}
	props := ButtonProps{
		Label:     d.str("label"),
		Variant:   ButtonVariant(d.str("variant")),
		Type:      d.str("type"),
		Name:      d.str("name"),
		Value:     d.str("value"),
		FullWidth: d.flag("fullWidth"),
		IsLoading: d.flag("loading"),
		Disabled:  d.flag("disabled"),
		Class:     d.str("class"),
	}
	if d.err != nil {
		return ButtonProps{}, fmt.Errorf("button: %w", d.err)
	}
	return props, nil
}

// CardFromPairs builds CardProps from template arguments
func CardFromPairs(kv ...any) (CardProps, error) {
	p, err := toPairs(kv)
	if err != nil {
		return CardProps{}, fmt.Errorf("card: %w", err)
	}
	if err := p.known("title", "subtitle", "icon", "hover", "glow", "glowColor", "class"); err != nil {
		return CardProps{}, fmt.Errorf("card: %w", err)
	}

	d := &decoder{p: p}
	props := CardProps{
		Title:      d.str("title"),
		Subtitle:   d.str("subtitle"),
		Icon:       d.html("icon"),
		Hover:      d.flag("hover"),
		GlowEffect: d.flag("glow"),
		GlowColor:  GlowColor(d.str("glowColor")),
		Class:      d.str("class"),
	}
	if d.err != nil {
		return CardProps{}, fmt.Errorf("card: %w", d.err)
	}
	return props, nil
}

// InputFromPairs builds InputProps from template arguments
func InputFromPairs(kv ...any) (InputProps, error) {
	p, err := toPairs(kv)
	if err != nil {
		return InputProps{}, fmt.Errorf("input: %w", err)
	}
	if err := p.known("id", "name", "type", "value", "placeholder", "label", "icon", "error", "fullWidth", "required", "class"); err != nil {
		return InputProps{}, fmt.Errorf("input: %w", err)
	}

	d := &decoder{p: p}
	props := InputProps{
		ID:          d.str("id"),
		Name:        d.str("name"),
		Type:        d.str("type"),
		Value:       d.str("value"),
		Placeholder: d.str("placeholder"),
		Label:       d.str("label"),
		Icon:        d.html("icon"),
		Error:       d.str("error"),
		FullWidth:   d.flag("fullWidth"),
		Required:    d.flag("required"),
		Class:       d.str("class"),
	}
	if d.err != nil {
		return InputProps{}, fmt.Errorf("input: %w", d.err)
	}
	return props, nil
}
