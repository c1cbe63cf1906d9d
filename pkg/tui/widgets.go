package tui

import (
	"fmt"
	"strings"

	"github.com/frappe/insights.go/pkg/models"
)

// WidgetRenderer draws one dashboard widget from its chart options.
type WidgetRenderer func(theme Theme, title string, options map[string]any) string

// WidgetRegistry maps every widget type to its renderer. The set of types is
// closed, so the registry can be checked for completeness once at startup
// instead of failing on first render of an uncovered type.
type WidgetRegistry struct {
	renderers map[models.WidgetType]WidgetRenderer
}

func NewWidgetRegistry() *WidgetRegistry {
	return &WidgetRegistry{renderers: make(map[models.WidgetType]WidgetRenderer)}
}

// Register binds a renderer to a widget type. Unknown types are rejected so a
// typo cannot register a renderer nothing will ever look up.
func (r *WidgetRegistry) Register(t models.WidgetType, fn WidgetRenderer) error {
	if !t.Valid() {
		return fmt.Errorf("register widget renderer: unknown widget type %q", t)
	}
	if fn == nil {
		return fmt.Errorf("register widget renderer: nil renderer for %q", t)
	}
	r.renderers[t] = fn
	return nil
}

// Validate reports the widget types that have no renderer. A complete
// registry returns nil; callers run this during startup and refuse to serve
// dashboards with gaps.
func (r *WidgetRegistry) Validate() error {
	var missing []string
	for _, t := range models.WidgetTypes() {
		if _, ok := r.renderers[t]; !ok {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("widget registry incomplete, missing renderers for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Render draws a widget of the given type.
func (r *WidgetRegistry) Render(t models.WidgetType, theme Theme, title string, options map[string]any) (string, error) {
	fn, ok := r.renderers[t]
	if !ok {
		return "", fmt.Errorf("no renderer for widget type %q", t)
	}
	return fn(theme, title, options), nil
}

// DefaultWidgetRegistry returns a registry covering every widget type with
// terminal renderers.
func DefaultWidgetRegistry() *WidgetRegistry {
	r := NewWidgetRegistry()
	placeholder := func(label string) WidgetRenderer {
		return func(theme Theme, title string, _ map[string]any) string {
			return theme.Title.Render(title) + "\n" + theme.Muted.Render(label)
		}
	}
	for t, fn := range map[models.WidgetType]WidgetRenderer{
		models.WidgetBar:      placeholder("bar chart"),
		models.WidgetLine:     placeholder("line chart"),
		models.WidgetPie:      placeholder("pie chart"),
		models.WidgetTable:    placeholder("table"),
		models.WidgetProgress: renderProgress,
		models.WidgetNumber:   renderNumber,
		models.WidgetText:     renderText,
		models.WidgetFilter:   placeholder("filter"),
	} {
		// The keys above are the enum constants themselves, so Register
		// cannot fail here.
		if err := r.Register(t, fn); err != nil {
			panic(err)
		}
	}
	return r
}

func renderNumber(theme Theme, title string, options map[string]any) string {
	value := "-"
	if v, ok := options["value"]; ok {
		value = fmt.Sprint(v)
	}
	return theme.Title.Render(title) + "\n" + value
}

func renderText(theme Theme, title string, options map[string]any) string {
	text, _ := options["text"].(string)
	return theme.Title.Render(title) + "\n" + text
}

func renderProgress(theme Theme, title string, options map[string]any) string {
	progress, _ := options["progress"].(float64)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	const width = 20
	filled := int(progress * width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return theme.Title.Render(title) + "\n" + bar
}
