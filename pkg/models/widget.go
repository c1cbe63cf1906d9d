package models

import "fmt"

// WidgetType is the closed enumeration of dashboard widget kinds. The set
// is fixed at compile time; anything arriving from the wire outside this
// set is rejected by Valid rather than silently rendering nothing.
type WidgetType string

const (
	WidgetBar      WidgetType = "Bar"
	WidgetLine     WidgetType = "Line"
	WidgetPie      WidgetType = "Pie"
	WidgetNumber   WidgetType = "Number"
	WidgetTable    WidgetType = "Table"
	WidgetProgress WidgetType = "Progress"
	WidgetText     WidgetType = "Text"
	WidgetFilter   WidgetType = "Filter"
)

// WidgetTypes lists every member of the enumeration, in display order.
func WidgetTypes() []WidgetType {
	return []WidgetType{
		WidgetBar, WidgetLine, WidgetPie, WidgetNumber,
		WidgetTable, WidgetProgress, WidgetText, WidgetFilter,
	}
}

func (w WidgetType) Valid() bool {
	switch w {
	case WidgetBar, WidgetLine, WidgetPie, WidgetNumber,
		WidgetTable, WidgetProgress, WidgetText, WidgetFilter:
		return true
	}
	return false
}

// Icon returns the glyph shown next to the widget type in pickers and
// palettes.
func (w WidgetType) Icon() string {
	switch w {
	case WidgetBar:
		return "▊"
	case WidgetLine:
		return "∿"
	case WidgetPie:
		return "◔"
	case WidgetNumber:
		return "#"
	case WidgetTable:
		return "▦"
	case WidgetProgress:
		return "▱"
	case WidgetText:
		return "¶"
	case WidgetFilter:
		return "⏷"
	}
	return "?"
}

// Description is the one-line help shown in the widget palette.
func (w WidgetType) Description() string {
	switch w {
	case WidgetBar:
		return "Compare values across categories"
	case WidgetLine:
		return "Show a trend over time"
	case WidgetPie:
		return "Show parts of a whole"
	case WidgetNumber:
		return "Highlight a single value"
	case WidgetTable:
		return "Show raw rows and columns"
	case WidgetProgress:
		return "Track progress toward a target"
	case WidgetText:
		return "Free-form markdown text"
	case WidgetFilter:
		return "Filter other widgets on the dashboard"
	}
	return ""
}

// ParseWidgetType converts a wire value into the enumeration, failing fast
// on unknown values.
func ParseWidgetType(s string) (WidgetType, error) {
	w := WidgetType(s)
	if !w.Valid() {
		return "", fmt.Errorf("unknown widget type %q", s)
	}
	return w, nil
}
