package locale

type SelectorKind string

const (
	SelectorTarget  SelectorKind = "target"
	SelectorSource  SelectorKind = "source"
	SelectorDisplay SelectorKind = "display"
)

type Option struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// SelectorOptions builds the option list for a language <select>. The fixed
// table always comes last; the leading entries depend on the selector kind:
// target selectors get the resolved system default plus the two preferred
// language shortcuts, source selectors get auto-detect. A disabled separator
// row splits the extras from the table.
func SelectorOptions(kind SelectorKind, stored, uiLocale, prefA, prefB string) []Option {
	var opts []Option
	switch kind {
	case SelectorTarget:
		opts = append(opts, Option{Label: "System default (" + EffectiveName(stored, uiLocale) + ")", Value: "system-default"})
		if prefA != "" {
			opts = append(opts, Option{Label: "Preferred A: " + prefA, Value: prefA})
		}
		if prefB != "" {
			opts = append(opts, Option{Label: "Preferred B: " + prefB, Value: prefB})
		}
	case SelectorSource:
		opts = append(opts, Option{Label: "Auto-detect", Value: "auto"})
	case SelectorDisplay:
		opts = append(opts, Option{Label: "System default", Value: "default"})
	}
	if len(opts) > 0 && kind != SelectorDisplay {
		opts = append(opts, Option{Label: "──────────", Value: "", Disabled: true})
	}
	for _, l := range Supported {
		if kind == SelectorDisplay {
			opts = append(opts, Option{Label: l.NativeName + "/" + l.Name + "/#" + l.Code, Value: l.Code})
			continue
		}
		opts = append(opts, Option{Label: l.NativeName + " / " + l.Name, Value: l.Name})
	}
	return opts
}
