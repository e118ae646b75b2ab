package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/style"
	"github.com/spf13/viper"
)

// Field is a registered setting with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env is the variable that overrides the field, e.g. LECTERN_RETRY_AUTO.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Lectern + "_" + EnvKeyReplacer.Replace(f.Key))
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string, int, bool, []string:
		return fmt.Sprintf("%T", f.Value)
	default:
		return "unknown"
	}
}

// Pretty renders the field with its current and default values for the terminal.
func (f *Field) Pretty() string {
	label := style.Fg(color.Blue)
	rows := [][2]string{
		{"Key", style.Fg(color.Purple)(f.Key)},
		{"Env", f.Env()},
		{"Value", highlight(viper.Get(f.Key))},
		{"Default", highlight(f.Value)},
		{"Type", f.typeName()},
	}

	var b strings.Builder
	b.WriteString(style.Faint(f.Description))
	for _, row := range rows {
		fmt.Fprintf(&b, "\n%s %s", label(fmt.Sprintf("%-8s", row[0]+":")), row[1])
	}
	return b.String()
}

func highlight(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return style.Fg(color.Green)("true")
		}
		return style.Fg(color.Red)("false")
	case string:
		return style.Fg(color.Yellow)(v)
	default:
		return fmt.Sprint(v)
	}
}

// MarshalJSON reports the current value alongside the default.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"key":         f.Key,
		"value":       viper.Get(f.Key),
		"default":     f.Value,
		"description": f.Description,
		"type":        f.typeName(),
	})
}
