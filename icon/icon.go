// Package icon renders status glyphs in the variant chosen by icons.variant.
package icon

import (
	"github.com/lectern-player/lectern/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var variants = []string{"emoji", "nerd", "plain", "kaomoji", "squares"}

// AvailableVariants lists the accepted icons.variant values.
func AvailableVariants() []string {
	return append([]string(nil), variants...)
}

type iconDef struct {
	emoji, nerd, plain, kaomoji, squares string
}

func (d *iconDef) in(variant string) string {
	return map[string]string{
		"emoji":   d.emoji,
		"nerd":    d.nerd,
		"plain":   d.plain,
		"kaomoji": d.kaomoji,
		"squares": d.squares,
	}[variant]
}

// Get renders i in the configured variant. Unknown variants render nothing.
func Get(i Icon) string {
	variant := viper.GetString(key.IconsVariant)
	if !lo.Contains(variants, variant) {
		return ""
	}
	return icons[i].in(variant)
}
