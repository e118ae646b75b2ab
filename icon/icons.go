package icon

// Icon identifies a status symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Mark
	Link
	Play
	Pause
	Buffering
	Retry
	Offline
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "💩",
		nerd:    "",
		plain:   "✗",
		kaomoji: "(╯°□°）╯︵ ┻━┻",
		squares: "🟥",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・;)",
		squares: "🟨",
	},
	Mark: {
		emoji:   "➕",
		nerd:    "",
		plain:   "*",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟪",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "->",
		kaomoji: "(¬‿¬)",
		squares: "🟦",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "ヽ(・∀・)ﾉ",
		squares: "🟩",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "⬜",
	},
	Buffering: {
		emoji:   "🌀",
		nerd:    "",
		plain:   "~",
		kaomoji: "(⊙_⊙)",
		squares: "🟨",
	},
	Retry: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "@",
		kaomoji: "(ง •̀_•́)ง",
		squares: "🟧",
	},
	Offline: {
		emoji:   "📵",
		nerd:    "",
		plain:   "x",
		kaomoji: "(;´༎ຶД༎ຶ`)",
		squares: "⬛",
	},
}
