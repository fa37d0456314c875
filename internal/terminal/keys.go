package terminal

// keySequences maps named control and function keys to the escape
// sequences the child expects on its terminal.
var keySequences = map[string]string{
	"up":        "\x1bOA",
	"down":      "\x1bOB",
	"right":     "\x1bOC",
	"left":      "\x1bOD",
	"home":      "\x1bOH",
	"end":       "\x1b[F",
	"delete":    "\x1b[3~",
	"pageup":    "\x1b[5~",
	"pagedown":  "\x1b[6~",
	"shift+tab": "\x1b[Z",
	"f1":        "\x1bOP",
	"f2":        "\x1bOQ",
	"f3":        "\x1bOR",
	"f4":        "\x1bOS",
	"f5":        "\x1b[15~",
	"f6":        "\x1b[17~",
	"f7":        "\x1b[18~",
	"f8":        "\x1b[19~",
	"f9":        "\x1b[20~",
	"f10":       "\x1b[21~",
	"f11":       "\x1b[23~",
	"f12":       "\x1b[24~",
	"f13":       "\x1b[25~",
	"f14":       "\x1b[26~",
	"f15":       "\x1b[28~",
	"f16":       "\x1b[29~",
	"f17":       "\x1b[31~",
	"f18":       "\x1b[32~",
	"f19":       "\x1b[33~",
	"f20":       "\x1b[34~",
}

// KeySequence returns the escape sequence for a named key, if one exists.
func KeySequence(name string) (string, bool) {
	seq, ok := keySequences[name]
	return seq, ok
}
