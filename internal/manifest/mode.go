package manifest

// Mode selects which vendor's search paths and launch contract apply.
type Mode int

const (
	// ModeMozilla is the default mode; the host receives its manifest file
	// path as an extra argument.
	ModeMozilla Mode = iota
	// ModeChromium follows the Chrome native messaging contract.
	ModeChromium
)

// ParseMode maps a caller-supplied mode string to a Mode. Anything other
// than "chromium" or "mozilla", including the empty string, behaves as
// mozilla.
func ParseMode(value string) Mode {
	switch value {
	case "chromium":
		return ModeChromium
	case "mozilla":
		return ModeMozilla
	default:
		return ModeMozilla
	}
}

func (m Mode) String() string {
	if m == ModeChromium {
		return "chromium"
	}
	return "mozilla"
}
