package ui

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Code formats runnable commands.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats artifact and store paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag formats CLI flags.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	// Success formats success indicators and messages.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error formats error indicators and messages.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning formats warnings, notably the insecure nonce mode.
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Info formats hints and directional indicators.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats user values like protocol names and key IDs.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats secondary text.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}

	// Hex formats nonces and ciphertexts given as hex strings.
	Hex = Formatter{color.New(color.FgMagenta), "<", ">"}
)

// Ok returns the success marker.
func Ok() string { return Success.Sprint("✓") }

// Fail returns the failure marker.
func Fail() string { return Error.Sprint("✗") }

// Hint returns the hint marker.
func Hint() string { return Info.Sprint("→") }

// Bytes formats raw bytes as hex with the Hex formatter.
func Bytes(b []byte) string {
	return Hex.Sprint(hex.EncodeToString(b))
}

// Bits renders a bit sequence as a string of 0 and 1, grouped in bytes.
func Bits(bits []uint8) string {
	var sb strings.Builder
	for i, b := range bits {
		if i > 0 && i%8 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + b&1)
	}
	return sb.String()
}
