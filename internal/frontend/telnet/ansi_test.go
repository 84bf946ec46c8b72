package telnet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mError\033[0m", Colorize(Red, "Error"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[1mTotal: 12\033[0m", Colorf(Bold, "Total: %d", 12))
}

func TestStripANSI(t *testing.T) {
	cases := map[string]string{
		"":                              "",
		"plain":                         "plain",
		Colorize(Red, "bad") + " ok":    "bad ok",
		Bold + Green + "kept 5" + Reset: "kept 5",
		"\033[2Kcleared":                "cleared",
		"tail \033[":                    "tail \033[",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripANSI(in), "input %q", in)
	}
}

func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{Red, Green, Yellow, Cyan, BrightWhite, Bold, Dim}
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 +\-=\[\]]{0,40}`).Draw(rt, "text")
		color := rapid.SampledFrom(colors).Draw(rt, "color")
		assert.Equal(rt, text, StripANSI(Colorize(color, text)))
	})
}

func TestPropertyStripANSINeverGrows(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "s")
		out := StripANSI(s)
		assert.LessOrEqual(rt, len(out), len(s))
		if !strings.Contains(s, "\033") {
			assert.Equal(rt, s, out)
		}
	})
}
