package dice

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrMalformedSpecifier is wrapped by every Parse failure.
var ErrMalformedSpecifier = errors.New("dice: malformed roll specifier")

// StandardSides lists the face counts the grammar accepts, largest first.
var StandardSides = []int{100, 20, 12, 10, 8, 6, 4, 2}

// Specifier is a parsed roll specifier ready to be rolled.
//
// Invariant: Count >= 1 and Sides is one of StandardSides after a successful Parse.
type Specifier struct {
	Sides    int // faces per die
	Count    int // number of dice
	Modifier int // flat modifier (may be negative)
}

// String renders the canonical form "{count}d{sides}{+|-}{|modifier|}"; a zero
// modifier is omitted.
func (s Specifier) String() string {
	if s.Modifier == 0 {
		return fmt.Sprintf("%dd%d", s.Count, s.Sides)
	}
	return fmt.Sprintf("%dd%d%+d", s.Count, s.Sides, s.Modifier)
}

var specifierLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Die", Pattern: `[dD]`},
	{Name: "Sign", Pattern: `[-+]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

type rollGrammar struct {
	Count    string           `parser:"@Number?"`
	Sides    int              `parser:"Die @('100' | '20' | '12' | '10' | '8' | '6' | '4' | '2')"`
	Modifier *modifierGrammar `parser:"@@?"`
}

type modifierGrammar struct {
	Sign  string `parser:"@Sign?"`
	Value string `parser:"@Number"`
}

// specifierParser is built once; participle parsers are safe for concurrent use.
var specifierParser = participle.MustBuild[rollGrammar](
	participle.Lexer(specifierLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a roll specifier such as "d20", "2d6", "2d6+3" or " 4 D 8 - 2 ".
//
// Postcondition: Returns a complete Specifier, or an error wrapping
// ErrMalformedSpecifier and naming the raw input.
func Parse(input string) (Specifier, error) {
	g, err := specifierParser.ParseString("", input)
	if err != nil {
		return Specifier{}, fmt.Errorf("%w %q: %v", ErrMalformedSpecifier, input, err)
	}

	spec := Specifier{Sides: g.Sides, Count: 1}
	if g.Count != "" {
		n, err := strconv.Atoi(g.Count)
		if err != nil {
			return Specifier{}, fmt.Errorf("%w %q: die count: %v", ErrMalformedSpecifier, input, err)
		}
		// A zero count rolls the default single die.
		if n > 0 {
			spec.Count = n
		}
	}
	if g.Modifier != nil {
		n, err := strconv.Atoi(g.Modifier.Value)
		if err != nil {
			return Specifier{}, fmt.Errorf("%w %q: modifier: %v", ErrMalformedSpecifier, input, err)
		}
		spec.Modifier = n
		if g.Modifier.Sign == "-" {
			spec.Modifier = -n
		}
	}
	return spec, nil
}

// IsStandardSides reports whether sides is one of StandardSides.
func IsStandardSides(sides int) bool {
	for _, s := range StandardSides {
		if s == sides {
			return true
		}
	}
	return false
}
