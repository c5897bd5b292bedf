package walkthrough

// DefaultConfigRoot is the reserved identifier of the runtime configuration structure.
const DefaultConfigRoot = "engineConfiguration"

const arrowToken = "->"

// ConfigFieldToken identifies a field accessed off the configuration root.
type ConfigFieldToken struct {
	Text   string `json:"text" toon:"text"`
	Range  Range  `json:"range" toon:"range"`
	Line   int    `json:"line" toon:"line"`
	Column int    `json:"column" toon:"column"`
}

// ScanConfigFields finds every root -> field triple in a flat token sequence
// and returns the field tokens in source order. Matching is exact and
// case-sensitive; any separator other than -> does not match.
func ScanConfigFields(tokens []Token, root string) []ConfigFieldToken {
	fields := make([]ConfigFieldToken, 0)
	for i := 0; i+2 < len(tokens); i++ {
		if tokens[i].Text != root || tokens[i+1].Text != arrowToken {
			continue
		}
		tok := tokens[i+2]
		fields = append(fields, ConfigFieldToken{
			Text:   tok.Text,
			Range:  tok.Range,
			Line:   tok.Line,
			Column: tok.Column,
		})
	}
	return fields
}
