package walkthrough

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tokens(texts ...string) []Token {
	out := make([]Token, len(texts))
	pos := 0
	for i, text := range texts {
		out[i] = Token{Text: text, Range: Range{Start: pos, Stop: pos + len(text)}, Line: 1, Column: pos + 1}
		pos += len(text) + 1
	}
	return out
}

func TestScanConfigFields(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		want   []string
	}{
		{
			name:   "arrow access",
			tokens: tokens("x", "=", "engineConfiguration", "->", "rpm", ";"),
			want:   []string{"rpm"},
		},
		{
			name:   "dot separator does not match",
			tokens: tokens("engineConfiguration", ".", "rpm"),
			want:   []string{},
		},
		{
			name:   "case sensitive root",
			tokens: tokens("EngineConfiguration", "->", "rpm"),
			want:   []string{},
		},
		{
			name:   "match at the very end",
			tokens: tokens("engineConfiguration", "->", "mafAdcChannel"),
			want:   []string{"mafAdcChannel"},
		},
		{
			name:   "prefix without field",
			tokens: tokens("f", "(", "engineConfiguration", "->"),
			want:   []string{},
		},
		{
			name: "several in source order",
			tokens: tokens(
				"initMaf", "(", "engineConfiguration", "->", "mafAdcChannel", ",", "maf", ")", ";",
				"initMaf", "(", "engineConfiguration", "->", "maf2AdcChannel", ",", "maf2", ")", ";",
			),
			want: []string{"mafAdcChannel", "maf2AdcChannel"},
		},
		{
			name:   "nested member only reports first field",
			tokens: tokens("engineConfiguration", "->", "trigger", ".", "type"),
			want:   []string{"trigger"},
		},
		{
			name:   "empty",
			tokens: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ScanConfigFields(tt.tokens, DefaultConfigRoot)
			got := make([]string, len(fields))
			for i, f := range fields {
				got[i] = f.Text
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanConfigFields_CarriesPosition(t *testing.T) {
	toks := tokens("engineConfiguration", "->", "rpm")
	fields := ScanConfigFields(toks, DefaultConfigRoot)

	assert.Len(t, fields, 1)
	assert.Equal(t, toks[2].Range, fields[0].Range)
	assert.Equal(t, toks[2].Column, fields[0].Column)
	assert.Equal(t, 1, fields[0].Line)
}
