package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_DropsShortTokens(t *testing.T) {
	tokens := Tokenize("create a purchase order, which vendor")
	assert.Contains(t, tokens, "create")
	assert.Contains(t, tokens, "purchase")
	assert.Contains(t, tokens, "order")
	assert.Contains(t, tokens, "which")
	assert.Contains(t, tokens, "vendor")
	assert.NotContains(t, tokens, "a")
}

func TestTokenize_AddsSingularForms(t *testing.T) {
	tokens := Tokenize("list all vendors")
	assert.Contains(t, tokens, "vendors")
	assert.Contains(t, tokens, "vendor")
}

func TestTokenize_LowercasesAndSplitsOnPunctuation(t *testing.T) {
	tokens := Tokenize("Which SUBSIDIARY/department?")
	assert.Contains(t, tokens, "subsidiary")
	assert.Contains(t, tokens, "department")
}

func TestSequenceRatio_Identical(t *testing.T) {
	assert.InDelta(t, 1.0, SequenceRatio("which vendor", "which vendor"), 1e-9)
}

func TestSequenceRatio_Disjoint(t *testing.T) {
	assert.InDelta(t, 0.0, SequenceRatio("xyz", "qqq"), 1e-9)
}

func TestSequenceRatio_Empty(t *testing.T) {
	assert.InDelta(t, 0.0, SequenceRatio("", "abc"), 1e-9)
	assert.InDelta(t, 1.0, SequenceRatio("", ""), 1e-9)
}

func TestSequenceRatio_Partial(t *testing.T) {
	ratio := SequenceRatio("which vendor should supply this item", "which vendor")
	assert.Greater(t, ratio, 0.4)
	assert.Less(t, ratio, 1.0)
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name   string
		query  []string
		target []string
		want   float64
	}{
		{"identical", []string{"which", "vendor"}, []string{"which", "vendor"}, 1.0},
		{"disjoint", []string{"foo"}, []string{"bar"}, 0.0},
		{"empty query", nil, []string{"bar"}, 0.0},
		{"half overlap", []string{"which", "vendor"}, []string{"which", "account"}, 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenSetRatio(tt.query, tt.target), 1e-9)
		})
	}
}

func TestTokenSetRatio_SingularFormsBridgePluralQueries(t *testing.T) {
	query := Tokenize("list vendors")
	target := Tokenize("vendor list")

	// "vendors" carries its singular alongside itself, so the plural query
	// overlaps the singular keyword on two of its three tokens. A plain
	// split would only score 1/3 here.
	assert.InDelta(t, 2.0/3.0, TokenSetRatio(query, target), 1e-9)
}
