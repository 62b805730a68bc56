package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// missingToken is what a blank cell turns into after a dataframe-style export
const missingToken = "NAN"

// KeyOptions selects the normalization rules applied to task codes
type KeyOptions struct {
	// PreserveHyphens keeps every non-whitespace rune. When false, only
	// letters and digits survive, so "AB-12" and "AB12" share a key.
	PreserveHyphens bool `mapstructure:"preserve_hyphens" json:"preserve_hyphens"`
	// PreserveLeadingZeros keeps leading zeros. When false "0027-05" and
	// "27-05" share a key; an all-zero key collapses to "0".
	PreserveLeadingZeros bool `mapstructure:"preserve_leading_zeros" json:"preserve_leading_zeros"`
}

// DefaultKeyOptions folds only case and whitespace
func DefaultKeyOptions() KeyOptions {
	return KeyOptions{
		PreserveHyphens:      true,
		PreserveLeadingZeros: true,
	}
}

// KeyNormalizer canonicalizes free-text task codes so both tables join on them
type KeyNormalizer struct {
	options KeyOptions
}

// NewKeyNormalizer creates a normalizer with the given options
func NewKeyNormalizer(options KeyOptions) *KeyNormalizer {
	return &KeyNormalizer{options: options}
}

// Options returns the rules this normalizer applies
func (n *KeyNormalizer) Options() KeyOptions {
	return n.options
}

// Normalize returns the join key for raw. The empty string means "no key" and
// must never be joined on. Normalize is idempotent.
func (n *KeyNormalizer) Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		if r == utf8.RuneError || unicode.IsSpace(r) {
			continue
		}
		if !n.options.PreserveHyphens && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}

	key := b.String()
	if !n.options.PreserveLeadingZeros {
		key = trimLeadingZeros(key)
	}

	if key == missingToken {
		return ""
	}
	return key
}

// NormalizeCode is Normalize for a typed task code
func (n *KeyNormalizer) NormalizeCode(code entities.TaskCode) string {
	return n.Normalize(string(code))
}

// trimLeadingZeros strips leading zeros but keeps one when the remainder
// would be empty or would read as the missing token.
func trimLeadingZeros(key string) string {
	trimmed := strings.TrimLeft(key, "0")
	if trimmed == key {
		return key
	}
	if trimmed == "" || trimmed == missingToken {
		return "0" + trimmed
	}
	return trimmed
}
