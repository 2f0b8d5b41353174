package combo

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/keychord/internal/input/key"
)

// signatureSeparator joins codes in a signature. It never appears in a
// decimal number, so distinct sets cannot produce the same signature.
const signatureSeparator = "+"

// Signature is the canonical lookup key for a set of key codes.
type Signature string

// SignatureOf returns the signature for codes. Order and duplicates are
// irrelevant. The empty collection yields the empty signature.
func SignatureOf(codes []key.Code) Signature {
	if len(codes) == 0 {
		return ""
	}

	sorted := slices.Clone(codes)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var b strings.Builder
	for i, c := range sorted {
		if i > 0 {
			b.WriteString(signatureSeparator)
		}
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return Signature(b.String())
}

// Codes returns the key codes of the signature in ascending order.
// A malformed signature yields the codes that could be decoded.
func (s Signature) Codes() []key.Code {
	if s == "" {
		return nil
	}

	parts := strings.Split(string(s), signatureSeparator)
	codes := make([]key.Code, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			continue
		}
		codes = append(codes, key.Code(n))
	}
	return codes
}

// Describe renders the signature with key names, e.g. "ctrl+alt+z".
func (s Signature) Describe() string {
	return key.FormatCombo(s.Codes())
}
