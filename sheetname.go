package formula

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// maxSheetNameUTF16Units is Excel's 31-UTF16-code-unit sheet name limit.
const maxSheetNameUTF16Units = 31

var sheetNameCaser = cases.Fold()

// foldSheetName produces the Excel-compatible equality key for a sheet
// name: NFKC normalization followed by full Unicode case folding (which
// can expand a rune, e.g. German sharp s "ß" folds to "ss").
func foldSheetName(name string) string {
	normalized := norm.NFKC.String(name)
	return sheetNameCaser.String(normalized)
}

// SheetNamesEqual reports whether a and b refer to the same sheet under
// Excel's NFKC + case-fold equivalence. Exposed for use by format
// adapters, per spec.md §6.
func SheetNamesEqual(a, b string) bool {
	return foldSheetName(a) == foldSheetName(b)
}

// utf16Len returns the length of s in UTF-16 code units -- non-BMP
// characters (those requiring a surrogate pair) count as 2, matching
// Excel's own length accounting.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// ValidateSheetName checks name against Excel's sheet-naming rules, in
// the order spec.md §4.11 specifies. Returns nil if valid.
func ValidateSheetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewApplicationError(InvalidArgument, "sheet name cannot be blank")
	}
	if utf16Len(name) > maxSheetNameUTF16Units {
		return NewApplicationError(InvalidArgument, "sheet name cannot exceed 31 characters")
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return NewApplicationError(InvalidArgument, "sheet name cannot start or end with an apostrophe")
	}
	for _, r := range name {
		switch r {
		case '/', '\\', '?', '*', '[', ']', ':':
			return NewApplicationError(InvalidArgument, "sheet name contains an invalid character")
		}
	}
	if !utf8.ValidString(name) {
		return NewApplicationError(InvalidArgument, "sheet name is not valid UTF-8")
	}
	return nil
}

// truncateUTF16 truncates s to at most n UTF-16 code units, cutting only
// on code-point boundaries so a surrogate pair is never split.
func truncateUTF16(s string, n int) string {
	if n <= 0 {
		return ""
	}
	units := 0
	for i, r := range s {
		w := len(utf16.Encode([]rune{r}))
		if units+w > n {
			return s[:i]
		}
		units += w
	}
	return s
}

// DisambiguateSheetName produces a non-colliding sheet name derived from
// base, per spec.md §4.11: "{base} {n}" for the first non-colliding
// n = 2, 3, .... If the combination would exceed 31 UTF-16 units, base is
// truncated (by UTF-16 code units) so that "base_prefix + ' ' + n" fits
// exactly. exists reports whether a candidate name (under NFKC+fold
// equivalence) is already taken.
func DisambiguateSheetName(base string, exists func(candidate string) bool) string {
	if !exists(base) {
		return base
	}
	for n := 2; ; n++ {
		suffix := " " + strconv.Itoa(n)
		budget := maxSheetNameUTF16Units - utf16Len(suffix)
		prefix := base
		if utf16Len(prefix) > budget {
			prefix = truncateUTF16(prefix, budget)
		}
		candidate := prefix + suffix
		if !exists(candidate) {
			return candidate
		}
	}
}
