package formula

import (
	"strings"

	"github.com/xuri/nfp"
)

// CellFormatClass is the small classification `CELL("format")` needs --
// not a full renderer, just enough to say "this format looks like a
// date/currency/percentage/etc, and negative numbers are shown in
// parentheses or not". Full glyph-for-glyph rendering is out of scope
// (spec.md §2: "not full renderer").
type CellFormatClass struct {
	// Code mirrors Excel's CELL("format") single/two-letter result, e.g.
	// "G" (General), "F0".."F2" (fixed), "C0".."C2" (currency), "P0".."P2"
	// (percent), "D1".."D9" (date/time variants), "," (thousands).
	Code string
	// Parenthesized is true when the format wraps negative numbers in
	// parentheses rather than prefixing them with a minus sign.
	Parenthesized bool
}

var numberFormatParser = nfp.NumberFormatParser()

// ClassifyNumberFormat parses an Excel format-code string and returns its
// CELL("format") classification.
func ClassifyNumberFormat(formatCode string) CellFormatClass {
	trimmed := strings.TrimSpace(formatCode)
	if trimmed == "" || strings.EqualFold(trimmed, "general") {
		return CellFormatClass{Code: "G"}
	}

	sections := numberFormatParser.Parse(trimmed)
	if len(sections) == 0 {
		return CellFormatClass{Code: "G"}
	}

	positive := sections[0]
	parenthesized := sectionHasParens(positive)
	if len(sections) > 1 && sectionHasParens(sections[1]) {
		parenthesized = true
	}

	hasDate, hasTime := false, false
	hasPercent := false
	hasCurrency := false
	hasThousands := false
	decimals := 0

	for _, tok := range positive.Items {
		switch tok.TType {
		case nfp.TokenTypeDateTimes, nfp.TokenTypeElapsedDateTimes:
			upper := strings.ToUpper(tok.TValue)
			if strings.ContainsAny(upper, "HMS") && !strings.ContainsAny(upper, "YD") {
				hasTime = true
			} else {
				hasDate = true
			}
		case nfp.TokenTypePercent:
			hasPercent = true
		case nfp.TokenTypeThousandsSeparator:
			hasThousands = true
		case nfp.TokenTypeCurrencyLanguage:
			hasCurrency = true
		}
	}
	decimals = countFractionalDigits(positive)

	code := "G"
	switch {
	case hasDate && hasTime:
		code = "D4"
	case hasDate:
		code = "D1"
	case hasTime:
		code = "D6"
	case hasCurrency:
		code = currencyCode(decimals)
	case hasPercent:
		code = percentCode(decimals)
	case hasThousands:
		code = ","
	default:
		code = fixedCode(decimals)
	}

	return CellFormatClass{Code: code, Parenthesized: parenthesized}
}

func sectionHasParens(sec nfp.Section) bool {
	for _, tok := range sec.Items {
		if tok.TType == nfp.TokenTypeLiteral && (strings.Contains(tok.TValue, "(") || strings.Contains(tok.TValue, ")")) {
			return true
		}
	}
	return false
}

func countFractionalDigits(sec nfp.Section) int {
	seenDecimal := false
	count := 0
	for _, tok := range sec.Items {
		if tok.TType == nfp.TokenTypeDecimalPoint {
			seenDecimal = true
			continue
		}
		if seenDecimal && (tok.TType == nfp.TokenTypeZeroPlaceHolder || tok.TType == nfp.TokenTypeHashPlaceHolder) {
			count += len(tok.TValue)
		}
	}
	return count
}

func fixedCode(decimals int) string {
	if decimals <= 0 {
		return "F0"
	}
	if decimals == 1 {
		return "F1"
	}
	return "F2"
}

func currencyCode(decimals int) string {
	if decimals <= 0 {
		return "C0"
	}
	if decimals == 1 {
		return "C1"
	}
	return "C2"
}

func percentCode(decimals int) string {
	if decimals <= 0 {
		return "P0"
	}
	if decimals == 1 {
		return "P1"
	}
	return "P2"
}
