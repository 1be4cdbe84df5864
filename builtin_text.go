package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

func (bf *BuiltInFunctions) CONCAT(args ...any) (Primitive, error) {
	var b strings.Builder
	for _, arg := range args {
		for _, v := range rangeValues(arg) {
			if err := checkForError(v); err != nil {
				return nil, err
			}
			b.WriteString(toString(v))
		}
	}
	return b.String(), nil
}

func (bf *BuiltInFunctions) TEXTJOIN(args ...any) (Primitive, error) {
	if len(args) < 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "TEXTJOIN requires at least 3 arguments")
	}
	delim := toString(args[0])
	ignoreEmpty := isTruthy(args[1])
	parts := []string{}
	for _, arg := range args[2:] {
		for _, v := range rangeValues(arg) {
			if err := checkForError(v); err != nil {
				return nil, err
			}
			s := toString(v)
			if ignoreEmpty && s == "" {
				continue
			}
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, delim), nil
}

func (bf *BuiltInFunctions) PROPER(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "PROPER requires exactly 1 argument")
	}
	if err := checkForError(args[0]); err != nil {
		return nil, err
	}
	s := toString(args[0])
	var b strings.Builder
	prevIsLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevIsLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevIsLetter = true
		} else {
			b.WriteRune(r)
			prevIsLetter = false
		}
	}
	return b.String(), nil
}

func (bf *BuiltInFunctions) LEFT(args ...any) (Primitive, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "LEFT requires 1 or 2 arguments")
	}
	s := []rune(toString(args[0]))
	n := 1
	if len(args) == 2 {
		num, ok := toNumber(args[1])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "LEFT requires a numeric second argument")
		}
		n = int(num)
	}
	if n < 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "LEFT requires a non-negative length")
	}
	if n > len(s) {
		n = len(s)
	}
	return string(s[:n]), nil
}

func (bf *BuiltInFunctions) RIGHT(args ...any) (Primitive, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "RIGHT requires 1 or 2 arguments")
	}
	s := []rune(toString(args[0]))
	n := 1
	if len(args) == 2 {
		num, ok := toNumber(args[1])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "RIGHT requires a numeric second argument")
		}
		n = int(num)
	}
	if n < 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "RIGHT requires a non-negative length")
	}
	if n > len(s) {
		n = len(s)
	}
	return string(s[len(s)-n:]), nil
}

func (bf *BuiltInFunctions) MID(args ...any) (Primitive, error) {
	if len(args) != 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "MID requires exactly 3 arguments")
	}
	s := []rune(toString(args[0]))
	startNum, ok1 := toNumber(args[1])
	lenNum, ok2 := toNumber(args[2])
	if !ok1 || !ok2 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "MID requires numeric start/length")
	}
	start := int(startNum)
	length := int(lenNum)
	if start < 1 || length < 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "MID requires start >= 1 and a non-negative length")
	}
	if start > len(s) {
		return "", nil
	}
	end := start - 1 + length
	if end > len(s) {
		end = len(s)
	}
	return string(s[start-1 : end]), nil
}

func (bf *BuiltInFunctions) FIND(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "FIND requires 2 or 3 arguments")
	}
	needle := toString(args[0])
	haystack := []rune(toString(args[1]))
	start := 1
	if len(args) == 3 {
		num, ok := toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "FIND requires a numeric start position")
		}
		start = int(num)
	}
	if start < 1 || start > len(haystack)+1 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "FIND start position out of range")
	}
	idx := strings.Index(string(haystack[start-1:]), needle)
	if idx < 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "FIND could not locate the substring")
	}
	return float64(start + len([]rune(string(haystack[start-1:])[:idx]))), nil
}

func (bf *BuiltInFunctions) SEARCH(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SEARCH requires 2 or 3 arguments")
	}
	needle := strings.ToLower(toString(args[0]))
	haystack := []rune(strings.ToLower(toString(args[1])))
	start := 1
	if len(args) == 3 {
		num, ok := toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "SEARCH requires a numeric start position")
		}
		start = int(num)
	}
	if start < 1 || start > len(haystack)+1 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SEARCH start position out of range")
	}
	idx := strings.Index(string(haystack[start-1:]), needle)
	if idx < 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SEARCH could not locate the substring")
	}
	return float64(start + len([]rune(string(haystack[start-1:])[:idx]))), nil
}

func (bf *BuiltInFunctions) SUBSTITUTE(args ...any) (Primitive, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SUBSTITUTE requires 3 or 4 arguments")
	}
	s := toString(args[0])
	old := toString(args[1])
	newStr := toString(args[2])
	if len(args) == 3 {
		return strings.ReplaceAll(s, old, newStr), nil
	}
	num, ok := toNumber(args[3])
	if !ok || num < 1 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SUBSTITUTE instance number must be a positive number")
	}
	instance := int(num)
	count := 0
	var b strings.Builder
	rest := s
	for {
		idx := strings.Index(rest, old)
		if idx < 0 || old == "" {
			b.WriteString(rest)
			break
		}
		count++
		if count == instance {
			b.WriteString(rest[:idx])
			b.WriteString(newStr)
			b.WriteString(rest[idx+len(old):])
			break
		}
		b.WriteString(rest[:idx+len(old)])
		rest = rest[idx+len(old):]
	}
	return b.String(), nil
}

func (bf *BuiltInFunctions) REPLACE(args ...any) (Primitive, error) {
	if len(args) != 4 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "REPLACE requires exactly 4 arguments")
	}
	s := []rune(toString(args[0]))
	startNum, ok1 := toNumber(args[1])
	lenNum, ok2 := toNumber(args[2])
	if !ok1 || !ok2 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "REPLACE requires numeric start/length")
	}
	start := int(startNum)
	length := int(lenNum)
	if start < 1 || length < 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "REPLACE requires start >= 1 and a non-negative length")
	}
	newText := toString(args[3])
	if start > len(s)+1 {
		start = len(s) + 1
	}
	end := start - 1 + length
	if end > len(s) {
		end = len(s)
	}
	return string(s[:start-1]) + newText + string(s[end:]), nil
}

// TEXT renders value using the number-format string formatCode, classified
// through the same format parser CELL("format") uses.
func (bf *BuiltInFunctions) TEXT(args ...any) (Primitive, error) {
	if len(args) != 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "TEXT requires exactly 2 arguments")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return toString(args[0]), nil
	}
	formatCode := toString(args[1])
	class := ClassifyNumberFormat(formatCode)
	return formatByClass(num, class), nil
}

func formatByClass(num float64, class CellFormatClass) string {
	switch {
	case strings.HasPrefix(class.Code, "F"):
		decimals := 0
		if class.Code == "F1" {
			decimals = 1
		} else if class.Code == "F2" {
			decimals = 2
		}
		return strconv.FormatFloat(num, 'f', decimals, 64)
	case strings.HasPrefix(class.Code, "P"):
		decimals := 0
		if class.Code == "P1" {
			decimals = 1
		} else if class.Code == "P2" {
			decimals = 2
		}
		return strconv.FormatFloat(num*100, 'f', decimals, 64) + "%"
	case strings.HasPrefix(class.Code, "C"):
		decimals := 0
		if class.Code == "C1" {
			decimals = 1
		} else if class.Code == "C2" {
			decimals = 2
		}
		return "$" + strconv.FormatFloat(num, 'f', decimals, 64)
	default:
		return fmt.Sprintf("%g", num)
	}
}

func (bf *BuiltInFunctions) VALUE(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "VALUE requires exactly 1 argument")
	}
	s := strings.TrimSpace(toString(args[0]))
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, NewSpreadsheetError(ErrorCodeValue, "VALUE could not parse the text as a number")
	}
	if strings.HasSuffix(toString(args[0]), "%") {
		num /= 100
	}
	return num, nil
}
