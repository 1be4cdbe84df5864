package formula

import (
	"math"
	"strings"
)

// matchesCriteria evaluates an Excel-style SUMIF/COUNTIF criteria value
// (a number, a bare string, or a comparison string like ">10" or "<>foo")
// against a cell value.
func matchesCriteria(value Primitive, criteria Primitive) bool {
	crit := toString(criteria)
	ops := []string{">=", "<=", "<>", ">", "<", "="}
	for _, op := range ops {
		if strings.HasPrefix(crit, op) {
			rest := strings.TrimSpace(crit[len(op):])
			restNum, restIsNum := toNumber(rest)
			if restIsNum {
				valNum, ok := toNumber(value)
				if !ok {
					return false
				}
				switch op {
				case ">=":
					return valNum >= restNum
				case "<=":
					return valNum <= restNum
				case "<>":
					return valNum != restNum
				case ">":
					return valNum > restNum
				case "<":
					return valNum < restNum
				case "=":
					return valNum == restNum
				}
			}
			if op == "<>" {
				return !strings.EqualFold(toString(value), rest)
			}
			if op == "=" {
				return strings.EqualFold(toString(value), rest)
			}
			return false
		}
	}

	if critNum, ok := toNumber(crit); ok {
		valNum, valOk := toNumber(value)
		return valOk && valNum == critNum
	}
	return strings.EqualFold(toString(value), crit)
}

func rangeValues(arg Primitive) []Primitive {
	if arr, ok := arg.(*ArrayValue); ok {
		return arr.Cells
	}
	if r, ok := arg.(Range); ok {
		values := []Primitive{}
		for v := range r.IterateValues() {
			values = append(values, v)
		}
		return values
	}
	return []Primitive{arg}
}

func (bf *BuiltInFunctions) SUMIF(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SUMIF requires 2 or 3 arguments")
	}
	testValues := rangeValues(args[0])
	sumValues := testValues
	if len(args) == 3 {
		sumValues = rangeValues(args[2])
	}
	if len(sumValues) != len(testValues) {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SUMIF ranges must be the same size")
	}
	sum := 0.0
	for i, v := range testValues {
		if err := checkForError(v); err != nil {
			return nil, err
		}
		if matchesCriteria(v, args[1]) {
			if num, ok := toNumber(sumValues[i]); ok {
				sum += num
			}
		}
	}
	return sum, nil
}

func (bf *BuiltInFunctions) SUMIFS(args ...any) (Primitive, error) {
	if len(args) < 3 || len(args)%2 != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SUMIFS requires a sum range and criteria pairs")
	}
	sumValues := rangeValues(args[0])
	pairCount := (len(args) - 1) / 2
	criteriaRanges := make([][]Primitive, pairCount)
	for i := 0; i < pairCount; i++ {
		criteriaRanges[i] = rangeValues(args[1+i*2])
		if len(criteriaRanges[i]) != len(sumValues) {
			return nil, NewSpreadsheetError(ErrorCodeValue, "SUMIFS ranges must be the same size")
		}
	}
	sum := 0.0
	for i := range sumValues {
		matched := true
		for p := 0; p < pairCount; p++ {
			if !matchesCriteria(criteriaRanges[p][i], args[2+p*2]) {
				matched = false
				break
			}
		}
		if matched {
			if num, ok := toNumber(sumValues[i]); ok {
				sum += num
			}
		}
	}
	return sum, nil
}

func (bf *BuiltInFunctions) AVERAGEIF(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "AVERAGEIF requires 2 or 3 arguments")
	}
	testValues := rangeValues(args[0])
	avgValues := testValues
	if len(args) == 3 {
		avgValues = rangeValues(args[2])
	}
	sum, count := 0.0, 0
	for i, v := range testValues {
		if matchesCriteria(v, args[1]) {
			if num, ok := toNumber(avgValues[i]); ok {
				sum += num
				count++
			}
		}
	}
	if count == 0 {
		return nil, NewSpreadsheetError(ErrorCodeDiv0, "AVERAGEIF matched no values")
	}
	return sum / float64(count), nil
}

func (bf *BuiltInFunctions) COUNTIF(args ...any) (Primitive, error) {
	if len(args) != 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "COUNTIF requires exactly 2 arguments")
	}
	count := 0
	for _, v := range rangeValues(args[0]) {
		if matchesCriteria(v, args[1]) {
			count++
		}
	}
	return float64(count), nil
}

func (bf *BuiltInFunctions) COUNTIFS(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args)%2 != 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "COUNTIFS requires criteria pairs")
	}
	pairCount := len(args) / 2
	ranges := make([][]Primitive, pairCount)
	for i := 0; i < pairCount; i++ {
		ranges[i] = rangeValues(args[i*2])
	}
	n := len(ranges[0])
	count := 0
	for i := 0; i < n; i++ {
		matched := true
		for p := 0; p < pairCount; p++ {
			if i >= len(ranges[p]) || !matchesCriteria(ranges[p][i], args[p*2+1]) {
				matched = false
				break
			}
		}
		if matched {
			count++
		}
	}
	return float64(count), nil
}

func (bf *BuiltInFunctions) MAXA(args ...any) (Primitive, error) {
	max := math.Inf(-1)
	has := false
	for _, arg := range args {
		for _, v := range rangeValues(arg) {
			if err := checkForError(v); err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			if num, ok := toNumber(v); ok {
				if num > max {
					max = num
				}
				has = true
			}
		}
	}
	if !has {
		return 0.0, nil
	}
	return max, nil
}

func (bf *BuiltInFunctions) MINA(args ...any) (Primitive, error) {
	min := math.Inf(1)
	has := false
	for _, arg := range args {
		for _, v := range rangeValues(arg) {
			if err := checkForError(v); err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			if num, ok := toNumber(v); ok {
				if num < min {
					min = num
				}
				has = true
			}
		}
	}
	if !has {
		return 0.0, nil
	}
	return min, nil
}

func (bf *BuiltInFunctions) ROUNDUP(args ...any) (Primitive, error) {
	if len(args) != 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ROUNDUP requires exactly 2 arguments")
	}
	num, ok1 := toNumber(args[0])
	places, ok2 := toNumber(args[1])
	if !ok1 || !ok2 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "ROUNDUP requires numeric arguments")
	}
	mult := math.Pow(10, places)
	if num >= 0 {
		return math.Ceil(num*mult) / mult, nil
	}
	return math.Floor(num*mult) / mult, nil
}

func (bf *BuiltInFunctions) ROUNDDOWN(args ...any) (Primitive, error) {
	if len(args) != 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ROUNDDOWN requires exactly 2 arguments")
	}
	num, ok1 := toNumber(args[0])
	places, ok2 := toNumber(args[1])
	if !ok1 || !ok2 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "ROUNDDOWN requires numeric arguments")
	}
	mult := math.Pow(10, places)
	if num >= 0 {
		return math.Floor(num*mult) / mult, nil
	}
	return math.Ceil(num*mult) / mult, nil
}

func (bf *BuiltInFunctions) INT(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "INT requires exactly 1 argument")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "INT requires a numeric argument")
	}
	return math.Floor(num), nil
}

func (bf *BuiltInFunctions) TRUNC(args ...any) (Primitive, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "TRUNC requires 1 or 2 arguments")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "TRUNC requires a numeric argument")
	}
	places := 0.0
	if len(args) == 2 {
		places, ok = toNumber(args[1])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "TRUNC requires a numeric second argument")
		}
	}
	mult := math.Pow(10, places)
	if num >= 0 {
		return math.Floor(num*mult) / mult, nil
	}
	return math.Ceil(num*mult) / mult, nil
}

func (bf *BuiltInFunctions) SIGN(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SIGN requires exactly 1 argument")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SIGN requires a numeric argument")
	}
	switch {
	case num > 0:
		return 1.0, nil
	case num < 0:
		return -1.0, nil
	default:
		return 0.0, nil
	}
}

func (bf *BuiltInFunctions) PRODUCT(args ...any) (Primitive, error) {
	product := 1.0
	seen := false
	for _, arg := range args {
		for _, v := range rangeValues(arg) {
			if err := checkForError(v); err != nil {
				return nil, err
			}
			if num, ok := toNumber(v); ok {
				product *= num
				seen = true
			}
		}
	}
	if !seen {
		return 0.0, nil
	}
	return product, nil
}

// RANDBETWEEN(bottom, top) takes 2 user-facing arguments; FunctionCallNode.Eval
// and compiledCall.evalCompiled append a deterministic seed (seededUnitFloat)
// as a synthetic third argument, used in place of bf.rng whenever present.
func (bf *BuiltInFunctions) RANDBETWEEN(args ...any) (Primitive, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "RANDBETWEEN requires exactly 2 arguments")
	}
	low, ok1 := toNumber(args[0])
	high, ok2 := toNumber(args[1])
	if !ok1 || !ok2 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "RANDBETWEEN requires numeric arguments")
	}
	lo, hi := math.Ceil(low), math.Floor(high)
	if lo > hi {
		return nil, NewSpreadsheetError(ErrorCodeNum, "RANDBETWEEN requires bottom <= top")
	}
	span := hi - lo + 1
	unit := bf.rng.Float64()
	if len(args) == 3 {
		if seed, ok := args[2].(float64); ok {
			unit = seed
		}
	}
	return lo + math.Floor(unit*span), nil
}
