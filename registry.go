package formula

import "strings"

// Arity bounds the number of arguments a function accepts. Max of 255
// signals variadic (no upper bound enforced beyond Min).
type Arity struct {
	Min int
	Max int
}

const arityVariadic = 255

// FunctionSpec describes one built-in function: how it dispatches, whether
// it is volatile (forces recalculation every pass regardless of
// dependencies), and whether it is safe to call from multiple goroutines
// concurrently during parallel recalculation.
type FunctionSpec struct {
	Name         string
	Arity        Arity
	Volatile     bool
	ThreadSafe   bool
	ArraySupport bool
	Impl         func(bf *BuiltInFunctions, args ...any) (Primitive, error)
}

var functionRegistry = map[string]*FunctionSpec{}

func register(spec *FunctionSpec) {
	functionRegistry[spec.Name] = spec
}

// registerBuiltins populates functionRegistry. Called once from init().
func registerBuiltins() {
	// Math / aggregate
	register(&FunctionSpec{Name: "SUM", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).SUM})
	register(&FunctionSpec{Name: "AVERAGE", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).AVERAGE})
	register(&FunctionSpec{Name: "AVERAGEA", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).AVERAGEA})
	register(&FunctionSpec{Name: "COUNT", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).COUNT})
	register(&FunctionSpec{Name: "COUNTA", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).COUNTA})
	register(&FunctionSpec{Name: "MAX", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).MAX})
	register(&FunctionSpec{Name: "MIN", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).MIN})
	register(&FunctionSpec{Name: "MEDIAN", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).MEDIAN})
	register(&FunctionSpec{Name: "MODE", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).MODE})
	register(&FunctionSpec{Name: "ABS", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ABS})
	register(&FunctionSpec{Name: "ROUND", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).ROUND})
	register(&FunctionSpec{Name: "FLOOR", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).FLOOR})
	register(&FunctionSpec{Name: "CEILING", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).CEILING})
	register(&FunctionSpec{Name: "SQRT", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).SQRT})
	register(&FunctionSpec{Name: "POWER", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).POWER})
	register(&FunctionSpec{Name: "MOD", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).MOD})
	register(&FunctionSpec{Name: "PI", Arity: Arity{0, 0}, ThreadSafe: true, Impl: (*BuiltInFunctions).PI})
	register(&FunctionSpec{Name: "NOW", Arity: Arity{0, 0}, Volatile: true, Impl: (*BuiltInFunctions).NOW})
	register(&FunctionSpec{Name: "TODAY", Arity: Arity{0, 0}, Volatile: true, Impl: (*BuiltInFunctions).TODAY})
	// Max is bumped by 1: FunctionCallNode.Eval/compiledCall.evalCompiled append a
	// synthetic seed argument derived from (cell, recalcEpoch) so parallel and
	// single-threaded recalculation agree on volatile draws; user-facing arity
	// is unchanged.
	register(&FunctionSpec{Name: "RAND", Arity: Arity{0, 1}, Volatile: true, Impl: (*BuiltInFunctions).RAND})
	register(&FunctionSpec{Name: "RANDBETWEEN", Arity: Arity{2, 3}, Volatile: true, Impl: (*BuiltInFunctions).RANDBETWEEN})
	register(&FunctionSpec{Name: "SUMIF", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).SUMIF})
	register(&FunctionSpec{Name: "SUMIFS", Arity: Arity{3, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).SUMIFS})
	register(&FunctionSpec{Name: "AVERAGEIF", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).AVERAGEIF})
	register(&FunctionSpec{Name: "COUNTIF", Arity: Arity{2, 2}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).COUNTIF})
	register(&FunctionSpec{Name: "COUNTIFS", Arity: Arity{2, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).COUNTIFS})
	register(&FunctionSpec{Name: "MAXA", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).MAXA})
	register(&FunctionSpec{Name: "MINA", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).MINA})
	register(&FunctionSpec{Name: "ROUNDUP", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).ROUNDUP})
	register(&FunctionSpec{Name: "ROUNDDOWN", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).ROUNDDOWN})
	register(&FunctionSpec{Name: "INT", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).INT})
	register(&FunctionSpec{Name: "TRUNC", Arity: Arity{1, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).TRUNC})
	register(&FunctionSpec{Name: "SIGN", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).SIGN})
	register(&FunctionSpec{Name: "PRODUCT", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).PRODUCT})

	// Logical
	register(&FunctionSpec{Name: "IF", Arity: Arity{2, 3}, ThreadSafe: true, Impl: (*BuiltInFunctions).IF})
	register(&FunctionSpec{Name: "AND", Arity: Arity{1, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).AND})
	register(&FunctionSpec{Name: "OR", Arity: Arity{1, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).OR})
	register(&FunctionSpec{Name: "NOT", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).NOT})
	register(&FunctionSpec{Name: "IFS", Arity: Arity{2, arityVariadic}, ThreadSafe: true, Impl: (*BuiltInFunctions).IFS})
	register(&FunctionSpec{Name: "SWITCH", Arity: Arity{3, arityVariadic}, ThreadSafe: true, Impl: (*BuiltInFunctions).SWITCH})
	register(&FunctionSpec{Name: "XOR", Arity: Arity{1, arityVariadic}, ThreadSafe: true, Impl: (*BuiltInFunctions).XOR})
	register(&FunctionSpec{Name: "IFERROR", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).IFERROR})
	register(&FunctionSpec{Name: "IFNA", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).IFNA})
	register(&FunctionSpec{Name: "TRUE", Arity: Arity{0, 0}, ThreadSafe: true, Impl: (*BuiltInFunctions).TRUE})
	register(&FunctionSpec{Name: "FALSE", Arity: Arity{0, 0}, ThreadSafe: true, Impl: (*BuiltInFunctions).FALSE})

	// Text
	register(&FunctionSpec{Name: "CONCATENATE", Arity: Arity{0, arityVariadic}, ThreadSafe: true, Impl: (*BuiltInFunctions).CONCATENATE})
	register(&FunctionSpec{Name: "CONCAT", Arity: Arity{0, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).CONCAT})
	register(&FunctionSpec{Name: "TEXTJOIN", Arity: Arity{3, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).TEXTJOIN})
	register(&FunctionSpec{Name: "LEN", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).LEN})
	register(&FunctionSpec{Name: "UPPER", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).UPPER})
	register(&FunctionSpec{Name: "LOWER", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).LOWER})
	register(&FunctionSpec{Name: "PROPER", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).PROPER})
	register(&FunctionSpec{Name: "TRIM", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).TRIM})
	register(&FunctionSpec{Name: "LEFT", Arity: Arity{1, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).LEFT})
	register(&FunctionSpec{Name: "RIGHT", Arity: Arity{1, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).RIGHT})
	register(&FunctionSpec{Name: "MID", Arity: Arity{3, 3}, ThreadSafe: true, Impl: (*BuiltInFunctions).MID})
	register(&FunctionSpec{Name: "FIND", Arity: Arity{2, 3}, ThreadSafe: true, Impl: (*BuiltInFunctions).FIND})
	register(&FunctionSpec{Name: "SEARCH", Arity: Arity{2, 3}, ThreadSafe: true, Impl: (*BuiltInFunctions).SEARCH})
	register(&FunctionSpec{Name: "SUBSTITUTE", Arity: Arity{3, 4}, ThreadSafe: true, Impl: (*BuiltInFunctions).SUBSTITUTE})
	register(&FunctionSpec{Name: "REPLACE", Arity: Arity{4, 4}, ThreadSafe: true, Impl: (*BuiltInFunctions).REPLACE})
	register(&FunctionSpec{Name: "TEXT", Arity: Arity{2, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).TEXT})
	register(&FunctionSpec{Name: "VALUE", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).VALUE})

	// Lookup / reference
	register(&FunctionSpec{Name: "VLOOKUP", Arity: Arity{3, 4}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).VLOOKUP})
	register(&FunctionSpec{Name: "HLOOKUP", Arity: Arity{3, 4}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).HLOOKUP})
	register(&FunctionSpec{Name: "XLOOKUP", Arity: Arity{3, 4}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).XLOOKUP})
	register(&FunctionSpec{Name: "INDEX", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).INDEX})
	register(&FunctionSpec{Name: "MATCH", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).MATCH})
	register(&FunctionSpec{Name: "CHOOSE", Arity: Arity{2, arityVariadic}, ThreadSafe: true, Impl: (*BuiltInFunctions).CHOOSE})

	// Information
	register(&FunctionSpec{Name: "ISBLANK", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ISBLANK})
	register(&FunctionSpec{Name: "ISERROR", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ISERROR})
	register(&FunctionSpec{Name: "ISNA", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ISNA})
	register(&FunctionSpec{Name: "ISNUMBER", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ISNUMBER})
	register(&FunctionSpec{Name: "ISTEXT", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ISTEXT})
	register(&FunctionSpec{Name: "ISLOGICAL", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ISLOGICAL})
	register(&FunctionSpec{Name: "ISREF", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).ISREF})
	register(&FunctionSpec{Name: "NA", Arity: Arity{0, 0}, ThreadSafe: true, Impl: (*BuiltInFunctions).NA})
	// Max is 3, not 2: FunctionCallNode.Eval appends a synthetic third
	// argument (the reference's stored number-format code) whenever the
	// reference resolves to a static address; user-facing arity is still 1-2.
	register(&FunctionSpec{Name: "CELL", Arity: Arity{1, 3}, ThreadSafe: true, Impl: (*BuiltInFunctions).CELL})
	register(&FunctionSpec{Name: "TYPE", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).TYPE})

	// Date / time
	register(&FunctionSpec{Name: "DATE", Arity: Arity{3, 3}, ThreadSafe: true, Impl: (*BuiltInFunctions).DATE})
	register(&FunctionSpec{Name: "YEAR", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).YEAR})
	register(&FunctionSpec{Name: "MONTH", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).MONTH})
	register(&FunctionSpec{Name: "DAY", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).DAY})
	register(&FunctionSpec{Name: "HOUR", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).HOUR})
	register(&FunctionSpec{Name: "MINUTE", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).MINUTE})
	register(&FunctionSpec{Name: "SECOND", Arity: Arity{1, 1}, ThreadSafe: true, Impl: (*BuiltInFunctions).SECOND})
	register(&FunctionSpec{Name: "WEEKDAY", Arity: Arity{1, 2}, ThreadSafe: true, Impl: (*BuiltInFunctions).WEEKDAY})
	register(&FunctionSpec{Name: "DATEDIF", Arity: Arity{3, 3}, ThreadSafe: true, Impl: (*BuiltInFunctions).DATEDIF})

	// Statistical / regression
	register(&FunctionSpec{Name: "STDEV", Arity: Arity{1, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).STDEV})
	register(&FunctionSpec{Name: "VAR", Arity: Arity{1, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).VAR})
	register(&FunctionSpec{Name: "LINEST", Arity: Arity{2, 2}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).LINEST})
	register(&FunctionSpec{Name: "TREND", Arity: Arity{3, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).TREND})
	register(&FunctionSpec{Name: "FORECAST", Arity: Arity{3, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).FORECAST})

	// Dynamic array
	register(&FunctionSpec{Name: "FILTER", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).FILTER})
	register(&FunctionSpec{Name: "UNIQUE", Arity: Arity{1, 1}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).UNIQUE})
	register(&FunctionSpec{Name: "SORT", Arity: Arity{1, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).SORT})
	register(&FunctionSpec{Name: "SORTBY", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).SORTBY})
	register(&FunctionSpec{Name: "SEQUENCE", Arity: Arity{1, 4}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).SEQUENCE})
	register(&FunctionSpec{Name: "TAKE", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).TAKE})
	register(&FunctionSpec{Name: "DROP", Arity: Arity{2, 3}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).DROP})
	register(&FunctionSpec{Name: "CHOOSECOLS", Arity: Arity{2, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).CHOOSECOLS})
	register(&FunctionSpec{Name: "CHOOSEROWS", Arity: Arity{2, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).CHOOSEROWS})
	register(&FunctionSpec{Name: "HSTACK", Arity: Arity{1, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).HSTACK})
	register(&FunctionSpec{Name: "VSTACK", Arity: Arity{1, arityVariadic}, ThreadSafe: true, ArraySupport: true, Impl: (*BuiltInFunctions).VSTACK})
}

func init() {
	registerBuiltins()
}

// lookupFunction resolves a formula function name to its spec, canonicalizing
// case and stripping the "_xlfn." prefix some spreadsheet interchange
// formats add to functions introduced after the original XLFN table froze.
func lookupFunction(name string) (*FunctionSpec, bool) {
	canonical := strings.ToUpper(name)
	canonical = strings.TrimPrefix(canonical, "_XLFN.")
	spec, ok := functionRegistry[canonical]
	return spec, ok
}

func checkArity(spec *FunctionSpec, argc int) error {
	if argc < spec.Arity.Min || (spec.Arity.Max != arityVariadic && argc > spec.Arity.Max) {
		return NewSpreadsheetError(ErrorCodeNA, "wrong number of arguments to "+spec.Name)
	}
	return nil
}
