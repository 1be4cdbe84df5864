package formula

// IFS evaluates condition/value pairs in order and returns the value paired
// with the first truthy condition. Unlike nested IFs, an unmatched IFS is
// #N/A rather than falling through to a default.
func (bf *BuiltInFunctions) IFS(args ...any) (Primitive, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "IFS requires condition/value pairs")
	}
	for i := 0; i < len(args); i += 2 {
		if err := checkForError(args[i]); err != nil {
			return nil, err
		}
		if isTruthy(args[i]) {
			return args[i+1], nil
		}
	}
	return nil, NewSpreadsheetError(ErrorCodeNA, "IFS found no matching condition")
}

// SWITCH compares expression against each value in turn, returning the
// paired result for the first match, or the trailing default if present.
func (bf *BuiltInFunctions) SWITCH(args ...any) (Primitive, error) {
	if len(args) < 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SWITCH requires an expression and at least one value/result pair")
	}
	expr := args[0]
	if err := checkForError(expr); err != nil {
		return nil, err
	}
	rest := args[1:]
	hasDefault := len(rest)%2 == 1
	pairCount := len(rest) / 2
	for i := 0; i < pairCount; i++ {
		if comparePrimitives(expr, rest[i*2]) == 0 {
			return rest[i*2+1], nil
		}
	}
	if hasDefault {
		return rest[len(rest)-1], nil
	}
	return nil, NewSpreadsheetError(ErrorCodeNA, "SWITCH found no matching value")
}

func (bf *BuiltInFunctions) XOR(args ...any) (Primitive, error) {
	if len(args) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "XOR requires at least 1 argument")
	}
	trueCount := 0
	for _, arg := range args {
		if err := checkForError(arg); err != nil {
			return nil, err
		}
		if isTruthy(arg) {
			trueCount++
		}
	}
	return trueCount%2 == 1, nil
}

// IFERROR returns valueIfError when value is a spreadsheet error, else value
// itself -- it must NOT receive an already-unwrapped value, since the point
// is to intercept the error before it propagates further.
func (bf *BuiltInFunctions) IFERROR(args ...any) (Primitive, error) {
	if len(args) != 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "IFERROR requires exactly 2 arguments")
	}
	if checkForError(args[0]) != nil {
		return args[1], nil
	}
	return args[0], nil
}

// IFNA returns valueIfNA only for #N/A specifically, unlike IFERROR which
// intercepts every error code.
func (bf *BuiltInFunctions) IFNA(args ...any) (Primitive, error) {
	if len(args) != 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "IFNA requires exactly 2 arguments")
	}
	if err := checkForError(args[0]); err != nil && err.ErrorCode == ErrorCodeNA {
		return args[1], nil
	}
	if err := checkForError(args[0]); err != nil {
		return nil, err
	}
	return args[0], nil
}

func (bf *BuiltInFunctions) TRUE(args ...any) (Primitive, error) {
	if len(args) != 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "TRUE takes no arguments")
	}
	return true, nil
}

func (bf *BuiltInFunctions) FALSE(args ...any) (Primitive, error) {
	if len(args) != 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "FALSE takes no arguments")
	}
	return false, nil
}
