package formula

func (bf *BuiltInFunctions) ISBLANK(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ISBLANK requires exactly 1 argument")
	}
	_, isBlank := args[0].(BlankValue)
	return args[0] == nil || isBlank, nil
}

func (bf *BuiltInFunctions) ISERROR(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ISERROR requires exactly 1 argument")
	}
	return checkForError(args[0]) != nil, nil
}

func (bf *BuiltInFunctions) ISNA(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ISNA requires exactly 1 argument")
	}
	err := checkForError(args[0])
	return err != nil && err.ErrorCode == ErrorCodeNA, nil
}

func (bf *BuiltInFunctions) ISNUMBER(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ISNUMBER requires exactly 1 argument")
	}
	_, ok := args[0].(float64)
	return ok, nil
}

func (bf *BuiltInFunctions) ISTEXT(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ISTEXT requires exactly 1 argument")
	}
	_, ok := args[0].(string)
	return ok, nil
}

func (bf *BuiltInFunctions) ISLOGICAL(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ISLOGICAL requires exactly 1 argument")
	}
	_, ok := args[0].(bool)
	return ok, nil
}

func (bf *BuiltInFunctions) ISREF(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "ISREF requires exactly 1 argument")
	}
	switch args[0].(type) {
	case Range, ReferenceValue, ReferenceUnionValue:
		return true, nil
	default:
		return false, nil
	}
}

func (bf *BuiltInFunctions) NA(args ...any) (Primitive, error) {
	if len(args) != 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "NA takes no arguments")
	}
	return nil, NewSpreadsheetError(ErrorCodeNA, "")
}

// CELL("format"|"parentheses"|"type"|..., reference) -- only the subset
// spec.md §2 calls out as in-scope is implemented; unsupported info_types
// are #VALUE!. FunctionCallNode.Eval appends a synthetic third argument
// (the reference's stored number-format code) whenever the second
// argument resolves to a static address; only the "format" and
// "parentheses" info_types read it.
func (bf *BuiltInFunctions) CELL(args ...any) (Primitive, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "CELL requires 1 or 2 arguments")
	}
	infoType := toString(args[0])
	switch infoType {
	case "type":
		if len(args) < 2 {
			return "b", nil
		}
		switch args[1].(type) {
		case string:
			return "l", nil
		case nil:
			return "b", nil
		default:
			return "v", nil
		}
	case "format", "parentheses":
		formatCode := "General"
		if len(args) == 3 {
			if fc, ok := args[2].(string); ok {
				formatCode = fc
			}
		}
		class := ClassifyNumberFormat(formatCode)
		if infoType == "parentheses" {
			if class.Parenthesized {
				return 1.0, nil
			}
			return 0.0, nil
		}
		return class.Code, nil
	default:
		return nil, NewSpreadsheetError(ErrorCodeValue, "CELL info_type not supported")
	}
}

func (bf *BuiltInFunctions) TYPE(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "TYPE requires exactly 1 argument")
	}
	switch args[0].(type) {
	case float64:
		return 1.0, nil
	case string:
		return 2.0, nil
	case bool:
		return 4.0, nil
	case *SpreadsheetError:
		return 16.0, nil
	case *ArrayValue:
		return 64.0, nil
	default:
		return 1.0, nil
	}
}
