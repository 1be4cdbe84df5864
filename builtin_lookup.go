package formula

// rangeGrid materializes a Range into a row-major 2D grid, using the
// range's own bounds to determine dimensions. A non-Range scalar becomes
// a 1x1 grid.
func rangeGrid(arg Primitive) [][]Primitive {
	if arr, ok := arg.(*ArrayValue); ok {
		grid := make([][]Primitive, arr.Rows)
		for r := 0; r < arr.Rows; r++ {
			grid[r] = arr.Cells[r*arr.Cols : (r+1)*arr.Cols]
		}
		return grid
	}
	r, ok := arg.(Range)
	if !ok {
		return [][]Primitive{{arg}}
	}
	bounds := r.GetBounds()
	rows := int(bounds.EndRow-bounds.StartRow) + 1
	cols := int(bounds.EndColumn-bounds.StartColumn) + 1
	grid := make([][]Primitive, rows)
	for i := range grid {
		grid[i] = make([]Primitive, cols)
	}
	i := 0
	for v := range r.IterateValues() {
		row, col := i/cols, i%cols
		if row < rows {
			grid[row][col] = v
		}
		i++
	}
	return grid
}

func (bf *BuiltInFunctions) VLOOKUP(args ...any) (Primitive, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "VLOOKUP requires 3 or 4 arguments")
	}
	lookupValue := args[0]
	grid := rangeGrid(args[1])
	colIndexNum, ok := toNumber(args[2])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "VLOOKUP requires a numeric column index")
	}
	colIndex := int(colIndexNum) - 1
	exactMatch := len(args) == 3 || !isTruthy(args[3])

	if len(grid) == 0 || colIndex < 0 || colIndex >= len(grid[0]) {
		return nil, NewSpreadsheetError(ErrorCodeRef, "VLOOKUP column index out of range")
	}

	if exactMatch {
		for _, row := range grid {
			if comparePrimitives(row[0], lookupValue) == 0 {
				return row[colIndex], nil
			}
		}
		return nil, NewSpreadsheetError(ErrorCodeNA, "VLOOKUP found no match")
	}

	var best Primitive
	found := false
	for _, row := range grid {
		cmp := comparePrimitives(row[0], lookupValue)
		if cmp == -2 {
			continue
		}
		if cmp <= 0 {
			best = row[colIndex]
			found = true
		} else {
			break
		}
	}
	if !found {
		return nil, NewSpreadsheetError(ErrorCodeNA, "VLOOKUP found no approximate match")
	}
	return best, nil
}

func (bf *BuiltInFunctions) HLOOKUP(args ...any) (Primitive, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "HLOOKUP requires 3 or 4 arguments")
	}
	lookupValue := args[0]
	grid := rangeGrid(args[1])
	rowIndexNum, ok := toNumber(args[2])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "HLOOKUP requires a numeric row index")
	}
	rowIndex := int(rowIndexNum) - 1
	exactMatch := len(args) == 3 || !isTruthy(args[3])

	if len(grid) == 0 || rowIndex < 0 || rowIndex >= len(grid) {
		return nil, NewSpreadsheetError(ErrorCodeRef, "HLOOKUP row index out of range")
	}

	if exactMatch {
		for c := 0; c < len(grid[0]); c++ {
			if comparePrimitives(grid[0][c], lookupValue) == 0 {
				return grid[rowIndex][c], nil
			}
		}
		return nil, NewSpreadsheetError(ErrorCodeNA, "HLOOKUP found no match")
	}

	var best Primitive
	found := false
	for c := 0; c < len(grid[0]); c++ {
		cmp := comparePrimitives(grid[0][c], lookupValue)
		if cmp == -2 {
			continue
		}
		if cmp <= 0 {
			best = grid[rowIndex][c]
			found = true
		} else {
			break
		}
	}
	if !found {
		return nil, NewSpreadsheetError(ErrorCodeNA, "HLOOKUP found no approximate match")
	}
	return best, nil
}

// XLOOKUP(lookup_value, lookup_array, return_array[, if_not_found])
func (bf *BuiltInFunctions) XLOOKUP(args ...any) (Primitive, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "XLOOKUP requires 3 or 4 arguments")
	}
	lookupValue := args[0]
	lookupVals := rangeValues(args[1])
	returnVals := rangeValues(args[2])
	if len(lookupVals) != len(returnVals) {
		return nil, NewSpreadsheetError(ErrorCodeValue, "XLOOKUP lookup_array and return_array must be the same size")
	}
	for i, v := range lookupVals {
		if comparePrimitives(v, lookupValue) == 0 {
			return returnVals[i], nil
		}
	}
	if len(args) == 4 {
		return args[3], nil
	}
	return nil, NewSpreadsheetError(ErrorCodeNA, "XLOOKUP found no match")
}

// INDEX(array, row_num[, col_num])
func (bf *BuiltInFunctions) INDEX(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "INDEX requires 2 or 3 arguments")
	}
	grid := rangeGrid(args[0])
	rowNum, ok := toNumber(args[1])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "INDEX requires a numeric row number")
	}
	colNum := 1.0
	if len(args) == 3 {
		colNum, ok = toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "INDEX requires a numeric column number")
		}
	}
	row, col := int(rowNum), int(colNum)

	if row == 0 && len(grid) == 1 {
		row = 1
	}
	if col == 0 && len(grid) > 0 && len(grid[0]) == 1 {
		col = 1
	}
	if row < 1 || row > len(grid) || len(grid) == 0 || col < 1 || col > len(grid[0]) {
		return nil, NewSpreadsheetError(ErrorCodeRef, "INDEX reference is out of range")
	}
	return grid[row-1][col-1], nil
}

// MATCH(lookup_value, lookup_array[, match_type])
func (bf *BuiltInFunctions) MATCH(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "MATCH requires 2 or 3 arguments")
	}
	lookupValue := args[0]
	values := rangeValues(args[1])
	matchType := 1.0
	if len(args) == 3 {
		var ok bool
		matchType, ok = toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "MATCH requires a numeric match type")
		}
	}

	switch {
	case matchType == 0:
		for i, v := range values {
			if comparePrimitives(v, lookupValue) == 0 {
				return float64(i + 1), nil
			}
		}
	case matchType > 0:
		best := -1
		for i, v := range values {
			cmp := comparePrimitives(v, lookupValue)
			if cmp == -2 {
				continue
			}
			if cmp <= 0 {
				best = i
			} else {
				break
			}
		}
		if best >= 0 {
			return float64(best + 1), nil
		}
	default:
		best := -1
		for i, v := range values {
			cmp := comparePrimitives(v, lookupValue)
			if cmp == -2 {
				continue
			}
			if cmp >= 0 {
				best = i
			} else {
				break
			}
		}
		if best >= 0 {
			return float64(best + 1), nil
		}
	}
	return nil, NewSpreadsheetError(ErrorCodeNA, "MATCH found no match")
}

func (bf *BuiltInFunctions) CHOOSE(args ...any) (Primitive, error) {
	if len(args) < 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "CHOOSE requires at least 2 arguments")
	}
	idxNum, ok := toNumber(args[0])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSE requires a numeric index")
	}
	idx := int(idxNum)
	if idx < 1 || idx > len(args)-1 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSE index out of range")
	}
	return args[idx], nil
}
