package formula

import "sort"

// FILTER(array, include, [if_empty]) -- include is a boolean array/range the
// same length as array; rows where include is falsy are dropped.
func (bf *BuiltInFunctions) FILTER(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "FILTER requires array, include, and an optional if_empty")
	}
	grid := rangeGrid(args[0])
	include := rangeValues(args[1])
	if len(include) != len(grid) {
		return nil, NewSpreadsheetError(ErrorCodeValue, "FILTER include must have one entry per row of array")
	}
	kept := [][]Primitive{}
	for i, row := range grid {
		if isTruthy(include[i]) {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		if len(args) == 3 {
			return args[2], nil
		}
		return nil, NewSpreadsheetError(ErrorCodeCalc, "FILTER matched no rows")
	}
	cols := len(kept[0])
	cells := make([]Primitive, 0, len(kept)*cols)
	for _, row := range kept {
		cells = append(cells, row...)
	}
	return NewArrayValue(len(kept), cols, cells), nil
}

// UNIQUE(array) -- returns the distinct rows of array in first-seen order;
// by_col and exactly_once variants are not implemented.
func (bf *BuiltInFunctions) UNIQUE(args ...any) (Primitive, error) {
	if len(args) != 1 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "UNIQUE requires exactly 1 argument")
	}
	grid := rangeGrid(args[0])
	seen := map[string]bool{}
	kept := [][]Primitive{}
	for _, row := range grid {
		key := ""
		for _, v := range row {
			key += toString(v) + "\x00"
		}
		if !seen[key] {
			seen[key] = true
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeCalc, "UNIQUE produced no rows")
	}
	cols := len(kept[0])
	cells := make([]Primitive, 0, len(kept)*cols)
	for _, row := range kept {
		cells = append(cells, row...)
	}
	return NewArrayValue(len(kept), cols, cells), nil
}

// SORT(array, [sort_index], [sort_order]) -- sort_order 1 (default)
// ascending, -1 descending; multi-key sort is not implemented.
func (bf *BuiltInFunctions) SORT(args ...any) (Primitive, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SORT requires array and optional sort_index/sort_order")
	}
	grid := rangeGrid(args[0])
	sortIndex := 1
	if len(args) >= 2 {
		n, ok := toNumber(args[1])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "SORT requires a numeric sort_index")
		}
		sortIndex = int(n)
	}
	descending := false
	if len(args) == 3 {
		n, ok := toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "SORT requires a numeric sort_order")
		}
		descending = n < 0
	}
	if len(grid) == 0 || sortIndex < 1 || sortIndex > len(grid[0]) {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SORT sort_index out of range")
	}
	sorted := make([][]Primitive, len(grid))
	copy(sorted, grid)
	col := sortIndex - 1
	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := comparePrimitives(sorted[i][col], sorted[j][col])
		if descending {
			return cmp > 0
		}
		return cmp < 0 && cmp != -2
	})
	cells := make([]Primitive, 0, len(sorted)*len(grid[0]))
	for _, row := range sorted {
		cells = append(cells, row...)
	}
	return NewArrayValue(len(sorted), len(grid[0]), cells), nil
}

// SORTBY(array, by_array, [sort_order]) -- sorts array's rows by the
// corresponding values in by_array rather than a column of array itself.
func (bf *BuiltInFunctions) SORTBY(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SORTBY requires array, by_array, and an optional sort_order")
	}
	grid := rangeGrid(args[0])
	keys := rangeValues(args[1])
	if len(keys) != len(grid) {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SORTBY by_array must have one entry per row of array")
	}
	descending := false
	if len(args) == 3 {
		n, ok := toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "SORTBY requires a numeric sort_order")
		}
		descending = n < 0
	}
	idx := make([]int, len(grid))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		cmp := comparePrimitives(keys[idx[i]], keys[idx[j]])
		if descending {
			return cmp > 0
		}
		return cmp < 0 && cmp != -2
	})
	if len(grid) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeCalc, "SORTBY produced no rows")
	}
	cols := len(grid[0])
	cells := make([]Primitive, 0, len(grid)*cols)
	for _, i := range idx {
		cells = append(cells, grid[i]...)
	}
	return NewArrayValue(len(grid), cols, cells), nil
}

// SEQUENCE(rows, [columns], [start], [step])
func (bf *BuiltInFunctions) SEQUENCE(args ...any) (Primitive, error) {
	if len(args) < 1 || len(args) > 4 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "SEQUENCE requires 1 to 4 arguments")
	}
	rowsN, ok := toNumber(args[0])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SEQUENCE requires a numeric rows argument")
	}
	cols := 1.0
	start := 1.0
	step := 1.0
	var err error
	if len(args) >= 2 {
		if cols, ok = toNumber(args[1]); !ok {
			err = NewSpreadsheetError(ErrorCodeValue, "SEQUENCE requires a numeric columns argument")
		}
	}
	if len(args) >= 3 {
		if start, ok = toNumber(args[2]); !ok {
			err = NewSpreadsheetError(ErrorCodeValue, "SEQUENCE requires a numeric start argument")
		}
	}
	if len(args) == 4 {
		if step, ok = toNumber(args[3]); !ok {
			err = NewSpreadsheetError(ErrorCodeValue, "SEQUENCE requires a numeric step argument")
		}
	}
	if err != nil {
		return nil, err
	}
	rows, columns := int(rowsN), int(cols)
	if rows < 1 || columns < 1 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "SEQUENCE requires positive rows and columns")
	}
	cells := make([]Primitive, rows*columns)
	v := start
	for i := range cells {
		cells[i] = v
		v += step
	}
	return NewArrayValue(rows, columns, cells), nil
}

func clampIndex(n, size int) int {
	if n < 0 {
		n = size + n
	}
	if n < 0 {
		return 0
	}
	if n > size {
		return size
	}
	return n
}

// TAKE(array, rows, [columns]) -- positive counts take from the start,
// negative counts take from the end.
func (bf *BuiltInFunctions) TAKE(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "TAKE requires array, rows, and an optional columns")
	}
	grid := rangeGrid(args[0])
	rowsN, ok := toNumber(args[1])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "TAKE requires a numeric rows argument")
	}
	rows := int(rowsN)
	var rowSlice [][]Primitive
	if rows >= 0 {
		rowSlice = grid[:clampIndex(rows, len(grid))]
	} else {
		rowSlice = grid[clampIndex(len(grid)+rows, len(grid)):]
	}
	if len(args) == 3 {
		colsN, ok := toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "TAKE requires a numeric columns argument")
		}
		cols := int(colsN)
		trimmed := make([][]Primitive, len(rowSlice))
		for i, row := range rowSlice {
			if cols >= 0 {
				trimmed[i] = row[:clampIndex(cols, len(row))]
			} else {
				trimmed[i] = row[clampIndex(len(row)+cols, len(row)):]
			}
		}
		rowSlice = trimmed
	}
	if len(rowSlice) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeCalc, "TAKE produced no rows")
	}
	cols := len(rowSlice[0])
	cells := make([]Primitive, 0, len(rowSlice)*cols)
	for _, row := range rowSlice {
		cells = append(cells, row...)
	}
	return NewArrayValue(len(rowSlice), cols, cells), nil
}

// DROP(array, rows, [columns]) -- the complement of TAKE.
func (bf *BuiltInFunctions) DROP(args ...any) (Primitive, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "DROP requires array, rows, and an optional columns")
	}
	grid := rangeGrid(args[0])
	rowsN, ok := toNumber(args[1])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "DROP requires a numeric rows argument")
	}
	rows := int(rowsN)
	var rowSlice [][]Primitive
	if rows >= 0 {
		rowSlice = grid[clampIndex(rows, len(grid)):]
	} else {
		rowSlice = grid[:clampIndex(len(grid)+rows, len(grid))]
	}
	if len(args) == 3 {
		colsN, ok := toNumber(args[2])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "DROP requires a numeric columns argument")
		}
		cols := int(colsN)
		trimmed := make([][]Primitive, len(rowSlice))
		for i, row := range rowSlice {
			if cols >= 0 {
				trimmed[i] = row[clampIndex(cols, len(row)):]
			} else {
				trimmed[i] = row[:clampIndex(len(row)+cols, len(row))]
			}
		}
		rowSlice = trimmed
	}
	if len(rowSlice) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeCalc, "DROP produced no rows")
	}
	cols := len(rowSlice[0])
	cells := make([]Primitive, 0, len(rowSlice)*cols)
	for _, row := range rowSlice {
		cells = append(cells, row...)
	}
	return NewArrayValue(len(rowSlice), cols, cells), nil
}

// CHOOSECOLS(array, col_num1, [col_num2, ...]) -- 1-based, negative indexes
// count from the last column.
func (bf *BuiltInFunctions) CHOOSECOLS(args ...any) (Primitive, error) {
	if len(args) < 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "CHOOSECOLS requires array and at least 1 column index")
	}
	grid := rangeGrid(args[0])
	if len(grid) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSECOLS requires a non-empty array")
	}
	width := len(grid[0])
	colIdxs := make([]int, len(args)-1)
	for i, a := range args[1:] {
		n, ok := toNumber(a)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSECOLS requires numeric column indexes")
		}
		idx := int(n)
		if idx < 0 {
			idx = width + idx + 1
		}
		if idx < 1 || idx > width {
			return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSECOLS column index out of range")
		}
		colIdxs[i] = idx - 1
	}
	cells := make([]Primitive, 0, len(grid)*len(colIdxs))
	for _, row := range grid {
		for _, c := range colIdxs {
			cells = append(cells, row[c])
		}
	}
	return NewArrayValue(len(grid), len(colIdxs), cells), nil
}

// CHOOSEROWS(array, row_num1, [row_num2, ...])
func (bf *BuiltInFunctions) CHOOSEROWS(args ...any) (Primitive, error) {
	if len(args) < 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "CHOOSEROWS requires array and at least 1 row index")
	}
	grid := rangeGrid(args[0])
	height := len(grid)
	if height == 0 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSEROWS requires a non-empty array")
	}
	rowIdxs := make([]int, len(args)-1)
	for i, a := range args[1:] {
		n, ok := toNumber(a)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSEROWS requires numeric row indexes")
		}
		idx := int(n)
		if idx < 0 {
			idx = height + idx + 1
		}
		if idx < 1 || idx > height {
			return nil, NewSpreadsheetError(ErrorCodeValue, "CHOOSEROWS row index out of range")
		}
		rowIdxs[i] = idx - 1
	}
	cols := len(grid[0])
	cells := make([]Primitive, 0, len(rowIdxs)*cols)
	for _, r := range rowIdxs {
		cells = append(cells, grid[r]...)
	}
	return NewArrayValue(len(rowIdxs), cols, cells), nil
}

// HSTACK(array1, array2, ...) -- rows are padded with #N/A when arrays have
// a different row count.
func (bf *BuiltInFunctions) HSTACK(args ...any) (Primitive, error) {
	if len(args) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "HSTACK requires at least 1 argument")
	}
	grids := make([][][]Primitive, len(args))
	maxRows := 0
	totalCols := 0
	for i, a := range args {
		grids[i] = rangeGrid(a)
		if len(grids[i]) > maxRows {
			maxRows = len(grids[i])
		}
		if len(grids[i]) > 0 {
			totalCols += len(grids[i][0])
		}
	}
	cells := make([]Primitive, 0, maxRows*totalCols)
	na := NewSpreadsheetError(ErrorCodeNA, "")
	for r := 0; r < maxRows; r++ {
		for _, g := range grids {
			cols := 0
			if len(g) > 0 {
				cols = len(g[0])
			}
			for c := 0; c < cols; c++ {
				if r < len(g) {
					cells = append(cells, g[r][c])
				} else {
					cells = append(cells, na)
				}
			}
		}
	}
	return NewArrayValue(maxRows, totalCols, cells), nil
}

// VSTACK(array1, array2, ...) -- columns are padded with #N/A when arrays
// have a different column count.
func (bf *BuiltInFunctions) VSTACK(args ...any) (Primitive, error) {
	if len(args) == 0 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "VSTACK requires at least 1 argument")
	}
	grids := make([][][]Primitive, len(args))
	maxCols := 0
	totalRows := 0
	for i, a := range args {
		grids[i] = rangeGrid(a)
		totalRows += len(grids[i])
		if len(grids[i]) > 0 && len(grids[i][0]) > maxCols {
			maxCols = len(grids[i][0])
		}
	}
	cells := make([]Primitive, 0, totalRows*maxCols)
	na := NewSpreadsheetError(ErrorCodeNA, "")
	for _, g := range grids {
		for _, row := range g {
			for c := 0; c < maxCols; c++ {
				if c < len(row) {
					cells = append(cells, row[c])
				} else {
					cells = append(cells, na)
				}
			}
		}
	}
	return NewArrayValue(totalRows, maxCols, cells), nil
}
