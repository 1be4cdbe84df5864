package formula

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// trySpill attempts to write a multi-cell array result into the rectangle
// anchored at cellAddr. A 1x1 array is stored as a plain scalar result
// without spilling. On success every follower cell records cellAddr as its
// SpillAnchor; on collision (a follower already holds a value or formula)
// the anchor itself becomes #SPILL! and no follower is written.
func (s *Spreadsheet) trySpill(cellAddr CellAddress, worksheet *Worksheet, arr *ArrayValue) Primitive {
	if prevCell := worksheet.GetCell(cellAddr.Row, cellAddr.Column); prevCell != nil {
		if prev, ok := prevCell.Value.(*ArrayValue); ok {
			s.releaseSpill(cellAddr, worksheet, prev.Rows, prev.Cols)
		}
	}

	if arr.Rows*arr.Cols <= 1 {
		if arr.Rows*arr.Cols == 1 {
			return arr.Cells[0]
		}
		return arr
	}

	for r := 0; r < arr.Rows; r++ {
		for c := 0; c < arr.Cols; c++ {
			if r == 0 && c == 0 {
				continue
			}
			row, col := cellAddr.Row+uint32(r), cellAddr.Column+uint32(c)
			existing := worksheet.GetCell(row, col)
			blockedByOther := existing != nil && (existing.SpillAnchor == nil || *existing.SpillAnchor != cellAddr)
			if blockedByOther {
				log.Debug().Uint32("worksheet", cellAddr.WorksheetID).Uint32("row", cellAddr.Row).
					Uint32("col", cellAddr.Column).Msg("spill range blocked by a non-empty cell")
				return NewSpreadsheetError(ErrorCodeSpill, "spill range blocked by a non-empty cell")
			}
		}
	}

	for r := 0; r < arr.Rows; r++ {
		for c := 0; c < arr.Cols; c++ {
			if r == 0 && c == 0 {
				continue
			}
			row, col := cellAddr.Row+uint32(r), cellAddr.Column+uint32(c)
			worksheet.SetCell(row, col, arr.At(r, c), "")
			anchor := cellAddr
			worksheet.SetSpillAnchor(row, col, &anchor)
			s.storage.dependencyGraph.MarkCellIfInRangeDirty(CellAddress{WorksheetID: cellAddr.WorksheetID, Row: row, Column: col})
			for _, dep := range s.storage.dependencyGraph.GetDirectDependents(CellAddress{WorksheetID: cellAddr.WorksheetID, Row: row, Column: col}) {
				s.storage.dependencyGraph.MarkDirty(dep)
			}
		}
	}
	return arr
}

// releaseSpill clears any follower cells this anchor previously spilled
// into, used when a cycle or a new non-array result invalidates a prior
// spill footprint.
func (s *Spreadsheet) releaseSpill(cellAddr CellAddress, worksheet *Worksheet, prevRows, prevCols int) {
	for r := 0; r < prevRows; r++ {
		for c := 0; c < prevCols; c++ {
			if r == 0 && c == 0 {
				continue
			}
			row, col := cellAddr.Row+uint32(r), cellAddr.Column+uint32(c)
			if follower := worksheet.GetCell(row, col); follower != nil && follower.SpillAnchor != nil && *follower.SpillAnchor == cellAddr {
				worksheet.RemoveCell(row, col)
				s.storage.dependencyGraph.MarkCellIfInRangeDirty(CellAddress{WorksheetID: cellAddr.WorksheetID, Row: row, Column: col})
			}
		}
	}
}

// readyCells returns the subset of the dirty set whose cell and range
// precedents are all clean -- the schedulable frontier for this round.
func (s *Spreadsheet) readyCells() []CellAddress {
	graph := s.storage.dependencyGraph
	ready := []CellAddress{}
	for addr := range graph.dirtySet {
		isReady := true
		for _, p := range graph.GetDirectPrecedents(addr) {
			if _, dirty := graph.dirtySet[p]; dirty {
				isReady = false
				break
			}
		}
		if isReady {
			for _, rangeAddr := range graph.GetRangePrecedents(addr) {
				for row := rangeAddr.StartRow; row <= rangeAddr.EndRow && isReady; row++ {
					for col := rangeAddr.StartColumn; col <= rangeAddr.EndColumn; col++ {
						rc := CellAddress{WorksheetID: rangeAddr.WorksheetID, Row: row, Column: col}
						if _, dirty := graph.dirtySet[rc]; dirty {
							isReady = false
							break
						}
					}
				}
			}
		}
		if isReady {
			ready = append(ready, addr)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].WorksheetID != ready[j].WorksheetID {
			return ready[i].WorksheetID < ready[j].WorksheetID
		}
		if ready[i].Row != ready[j].Row {
			return ready[i].Row < ready[j].Row
		}
		return ready[i].Column < ready[j].Column
	})
	return ready
}

// evalOneCell computes the formula result for a single dirty cell without
// walking its precedents (the caller guarantees readiness) and without
// storing the result, so it is safe to call from a worker goroutine ahead
// of the serialized commit step.
func (s *Spreadsheet) evalOneCell(cellAddr CellAddress, commitMu *sync.Mutex) (Primitive, error) {
	worksheet, exists := s.storage.worksheets.GetWorksheet(cellAddr.WorksheetID)
	if !exists {
		return nil, nil
	}
	cell := worksheet.GetCell(cellAddr.Row, cellAddr.Column)
	if cell == nil || cell.FormulaID == 0 {
		return nil, nil
	}
	ast, exists := s.storage.formulas.GetAST(cell.FormulaID)
	if !exists {
		return nil, nil
	}

	// formulas inside Compile's subset (no LET/LAMBDA/MAP, array literals,
	// spill references, intersections, unions, 3-D or external ranges)
	// compile into a context-free CompiledExpr and can run lock-free: base is passed explicitly instead
	// of going through the shared Spreadsheet.currentAddress field.
	if compiled, ok := Compile(ast); ok {
		return EvalCompiled(compiled, s, cellAddr)
	}
	log.Debug().Uint32("worksheet", cellAddr.WorksheetID).Uint32("row", cellAddr.Row).
		Uint32("col", cellAddr.Column).Msg("formula could not compile, falling back to locked tree-walking eval")

	// the tree-walking evaluator threads "current cell" and LET/LAMBDA
	// scopes through shared mutable Spreadsheet fields rather than a
	// per-call context (see DESIGN.md), so Eval itself must be serialized
	// even though the readiness computation and result commit around it
	// are not.
	commitMu.Lock()
	defer commitMu.Unlock()
	s.currentAddress = cellAddr
	return ast.Eval(s)
}

// commitCellResult stores a computed result, attempting spill allocation
// for array values, and propagates dirtiness to dependents.
func (s *Spreadsheet) commitCellResult(cellAddr CellAddress, result Primitive, evalErr error) {
	worksheet, exists := s.storage.worksheets.GetWorksheet(cellAddr.WorksheetID)
	if !exists {
		return
	}
	if evalErr != nil {
		if spreadsheetErr, ok := evalErr.(*SpreadsheetError); ok {
			worksheet.SetFormulaResult(cellAddr.Row, cellAddr.Column, spreadsheetErr)
		} else {
			worksheet.SetFormulaResult(cellAddr.Row, cellAddr.Column, NewSpreadsheetError(ErrorCodeValue, evalErr.Error()))
		}
		s.storage.dependencyGraph.ClearDirty(cellAddr)
		return
	}
	if spreadsheetErr, ok := result.(*SpreadsheetError); ok {
		worksheet.SetFormulaResult(cellAddr.Row, cellAddr.Column, spreadsheetErr)
		s.storage.dependencyGraph.ClearDirty(cellAddr)
		return
	}
	if arr, ok := result.(*ArrayValue); ok {
		result = s.trySpill(cellAddr, worksheet, arr)
	}
	if result == nil {
		result = 0.0
	}
	worksheet.SetFormulaResult(cellAddr.Row, cellAddr.Column, result)
	s.storage.dependencyGraph.ClearDirty(cellAddr)

	for _, dep := range s.storage.dependencyGraph.GetDirectDependents(cellAddr) {
		s.storage.dependencyGraph.MarkDirty(dep)
	}
}

// recalcEpoch derives a recalculation identifier used to seed any
// per-cell deterministic RNG state a caller wants independent of whether
// recalculation ran single- or multi-threaded.
func recalcEpoch() uuid.UUID {
	return uuid.New()
}

// CalculateParallel recalculates the workbook using a level-by-level
// ready-queue walk: within each round every schedulable cell (precedents
// already clean) is evaluated by a worker pool, then results are
// committed in address order so observable behavior matches
// Calculate()'s single-threaded walk. ctx allows cooperative cancellation
// between rounds; cells left dirty when ctx is cancelled keep their
// pre-recalc values.
func (s *Spreadsheet) CalculateParallel(ctx context.Context) error {
	s.beginRecalcEpoch()
	s.storage.dependencyGraph.MarkAllVolatileDirty()

	var commitMu sync.Mutex
	for len(s.storage.dependencyGraph.dirtySet) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		ready := s.readyCells()
		if len(ready) == 0 {
			// remaining dirty cells never became schedulable: a cycle.
			log.Debug().Int("cells", len(s.storage.dependencyGraph.dirtySet)).
				Msg("circular reference detected during parallel recalculation")
			for addr := range s.storage.dependencyGraph.dirtySet {
				worksheet, exists := s.storage.worksheets.GetWorksheet(addr.WorksheetID)
				if exists {
					if cell := worksheet.GetCell(addr.Row, addr.Column); cell != nil && cell.SpillAnchor == nil {
						if prev, ok := cell.Value.(*ArrayValue); ok {
							s.releaseSpill(addr, worksheet, prev.Rows, prev.Cols)
						}
					}
					worksheet.SetFormulaResult(addr.Row, addr.Column, NewSpreadsheetError(ErrorCodeCirc, "circular reference detected during recalculation"))
				}
				s.storage.dependencyGraph.ClearDirty(addr)
			}
			break
		}

		results := make([]Primitive, len(ready))
		errs := make([]error, len(ready))
		g, gctx := errgroup.WithContext(ctx)
		for i, addr := range ready {
			i, addr := i, addr
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				result, err := s.evalOneCell(addr, &commitMu)
				results[i] = result
				errs[i] = err
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Debug().Err(err).Int("round_size", len(ready)).Msg("parallel recalculation round aborted")
			return err
		}

		for i, addr := range ready {
			s.commitCellResult(addr, results[i], errs[i])
		}
	}

	s.storage.dependencyGraph.ClearAllDirty()
	return nil
}
