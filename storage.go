package formula

import "sync"

// Storage holds references to shared tables needed by storage operations,
// plus the cross-cutting tables that are not per-worksheet: locale packs
// (locale.go) and the CELL("format")-facing number-format side table.
// Number formats live here rather than on the worksheet chunk layout
// (worksheet.go) because they are sparse metadata, not calculated values --
// most cells never get one set.
type Storage struct {
	worksheets      *WorksheetTable
	namedRanges     *NamedRangeTable
	strings         *StringTable
	formulas        *FormulaTable
	dependencyGraph *DependencyGraph
	locales         *LocaleRegistry

	numberFormatsMu sync.RWMutex
	numberFormats   map[CellAddress]string
}

// numberFormatFor returns the format code assigned to addr via
// SetNumberFormat, or "General" if none was ever set.
func (s *Storage) numberFormatFor(addr CellAddress) string {
	s.numberFormatsMu.RLock()
	defer s.numberFormatsMu.RUnlock()
	if code, ok := s.numberFormats[addr]; ok {
		return code
	}
	return "General"
}

// setNumberFormat records the format code applied to addr.
func (s *Storage) setNumberFormat(addr CellAddress, formatCode string) {
	s.numberFormatsMu.Lock()
	defer s.numberFormatsMu.Unlock()
	if s.numberFormats == nil {
		s.numberFormats = make(map[CellAddress]string)
	}
	s.numberFormats[addr] = formatCode
}
