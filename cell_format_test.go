package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellFormatUsesStoredNumberFormat(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.Set("Sheet1!A1", 1234.5))
	require.NoError(t, s.SetNumberFormat("Sheet1!A1", "0.00%"))
	require.NoError(t, s.Set("Sheet1!B1", "=CELL(\"format\",A1)"))
	require.NoError(t, s.Set("Sheet1!C1", "=CELL(\"parentheses\",A1)"))
	require.NoError(t, s.Calculate())

	format, err := s.Get("Sheet1!B1")
	require.NoError(t, err)
	assert.Equal(t, "P2", format)

	parens, err := s.Get("Sheet1!C1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, parens)
}

func TestCellFormatDefaultsToGeneral(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.Set("Sheet1!A1", 1.0))
	require.NoError(t, s.Set("Sheet1!B1", "=CELL(\"format\",A1)"))
	require.NoError(t, s.Calculate())

	format, err := s.Get("Sheet1!B1")
	require.NoError(t, err)
	assert.Equal(t, "G", format)
}
