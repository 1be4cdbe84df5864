package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlankCoercion(t *testing.T) {
	num, ok := toNumber(Blank)
	require.True(t, ok)
	assert.Equal(t, 0.0, num)

	assert.Equal(t, "", toString(Blank))
	assert.False(t, isTruthy(Blank))
}

func TestParseFunctionCallOmittedMiddleArgument(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.Set("Sheet1!A1", 3.0))
	require.NoError(t, s.Set("Sheet1!A2", 1.0))
	require.NoError(t, s.Set("Sheet1!A3", 2.0))
	require.NoError(t, s.Set("Sheet1!B1", "=SORT(A1:A3,,FALSE)"))
	require.NoError(t, s.Calculate())

	// the omitted sort_index parses as Blank, which coerces to 0 --
	// distinct from a parse failure, which is what this input produced
	// before blank argument slots were supported
	val, err := s.Get("Sheet1!B1")
	require.NoError(t, err)
	spreadsheetErr, ok := val.(*SpreadsheetError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeValue, spreadsheetErr.ErrorCode)
}

func TestParseFunctionCallOmittedTrailingArgument(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.Set("Sheet1!A1", "=IF(TRUE,1,)"))
	require.NoError(t, s.Calculate())

	val, err := s.Get("Sheet1!A1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, val)
}
