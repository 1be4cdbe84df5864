package formula

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSheetNameRejectsBlankTooLongAndInvalidChars(t *testing.T) {
	require.Error(t, ValidateSheetName(""))
	require.Error(t, ValidateSheetName("   "))
	require.Error(t, ValidateSheetName(strings.Repeat("a", 32)))
	require.Error(t, ValidateSheetName("'Leading"))
	require.Error(t, ValidateSheetName("Trailing'"))
	require.Error(t, ValidateSheetName("a/b"))
	require.Error(t, ValidateSheetName("a[b]"))
	require.NoError(t, ValidateSheetName("Sheet 1"))
}

func TestSheetNamesEqualFoldsCaseAndNormalizesUnicode(t *testing.T) {
	assert.True(t, SheetNamesEqual("Sheet1", "sheet1"))
	assert.True(t, SheetNamesEqual("Straße", "STRASSE"))
	assert.False(t, SheetNamesEqual("Sheet1", "Sheet2"))
}

func TestDisambiguateSheetNameAppendsCounter(t *testing.T) {
	taken := map[string]bool{"Sheet1": true, "Sheet1 2": true}
	exists := func(candidate string) bool { return taken[candidate] }

	assert.Equal(t, "Sheet2", DisambiguateSheetName("Sheet2", exists))
	assert.Equal(t, "Sheet1 3", DisambiguateSheetName("Sheet1", exists))
}

func TestAddWorksheetDisambiguatesCaseInsensitiveCollision(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("é"))
	require.NoError(t, s.AddWorksheet("É"))

	names := s.ListWorksheets()
	assert.Contains(t, names, "é")
	assert.Contains(t, names, "É 2")
}

func TestAddWorksheetRejectsInvalidName(t *testing.T) {
	s := NewSpreadsheet()
	err := s.AddWorksheet("bad/name")
	require.Error(t, err)
}

func TestRenameWorksheetAllowsCaseOnlyRename(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.RenameWorksheet("Sheet1", "sheet1"))
	assert.True(t, s.DoesWorksheetExist("sheet1"))
}

func TestRenameWorksheetRejectsCollisionWithDifferentSheet(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.AddWorksheet("Sheet2"))
	err := s.RenameWorksheet("Sheet2", "SHEET1")
	require.Error(t, err)
}
