package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frenchPackYAML = `
functions:
  - canonical: SUM
    localized: SOMME
  - canonical: AVERAGE
    localized: MOYENNE
errors:
  - canonical: "#N/A"
    localized: "#N/A"
  - canonical: "#VALUE!"
    localized: "#VALEUR!"
`

func frenchLocaleConfig() LocaleConfig {
	return LocaleConfig{
		ID:                "fr-FR",
		DecimalSeparator:  ',',
		ThousandSeparator: ' ',
		ArgumentSeparator: ';',
		RowSeparator:      '|',
		ColumnSeparator:   ';',
		DateSeparator:     '/',
		TrueKeyword:       "VRAI",
		FalseKeyword:      "FAUX",
	}
}

func TestNewLocaleRegistrySeedsEnUS(t *testing.T) {
	registry := NewLocaleRegistry()
	loc, ok := registry.Get("en-US")
	require.True(t, ok)
	assert.Equal(t, '.', loc.Config.DecimalSeparator)
	assert.Equal(t, "TRUE", loc.Config.TrueKeyword)
}

func TestRegisterLocaleTranslatesFunctionsAndErrors(t *testing.T) {
	registry := NewLocaleRegistry()
	require.NoError(t, registry.RegisterLocale(frenchLocaleConfig(), []byte(frenchPackYAML)))

	loc, ok := registry.Get("fr-FR")
	require.True(t, ok)

	assert.Equal(t, "SOMME", loc.LocalizedFunctionName("SUM"))
	assert.Equal(t, "SUM", loc.CanonicalFunctionName("SOMME"))
	assert.Equal(t, "SUM", loc.CanonicalFunctionName("somme"))

	canon, ok := loc.CanonicalErrorLiteral("#VALEUR!")
	require.True(t, ok)
	assert.Equal(t, "#VALUE!", canon)
}

func TestRegisterLocaleRejectsInvalidConfig(t *testing.T) {
	registry := NewLocaleRegistry()
	cfg := frenchLocaleConfig()
	cfg.DecimalSeparator = 0 // required field left zero

	err := registry.RegisterLocale(cfg, nil)
	require.Error(t, err)

	appErr, ok := err.(*AppError)
	require.True(t, ok)
	assert.Equal(t, InvalidArgument, appErr.Code)
}

func TestRegisterLocaleRejectsDuplicateLocalizedName(t *testing.T) {
	registry := NewLocaleRegistry()
	conflictingPack := `
functions:
  - canonical: SUM
    localized: TOTAL
  - canonical: AVERAGE
    localized: TOTAL
`
	err := registry.RegisterLocale(frenchLocaleConfig(), []byte(conflictingPack))
	require.Error(t, err)
}

func TestCanonicalFunctionNamePreservesXlfnPrefix(t *testing.T) {
	registry := NewLocaleRegistry()
	loc, ok := registry.Get("en-US")
	require.True(t, ok)

	assert.Equal(t, "_xlfn.SOMEFUNC", loc.CanonicalFunctionName("_xlfn.someFunc"))
}

func TestCanonicalErrorLiteralAcceptsNABangAlias(t *testing.T) {
	registry := NewLocaleRegistry()
	loc, ok := registry.Get("en-US")
	require.True(t, ok)

	canon, ok := loc.CanonicalErrorLiteral("#N/A!")
	require.True(t, ok)
	assert.Equal(t, "#N/A", canon)
}
