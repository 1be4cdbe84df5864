package formula

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LocaleConfig carries the punctuation a locale uses inside formula text.
// The lexer (NewLexerWithLocale) reads ArgumentSeparator and the
// True/False keywords; ParseLocaleDate and FormatLocaleDate read
// DateSeparator. DecimalSeparator, ThousandSeparator, RowSeparator and
// ColumnSeparator are stored and validated but not read by the lexer or by
// TEXT(), so number literals are always written with '.'. The separators
// are independent of each other -- de-DE uses ';' as its argument
// separator specifically because ',' is already its decimal separator.
type LocaleConfig struct {
	ID                string `validate:"required"`
	DecimalSeparator  rune   `validate:"required"`
	ThousandSeparator rune
	ArgumentSeparator rune `validate:"required"`
	RowSeparator      rune `validate:"required"`
	ColumnSeparator   rune `validate:"required"`
	DateSeparator     rune `validate:"required"`
	TrueKeyword       string `validate:"required"`
	FalseKeyword      string `validate:"required"`
}

// localePack is the on-disk (YAML) shape of a locale's translation tables.
// Spec'd as TSV in the original; expressed here as YAML pairs since no TSV
// library exists anywhere in the retrieval pack and encoding/csv has no
// ecosystem alternative for this shape.
type localePack struct {
	Functions []translationPair `yaml:"functions"`
	Errors    []translationPair `yaml:"errors"`
}

type translationPair struct {
	Canonical string `yaml:"canonical"`
	Localized string `yaml:"localized"`
}

// Locale is a fully loaded, immutable locale: punctuation plus the
// canonical<->localized translation tables for function names and error
// literals.
type Locale struct {
	Config LocaleConfig

	funcCanonicalToLocalized map[string]string
	funcLocalizedToCanonical map[string]string
	errCanonicalToLocalized  map[string]string
	errLocalizedToCanonical  map[string]string
}

var validate = validator.New()

// LocaleRegistry maps locale IDs to loaded Locale instances. It is
// immutable after RegisterLocale calls complete -- per spec.md §9, tests
// that need different locales construct their own registry rather than
// mutating a process-wide global.
type LocaleRegistry struct {
	mu      sync.RWMutex
	locales map[string]*Locale
}

// NewLocaleRegistry creates an empty registry pre-seeded with en-US, the
// default locale every workbook falls back to.
func NewLocaleRegistry() *LocaleRegistry {
	r := &LocaleRegistry{locales: make(map[string]*Locale)}
	enUS := &Locale{
		Config: LocaleConfig{
			ID:                "en-US",
			DecimalSeparator:  '.',
			ThousandSeparator: ',',
			ArgumentSeparator: ',',
			RowSeparator:      ';',
			ColumnSeparator:   ',',
			DateSeparator:     '/',
			TrueKeyword:       "TRUE",
			FalseKeyword:      "FALSE",
		},
		funcCanonicalToLocalized: map[string]string{},
		funcLocalizedToCanonical: map[string]string{},
		errCanonicalToLocalized:  map[string]string{},
		errLocalizedToCanonical:  map[string]string{},
	}
	r.locales["en-US"] = enUS
	return r
}

// RegisterLocale validates cfg and loads pack (if non-empty) into a new
// Locale, failing fatally (returning a non-nil error) on validation
// failure, duplicate localized->canonical keys, or malformed rows --
// matching spec.md §4.1's "fatal load-time error" requirement.
func (r *LocaleRegistry) RegisterLocale(cfg LocaleConfig, packYAML []byte) error {
	if err := validate.Struct(cfg); err != nil {
		log.Debug().Str("locale", cfg.ID).Err(err).Msg("locale config validation failed")
		return NewApplicationError(InvalidArgument, fmt.Sprintf("invalid locale config %q: %v", cfg.ID, err))
	}

	loc := &Locale{
		Config:                   cfg,
		funcCanonicalToLocalized: map[string]string{},
		funcLocalizedToCanonical: map[string]string{},
		errCanonicalToLocalized:  map[string]string{},
		errLocalizedToCanonical:  map[string]string{},
	}

	if len(packYAML) > 0 {
		var pack localePack
		if err := yaml.Unmarshal(packYAML, &pack); err != nil {
			return NewApplicationError(InvalidArgument, fmt.Sprintf("malformed locale pack %q: %v", cfg.ID, err))
		}
		for _, p := range pack.Functions {
			canon := strings.ToUpper(p.Canonical)
			local := strings.ToUpper(p.Localized)
			if _, exists := loc.funcCanonicalToLocalized[canon]; !exists {
				// first spelling wins for rendering
				loc.funcCanonicalToLocalized[canon] = p.Localized
			}
			if existing, dup := loc.funcLocalizedToCanonical[local]; dup && existing != canon {
				return NewApplicationError(InvalidArgument,
					fmt.Sprintf("locale %q: duplicate localized function name %q maps to both %q and %q", cfg.ID, p.Localized, existing, canon))
			}
			loc.funcLocalizedToCanonical[local] = canon
		}
		for _, p := range pack.Errors {
			canon := strings.ToUpper(p.Canonical)
			local := strings.ToUpper(p.Localized)
			if _, exists := loc.errCanonicalToLocalized[canon]; !exists {
				loc.errCanonicalToLocalized[canon] = p.Localized
			}
			if existing, dup := loc.errLocalizedToCanonical[local]; dup && existing != canon {
				return NewApplicationError(InvalidArgument,
					fmt.Sprintf("locale %q: duplicate localized error literal %q maps to both %q and %q", cfg.ID, p.Localized, existing, canon))
			}
			loc.errLocalizedToCanonical[local] = canon
		}
	}

	r.mu.Lock()
	r.locales[cfg.ID] = loc
	r.mu.Unlock()
	log.Debug().Str("locale", cfg.ID).Int("functions", len(loc.funcCanonicalToLocalized)).
		Int("errors", len(loc.errCanonicalToLocalized)).Msg("locale registered")
	return nil
}

// Get returns a registered locale by ID.
func (r *LocaleRegistry) Get(id string) (*Locale, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.locales[id]
	return loc, ok
}

// CanonicalFunctionName upper-folds input and, if it carries an "_xlfn."
// prefix, preserves it while translating the remainder through the
// locale's localized->canonical table.
func (l *Locale) CanonicalFunctionName(input string) string {
	prefix := ""
	name := input
	const xlfn = "_xlfn."
	if strings.HasPrefix(strings.ToLower(input), xlfn) {
		prefix = input[:len(xlfn)]
		name = input[len(xlfn):]
	}
	upper := strings.ToUpper(name)
	if canon, ok := l.funcLocalizedToCanonical[upper]; ok {
		return prefix + canon
	}
	return prefix + upper
}

// LocalizedFunctionName returns the display form of a canonical function
// name for this locale, or the canonical name itself if untranslated.
func (l *Locale) LocalizedFunctionName(canonical string) string {
	upper := strings.ToUpper(canonical)
	if local, ok := l.funcCanonicalToLocalized[upper]; ok {
		return local
	}
	return canonical
}

// CanonicalErrorLiteral maps a localized (or already-canonical) error
// literal to its canonical code string. "#N/A!" is always accepted as an
// alias for "#N/A" regardless of locale, per spec.md §9's decision that
// no other aliases are assumed.
func (l *Locale) CanonicalErrorLiteral(localized string) (string, bool) {
	upper := strings.ToUpper(localized)
	if upper == "#N/A!" {
		return "#N/A", true
	}
	if canon, ok := l.errLocalizedToCanonical[upper]; ok {
		return canon, true
	}
	for _, known := range ErrorMapper {
		if known == upper {
			return upper, true
		}
	}
	return "", false
}
