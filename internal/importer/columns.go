package importer

import (
	"fmt"
	"strings"
	"unicode"
)

// Field identifies a canonical column the import understands.
type Field string

const (
	FieldDate    Field = "DATE"
	FieldDriver  Field = "DRIVER"
	FieldVehicle Field = "VEHICLE"
	FieldNotes   Field = "NOTES"
)

// Provider is one earning platform with the header spellings it is
// known under.
type Provider struct {
	Name    string   `json:"name" mapstructure:"name"`
	Aliases []string `json:"aliases" mapstructure:"aliases"`
}

// defaultAliases is the built-in alias table. Header matching is data
// driven so new languages and synonyms are added here (or via config),
// not in matching code.
var defaultAliases = map[Field][]string{
	FieldDate:    {"date", "day", "fecha", "datum", "data", "tarih", "дата", "work date", "shift date"},
	FieldDriver:  {"driver", "name", "fullname", "full name", "conductor", "chofer", "fahrer", "водитель", "driver name"},
	FieldVehicle: {"vehicle", "car", "auto", "automobile", "coche", "fahrzeug", "машина", "plate"},
	FieldNotes:   {"notes", "note", "comment", "comments", "remarks", "observaciones"},
}

// ColumnMapping is the result of matching a header row. DATE is always
// present; every other index is -1 when the column was not found. Built
// once per file and never mutated afterwards.
type ColumnMapping struct {
	Date      int
	Driver    int
	Vehicle   int
	Notes     int
	Providers map[string]int
	// Warnings holds session level issues (rowNumber 0) for optional
	// columns that could not be located.
	Warnings []Issue
}

// MappingError aborts the whole import; it is only raised for a
// missing required column.
type MappingError struct {
	Field Field
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Field)
}

// ColumnMapper maps raw header tokens to canonical fields using the
// alias table plus fuzzy substring matching.
type ColumnMapper struct {
	providers []Provider
	aliases   map[Field][]string
}

// NewColumnMapper builds a mapper for the configured providers. Extra
// aliases (keyed by canonical field name or provider name) extend the
// built-in table.
func NewColumnMapper(providers []Provider, extraAliases map[string][]string) *ColumnMapper {
	aliases := make(map[Field][]string, len(defaultAliases))
	for field, list := range defaultAliases {
		aliases[field] = append([]string(nil), list...)
	}
	for key, list := range extraAliases {
		field := Field(strings.ToUpper(strings.TrimSpace(key)))
		aliases[field] = append(aliases[field], list...)
	}
	return &ColumnMapper{providers: providers, aliases: aliases}
}

// Map resolves the header row to a ColumnMapping. Matching runs in
// canonical field priority order: DATE, DRIVER, VEHICLE, each provider
// in configured order, NOTES. A column index claimed by one field is
// never remapped to another.
func (m *ColumnMapper) Map(header []string) (ColumnMapping, error) {
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = normalizeHeader(cell)
	}

	claimed := make(map[int]bool, len(header))

	mapping := ColumnMapping{
		Date:      m.match(normalized, claimed, m.aliases[FieldDate]),
		Providers: make(map[string]int, len(m.providers)),
	}
	if mapping.Date < 0 {
		return ColumnMapping{}, &MappingError{Field: FieldDate}
	}

	mapping.Driver = m.match(normalized, claimed, m.aliases[FieldDriver])
	if mapping.Driver < 0 {
		mapping.Warnings = append(mapping.Warnings, sessionWarning("no driver column found, rows will use placeholder %q", UnknownDriver))
	}

	mapping.Vehicle = m.match(normalized, claimed, m.aliases[FieldVehicle])
	if mapping.Vehicle < 0 {
		mapping.Warnings = append(mapping.Warnings, sessionWarning("no vehicle column found, rows will use placeholder %q", UnknownVehicle))
	}

	for _, provider := range m.providers {
		idx := m.match(normalized, claimed, providerAliases(provider))
		mapping.Providers[provider.Name] = idx
		if idx < 0 {
			mapping.Warnings = append(mapping.Warnings, sessionWarning("no %s earnings column found, amounts default to 0", provider.Name))
		}
	}

	// Notes are opportunistic; a missing notes column is not worth a
	// warning.
	mapping.Notes = m.match(normalized, claimed, m.aliases[FieldNotes])

	return mapping, nil
}

// match finds the first unclaimed column for the alias list: exact
// normalized match first, then bidirectional substring containment.
// Returns -1 when nothing matches.
func (m *ColumnMapper) match(normalized []string, claimed map[int]bool, aliases []string) int {
	for _, alias := range aliases {
		alias = normalizeHeader(alias)
		if alias == "" {
			continue
		}
		for idx, cell := range normalized {
			if claimed[idx] || cell == "" {
				continue
			}
			if cell == alias {
				claimed[idx] = true
				return idx
			}
		}
	}

	for _, alias := range aliases {
		alias = normalizeHeader(alias)
		if alias == "" {
			continue
		}
		for idx, cell := range normalized {
			if claimed[idx] || cell == "" {
				continue
			}
			if strings.Contains(cell, alias) || strings.Contains(alias, cell) {
				claimed[idx] = true
				return idx
			}
		}
	}

	return -1
}

func providerAliases(provider Provider) []string {
	if len(provider.Aliases) == 0 {
		return []string{provider.Name}
	}
	aliases := make([]string, 0, len(provider.Aliases)+1)
	aliases = append(aliases, provider.Name)
	aliases = append(aliases, provider.Aliases...)
	return aliases
}

// normalizeHeader trims whitespace and surrounding punctuation and
// lowercases the cell.
func normalizeHeader(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimFunc(cell, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
	})
	return strings.ToLower(cell)
}

func sessionWarning(format string, args ...any) Issue {
	return Issue{
		RowNumber: 0,
		Severity:  SeverityWarning,
		Message:   fmt.Sprintf(format, args...),
	}
}
