// Package fieldmap loads and validates the mapping from Form 1095-C data
// items to the field names of a particular PDF template.
package fieldmap

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/csg33k/aca1095c-generator/internal/domain"
)

// Section names accepted at the top level of a field map file.
const (
	SectionLine14 = "line14"
	SectionLine16 = "line16"
	SectionPart1  = "part1"
	SectionPart2  = "part2"

	allKey            = "all"
	planStartMonthKey = "plan_start_month"
)

// Part I keys, in form order.
const (
	EmployeeFirst   = "employee_first"
	EmployeeMiddle  = "employee_middle"
	EmployeeLast    = "employee_last"
	EmployeeSSN     = "employee_ssn"
	EmployeeAddr1   = "employee_addr1"
	EmployeeCity    = "employee_city"
	EmployeeState   = "employee_state"
	EmployeeZip     = "employee_zip"
	EmployeeCountry = "employee_country"
	EmployerName    = "employer_name"
	EmployerEIN     = "employer_ein"
	EmployerAddr1   = "employer_addr1"
	EmployerCity    = "employer_city"
	EmployerState   = "employer_state"
	EmployerZip     = "employer_zip"
	EmployerCountry = "employer_country"
	EmployerPhone   = "employer_phone"
)

// Part1Keys lists every Part I key in form order.
var Part1Keys = []string{
	EmployeeFirst, EmployeeMiddle, EmployeeLast, EmployeeSSN,
	EmployeeAddr1, EmployeeCity, EmployeeState, EmployeeZip, EmployeeCountry,
	EmployerName, EmployerEIN, EmployerAddr1, EmployerCity,
	EmployerState, EmployerZip, EmployerCountry, EmployerPhone,
}

// LineSection maps Line 14 or Line 16 to form fields. Months is keyed by
// canonical month index (0 = Jan).
type LineSection struct {
	All    string
	Months map[int]string
}

// Empty reports whether nothing in the section is mapped.
func (s LineSection) Empty() bool { return s.All == "" && len(s.Months) == 0 }

// FieldMap is a validated field map. The field names are opaque.
type FieldMap struct {
	Line14 LineSection
	Line16 LineSection
	Part1  map[string]string
	// PlanStartMonth is the Part II plan start month field, if mapped.
	PlanStartMonth string
}

// Load reads a field map file. JSON and YAML are both accepted.
func Load(path string) (*FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field map %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a field map. Empty input yields an empty map;
// missing sections are empty.
func Parse(data []byte) (*FieldMap, error) {
	raw := map[string]map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse field map: %w", err)
	}

	fm := &FieldMap{Part1: map[string]string{}}
	for section, entries := range raw {
		var err error
		switch section {
		case SectionLine14:
			fm.Line14, err = parseLine(section, entries)
		case SectionLine16:
			fm.Line16, err = parseLine(section, entries)
		case SectionPart1:
			fm.Part1, err = parsePart1(entries)
		case SectionPart2:
			fm.PlanStartMonth, err = parsePart2(entries)
		default:
			err = &domain.FieldMapError{Section: section, Reason: "unknown section"}
		}
		if err != nil {
			return nil, err
		}
	}
	return fm, nil
}

func parseLine(section string, entries map[string]string) (LineSection, error) {
	ls := LineSection{Months: map[int]string{}}
	for _, key := range sortedKeys(entries) {
		field := entries[key]
		if field == "" {
			return ls, &domain.FieldMapError{Section: section, Key: key, Reason: "empty field name"}
		}
		if key == allKey {
			ls.All = field
			continue
		}
		idx, ok := domain.LookupMonth(key)
		if !ok {
			return ls, &domain.FieldMapError{Section: section, Key: key, Reason: "not a month"}
		}
		if _, dup := ls.Months[idx]; dup {
			return ls, &domain.FieldMapError{Section: section, Key: key,
				Reason: fmt.Sprintf("duplicates %s", domain.Months[idx])}
		}
		ls.Months[idx] = field
	}
	return ls, nil
}

func parsePart1(entries map[string]string) (map[string]string, error) {
	known := make(map[string]bool, len(Part1Keys))
	for _, k := range Part1Keys {
		known[k] = true
	}
	out := make(map[string]string, len(entries))
	for key, field := range entries {
		if !known[key] {
			return nil, &domain.FieldMapError{Section: SectionPart1, Key: key, Reason: "unknown Part I key"}
		}
		if field == "" {
			return nil, &domain.FieldMapError{Section: SectionPart1, Key: key, Reason: "empty field name"}
		}
		out[key] = field
	}
	return out, nil
}

func parsePart2(entries map[string]string) (string, error) {
	var planStart string
	for key, field := range entries {
		if key != planStartMonthKey {
			return "", &domain.FieldMapError{Section: SectionPart2, Key: key, Reason: "unknown Part II key"}
		}
		if field == "" {
			return "", &domain.FieldMapError{Section: SectionPart2, Key: key, Reason: "empty field name"}
		}
		planStart = field
	}
	return planStart, nil
}

// FieldNames returns every destination field name, sorted and de-duplicated.
func (fm *FieldMap) FieldNames() []string {
	seen := map[string]struct{}{}
	add := func(s string) {
		if s != "" {
			seen[s] = struct{}{}
		}
	}
	for _, ls := range []LineSection{fm.Line14, fm.Line16} {
		add(ls.All)
		for _, f := range ls.Months {
			add(f)
		}
	}
	for _, f := range fm.Part1 {
		add(f)
	}
	add(fm.PlanStartMonth)
	return sortedKeys(seen)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
