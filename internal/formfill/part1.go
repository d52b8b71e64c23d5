package formfill

import (
	"strings"

	"github.com/csg33k/aca1095c-generator/internal/domain"
	"github.com/csg33k/aca1095c-generator/internal/fieldmap"
)

// Part1Values holds the Part I items found for one employee, keyed by the
// field-map Part I key. Items with no value are absent.
type Part1Values map[string]string

// part1Columns pairs demographic source columns with Part I keys, in form
// order.
var part1Columns = []struct {
	column string
	key    string
}{
	{"FirstName", fieldmap.EmployeeFirst},
	{"MiddleInitial", fieldmap.EmployeeMiddle},
	{"LastName", fieldmap.EmployeeLast},
	{"SSN", fieldmap.EmployeeSSN},
	{"AddressLine1", fieldmap.EmployeeAddr1},
	{"City", fieldmap.EmployeeCity},
	{"State", fieldmap.EmployeeState},
	{"ZipCode", fieldmap.EmployeeZip},
	{"Country", fieldmap.EmployeeCountry},
	{"EmployerName", fieldmap.EmployerName},
	{"EIN", fieldmap.EmployerEIN},
	{"EmployerAddress", fieldmap.EmployerAddr1},
	{"EmployerCity", fieldmap.EmployerCity},
	{"EmployerState", fieldmap.EmployerState},
	{"EmployerZipCode", fieldmap.EmployerZip},
	{"EmployerCountry", fieldmap.EmployerCountry},
	{"ContactTelephone", fieldmap.EmployerPhone},
}

// DerivePart1 collects the Part I values of one employee from the
// demographics table: for each source column, the first non-blank value
// among that employee's rows. Absent columns contribute nothing.
func DerivePart1(demo *domain.Table, employeeID int64) Part1Values {
	out := Part1Values{}
	if demo == nil {
		return out
	}
	var rows []int
	for i := range demo.Rows {
		id, err := domain.ParseEmployeeID(demo.Value(i, "EmployeeID"))
		if err == nil && id == employeeID {
			rows = append(rows, i)
		}
	}
	for _, pc := range part1Columns {
		if !demo.Has(pc.column) {
			continue
		}
		for _, i := range rows {
			if v := demo.Value(i, pc.column); v != "" {
				out[pc.key] = v
				break
			}
		}
	}

	if ssn, ok := out[fieldmap.EmployeeSSN]; ok {
		out[fieldmap.EmployeeSSN] = strings.NewReplacer("-", "", " ", "").Replace(ssn)
	}
	for _, k := range []string{fieldmap.EmployeeZip, fieldmap.EmployerZip} {
		if zip, ok := out[k]; ok {
			out[k], _, _ = strings.Cut(zip, ".")
		}
	}
	return out
}
