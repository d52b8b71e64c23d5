// Package archive packages bulk form output as a ZIP file.
package archive

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/csg33k/aca1095c-generator/internal/formfill"
)

// ErrorName is the archive entry that records a failed employee.
func ErrorName(employeeID int64) string {
	return fmt.Sprintf("ERROR_%d.txt", employeeID)
}

// BundleName is the download name of a year's bulk archive.
func BundleName(year int) string {
	return fmt.Sprintf("1095C_ALL_%d.zip", year)
}

// WriteZip writes one PDF entry per document followed by one text entry per
// failure, each in report order.
func WriteZip(w io.Writer, report *formfill.BatchReport) error {
	zw := zip.NewWriter(w)
	for _, d := range report.Documents {
		if err := writeEntry(zw, d.Filename, d.PDF); err != nil {
			return err
		}
	}
	for _, f := range report.Failures {
		if err := writeEntry(zw, ErrorName(f.EmployeeID), []byte(f.Err.Error())); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
