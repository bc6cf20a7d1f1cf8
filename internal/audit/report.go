package audit

import (
	"encoding/csv"
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	csvHeaderPath             = "path"
	csvHeaderStatus           = "status"
	csvHeaderDescription      = "description"
	csvHeaderAuthor           = "author"
	csvHeaderAuthorSource     = "author_source"
	csvHeaderOrigin           = "origin"
	csvHeaderBug              = "bug"
	csvHeaderForwarded        = "forwarded"
	csvHeaderLastUpdate       = "last_update"
	csvHeaderLastUpdateSource = "last_update_source"
	csvHeaderError            = "error"
	yamlIndentationConstant   = 2
	unsupportedFormatTemplate = "unsupported report format: %s"
)

// ReportWriter serializes audit rows to an output stream.
type ReportWriter interface {
	WriteReport(output io.Writer, rows []ReportRow) error
}

type patchReport struct {
	Patches []ReportRow `yaml:"patches" toml:"patches"`
}

// NewReportWriter returns the writer for the requested format.
func NewReportWriter(format ReportFormat) (ReportWriter, error) {
	switch format {
	case ReportFormatCSV:
		return csvReportWriter{}, nil
	case ReportFormatYAML:
		return yamlReportWriter{}, nil
	case ReportFormatTOML:
		return tomlReportWriter{}, nil
	default:
		return nil, fmt.Errorf(unsupportedFormatTemplate, format)
	}
}

type csvReportWriter struct{}

func (csvReportWriter) WriteReport(output io.Writer, rows []ReportRow) error {
	csvWriter := csv.NewWriter(output)
	header := []string{
		csvHeaderPath,
		csvHeaderStatus,
		csvHeaderDescription,
		csvHeaderAuthor,
		csvHeaderAuthorSource,
		csvHeaderOrigin,
		csvHeaderBug,
		csvHeaderForwarded,
		csvHeaderLastUpdate,
		csvHeaderLastUpdateSource,
		csvHeaderError,
	}
	if writeError := csvWriter.Write(header); writeError != nil {
		return writeError
	}
	for _, row := range rows {
		if writeError := csvWriter.Write(row.CSVRecord()); writeError != nil {
			return writeError
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

type yamlReportWriter struct{}

func (yamlReportWriter) WriteReport(output io.Writer, rows []ReportRow) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(yamlIndentationConstant)
	if encodeError := encoder.Encode(patchReport{Patches: nonNilRows(rows)}); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

type tomlReportWriter struct{}

func (tomlReportWriter) WriteReport(output io.Writer, rows []ReportRow) error {
	return toml.NewEncoder(output).Encode(patchReport{Patches: nonNilRows(rows)})
}

func nonNilRows(rows []ReportRow) []ReportRow {
	if rows == nil {
		return []ReportRow{}
	}
	return rows
}
