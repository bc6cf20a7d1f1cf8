package audit

// ReportFormat enumerates supported report encodings.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatYAML ReportFormat = "yaml"
	ReportFormatTOML ReportFormat = "toml"
)

// PatchStatus classifies a patch in the report.
type PatchStatus string

// Patch status values.
const (
	PatchStatusValid      PatchStatus = "valid"
	PatchStatusInvalid    PatchStatus = "invalid"
	PatchStatusUnreadable PatchStatus = "unreadable"
)

// FieldSource records where a reported value came from.
type FieldSource string

// Field source values.
const (
	FieldSourceNone    FieldSource = ""
	FieldSourceHeader  FieldSource = "header"
	FieldSourceHistory FieldSource = "history"
)

// CommandOptions captures the resolved parameters for one audit run.
type CommandOptions struct {
	Roots           []string
	Patterns        []string
	Excludes        []string
	Format          ReportFormat
	Concurrency     int
	HistoryFallback bool
	OnlyInvalid     bool
	FailOnInvalid   bool
}

// ReportRow models a single audited patch.
type ReportRow struct {
	Path             string      `yaml:"path" toml:"path"`
	Status           PatchStatus `yaml:"status" toml:"status"`
	Description      string      `yaml:"description,omitempty" toml:"description,omitempty"`
	Author           string      `yaml:"author,omitempty" toml:"author,omitempty"`
	AuthorSource     FieldSource `yaml:"author_source,omitempty" toml:"author_source,omitempty"`
	Origin           string      `yaml:"origin,omitempty" toml:"origin,omitempty"`
	Bug              string      `yaml:"bug,omitempty" toml:"bug,omitempty"`
	Forwarded        string      `yaml:"forwarded,omitempty" toml:"forwarded,omitempty"`
	LastUpdate       string      `yaml:"last_update,omitempty" toml:"last_update,omitempty"`
	LastUpdateSource FieldSource `yaml:"last_update_source,omitempty" toml:"last_update_source,omitempty"`
	Error            string      `yaml:"error,omitempty" toml:"error,omitempty"`
}

// CSVRecord renders the row in CSV column order.
func (row ReportRow) CSVRecord() []string {
	return []string{
		row.Path,
		string(row.Status),
		row.Description,
		row.Author,
		string(row.AuthorSource),
		row.Origin,
		row.Bug,
		row.Forwarded,
		row.LastUpdate,
		string(row.LastUpdateSource),
		row.Error,
	}
}

// Summary tallies report rows by status.
type Summary struct {
	Total      int
	Valid      int
	Invalid    int
	Unreadable int
}

// Compliant reports whether every audited patch is valid.
func (summary Summary) Compliant() bool {
	return summary.Invalid == 0 && summary.Unreadable == 0
}

func summarize(rows []ReportRow) Summary {
	summary := Summary{Total: len(rows)}
	for _, row := range rows {
		switch row.Status {
		case PatchStatusValid:
			summary.Valid++
		case PatchStatusInvalid:
			summary.Invalid++
		case PatchStatusUnreadable:
			summary.Unreadable++
		}
	}
	return summary
}
