package excel

// ExcelConfig holds configuration for a file-backed incident source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	Sheet    string `json:"sheet"` // xlsx only; empty means the first sheet
}

// DefaultExcelConfig returns sensible defaults for file processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{FilePath: "gtd_insight_ready.csv"}
}

// NewReader builds a DataReader from the config
func (c ExcelConfig) NewReader() *DataReader {
	return NewDataReader(c.FilePath).WithSheet(c.Sheet)
}
