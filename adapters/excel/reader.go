package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gtdash/domain/core"
	"gtdash/domain/incident"

	"github.com/xuri/excelize/v2"
)

// DataReader reads incident tables from CSV or Excel files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a reader; the file type is chosen from the extension
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// WithSheet selects a worksheet by name. By default the first sheet is read.
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// Describe implements ports.IncidentSourcePort
func (r *DataReader) Describe() string {
	return r.filePath
}

// ReadTable reads the whole file into a raw table
func (r *DataReader) ReadTable(ctx context.Context) (*incident.RawTable, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, core.NewParseError(r.filePath, err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, core.NewParseError(r.filePath, fmt.Errorf("unsupported file type: %s", r.fileType))
	}
}

// readExcelData reads the configured (or first) sheet
func (r *DataReader) readExcelData() (*incident.RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, core.NewParseError(r.filePath, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.NewParseError(r.filePath, fmt.Errorf("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.NewParseError(r.filePath, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data
func (r *DataReader) readCSVData() (*incident.RawTable, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.NewParseError(r.filePath, err)
	}
	defer file.Close()

	return r.readCSV(file)
}

func (r *DataReader) readCSV(in io.Reader) (*incident.RawTable, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewParseError(r.filePath, fmt.Errorf("failed to read CSV file: %w", err))
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows splits the header row from the data rows
func (r *DataReader) processRows(rows [][]string) (*incident.RawTable, error) {
	if len(rows) == 0 {
		return nil, core.NewParseError(r.filePath, fmt.Errorf("file has no header row"))
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		header = strings.TrimSpace(header)
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		headers[i] = header
	}

	table := &incident.RawTable{
		Source:  r.filePath,
		Headers: headers,
		Rows:    rows[1:],
	}

	if missing := table.MissingColumns(incident.RequiredColumns); len(missing) > 0 {
		return nil, core.NewMissingColumnsError(r.filePath, missing)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(table.Rows))

	return table, nil
}
