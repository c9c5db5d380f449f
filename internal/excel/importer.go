// Package excel extracts words to import from uploaded spreadsheets and
// text files. The result is raw text for words.Store.BulkAddWords.
package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are not .xlsx, .csv or .txt
var ErrUnsupportedFormat = errors.New("unsupported file format")

// MaxFileSize caps uploads read into memory
const MaxFileSize = 5 << 20

// ImportConfig defines where words are read from
type ImportConfig struct {
	SheetName  string // Empty means the first sheet
	WordColumn string // Column with the English word
	StartRow   int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn: "A",
		StartRow:   1,
	}
}

// Extract reads words from r, choosing the format by the file name extension
func Extract(name string, r io.Reader, config ImportConfig) ([]string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("file is larger than %d bytes", MaxFileSize)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return fromExcel(data, config)
	case ".csv":
		return fromCSV(data, config)
	case ".txt", "":
		return []string{string(data)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Text joins extracted words into one newline-separated block
func Text(words []string) string {
	return strings.Join(words, "\n")
}

func fromExcel(data []byte, config ImportConfig) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	col := columnToIndex(config.WordColumn)
	var words []string
	for i, row := range rows {
		if i < config.StartRow-1 || col >= len(row) {
			continue
		}
		if word := cleanWord(row[col]); word != "" {
			words = append(words, word)
		}
	}
	return words, nil
}

func fromCSV(data []byte, config ImportConfig) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var words []string
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow || len(row) == 0 {
			continue
		}
		if word := cleanWord(row[0]); word != "" {
			words = append(words, word)
		}
	}
	return words, nil
}

// cleanWord drops trailing notes in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		word = word[:i]
	}
	return strings.TrimSpace(word)
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
