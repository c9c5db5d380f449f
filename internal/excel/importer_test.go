package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, cells map[string]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for cell, value := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, value))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtract_Excel(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"A1": "dog",
		"B1": "собака",
		"A2": "go (went, gone)",
		"A4": "  apple ",
		"C5": "ignored",
	})

	words, err := Extract("words.xlsx", bytes.NewReader(data), DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "go", "apple"}, words)
}

func TestExtract_ExcelStartRow(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"A1": "English",
		"A2": "cat",
	})
	config := DefaultImportConfig()
	config.StartRow = 2

	words, err := Extract("words.XLSX", bytes.NewReader(data), config)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, words)
}

func TestExtract_CSV(t *testing.T) {
	csv := "dog,собака\n\"red apple\",яблоко\n,empty\nrun (ran)\n"

	words, err := Extract("list.csv", strings.NewReader(csv), DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "red apple", "run"}, words)
}

func TestExtract_Text(t *testing.T) {
	words, err := Extract("notes.txt", strings.NewReader("dog, cat\nbird"), DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, "dog, cat\nbird", Text(words))
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract("photo.png", strings.NewReader("x"), DefaultImportConfig())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_TooLarge(t *testing.T) {
	big := strings.Repeat("a", MaxFileSize+1)
	_, err := Extract("big.txt", strings.NewReader(big), DefaultImportConfig())
	assert.Error(t, err)
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 1, columnToIndex("b"))
	assert.Equal(t, 26, columnToIndex("AA"))
}
