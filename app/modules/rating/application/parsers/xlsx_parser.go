package parsers

import (
	"bytes"
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXParser parses the first sheet of an Excel scoreboard.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Parse(data []byte) ([]ratingdomain.PerformanceRecord, error) {
	return parseXLSXCore(data)
}

func parseXLSXCore(data []byte) ([]ratingdomain.PerformanceRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	sheetName := sheets[0]
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	return parseRecords(rows)
}
