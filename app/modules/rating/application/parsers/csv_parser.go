package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
)

// zipMagic prefixes every XLSX file; uploads named .csv sometimes are one.
var zipMagic = []byte("PK\x03\x04")

// CSVParser parses CSV scoreboard files
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse parses CSV data into performance records, falling back to the XLSX
// reader for spreadsheets saved under a .csv name.
func (p *CSVParser) Parse(data []byte) ([]ratingdomain.PerformanceRecord, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return parseXLSXCore(data)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}

	return parseRecords(rows)
}
