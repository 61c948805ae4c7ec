package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
)

// Parser turns an uploaded scoreboard into per-player performance records.
type Parser interface {
	Parse(data []byte) ([]ratingdomain.PerformanceRecord, error)
}

// ParserFactory defines the interface for creating parsers
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
}
