package parsers

import (
	"fmt"
	"strconv"
	"strings"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	"github.com/google/uuid"
)

// Scoreboard columns. Only player_id is required; missing stat columns read
// as zero.
const (
	colPlayerID  = "player_id"
	colKills     = "kills"
	colDeaths    = "deaths"
	colAssists   = "assists"
	colLeftEarly = "left_early"
	colCS        = "cs"
	colGold      = "gold"
	colDamage    = "damage"
	colVision    = "vision"
)

var headerAliases = map[string]string{
	"player":       colPlayerID,
	"playerid":     colPlayerID,
	"id":           colPlayerID,
	"k":            colKills,
	"d":            colDeaths,
	"a":            colAssists,
	"leftearly":    colLeftEarly,
	"left":         colLeftEarly,
	"creep_score":  colCS,
	"creepscore":   colCS,
	"vision_score": colVision,
	"visionscore":  colVision,
}

// normalizeHeader lower-cases a header cell and maps known aliases onto the
// canonical column name.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	if canonical, ok := headerAliases[h]; ok {
		return canonical
	}
	if canonical, ok := headerAliases[strings.ReplaceAll(h, "_", "")]; ok {
		return canonical
	}
	return h
}

// parseRecords reads a header row followed by one row per player.
func parseRecords(rows [][]string) ([]ratingdomain.PerformanceRecord, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("scoreboard is empty")
	}

	columns := make(map[string]int)
	for i, cell := range rows[headerIdx] {
		name := normalizeHeader(cell)
		if name == "" {
			continue
		}
		if _, dup := columns[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		columns[name] = i
	}
	if _, ok := columns[colPlayerID]; !ok {
		return nil, fmt.Errorf("missing %q column", colPlayerID)
	}

	var records []ratingdomain.PerformanceRecord
	seen := make(map[uuid.UUID]int)
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		line := i + 1

		rec, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if prev, dup := seen[rec.PlayerID]; dup {
			return nil, fmt.Errorf("row %d: player %s already listed on row %d", line, rec.PlayerID, prev)
		}
		seen[rec.PlayerID] = line
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("scoreboard has no player rows")
	}
	return records, nil
}

func parseRow(row []string, columns map[string]int) (ratingdomain.PerformanceRecord, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	id, err := uuid.Parse(cell(colPlayerID))
	if err != nil {
		return ratingdomain.PerformanceRecord{}, fmt.Errorf("invalid player id %q: %w", cell(colPlayerID), err)
	}

	var stats ratingdomain.PerformanceStats
	fields := []struct {
		name string
		dst  *int
	}{
		{colKills, &stats.Kills},
		{colDeaths, &stats.Deaths},
		{colAssists, &stats.Assists},
		{colCS, &stats.CreepScore},
		{colGold, &stats.Gold},
		{colDamage, &stats.Damage},
		{colVision, &stats.VisionScore},
	}
	for _, f := range fields {
		v, err := parseStat(cell(f.name))
		if err != nil {
			return ratingdomain.PerformanceRecord{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	if err := stats.Validate(); err != nil {
		return ratingdomain.PerformanceRecord{}, err
	}

	leftEarly, err := parseFlag(cell(colLeftEarly))
	if err != nil {
		return ratingdomain.PerformanceRecord{}, fmt.Errorf("%s: %w", colLeftEarly, err)
	}

	return ratingdomain.PerformanceRecord{PlayerID: id, Stats: stats, LeftEarly: leftEarly}, nil
}

// parseStat reads a non-negative integer; blank and "-" mean zero. Spreadsheet
// exports sometimes render integers as "12.0".
func parseStat(s string) (int, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("non-numeric value %q", s)
	}
	return int(f), nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "n", "no", "false", "-":
		return false, nil
	case "1", "y", "yes", "true", "x":
		return true, nil
	default:
		return false, fmt.Errorf("unrecognized flag %q", s)
	}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
