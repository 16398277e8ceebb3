package earth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrBadFormat indicates a density table that is not a consistent 3- or
// 5-column whitespace-separated file.
var ErrBadFormat = errors.New("earth: unsupported density table format")

// LoadFile reads a layered density model from a whitespace-separated table.
// Lines starting with '#' and blank lines are skipped. Three columns are
// read as (radius km, density g/cm^3, electron fraction); five columns as
// (radius, a, b, c, electron fraction) with a quadratic density profile.
// Mixed column counts are rejected.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("earth: open density table: %w", err)
	}
	defer f.Close()

	var rows [][]float64
	columns := 0

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if columns == 0 {
			columns = len(fields)
		} else if len(fields) != columns {
			return nil, fmt.Errorf("%w: line %d has %d columns, previous lines have %d",
				ErrBadFormat, lineNo, len(fields), columns)
		}
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("earth: line %d: parse %q: %w", lineNo, field, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("earth: read density table: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyModel
	}

	switch columns {
	case 3:
		radii := column(rows, 0)
		rhos := column(rows, 1)
		yps := column(rows, 2)
		return New(radii, rhos, yps)
	case 5:
		radii := column(rows, 0)
		a := column(rows, 1)
		b := column(rows, 2)
		c := column(rows, 3)
		yps := column(rows, 4)
		return NewPoly(radii, a, b, c, yps)
	default:
		return nil, fmt.Errorf("%w: %d columns per line", ErrBadFormat, columns)
	}
}

func column(rows [][]float64, i int) []float64 {
	out := make([]float64, len(rows))
	for r, row := range rows {
		out[r] = row[i]
	}
	return out
}
