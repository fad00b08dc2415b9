package motordata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// expectedHeader is the exact column order spec section 6 requires.
var expectedHeader = []string{"pwm", "rpm", "current", "voltage", "power", "force", "efficiency"}

// Load parses a motor-data CSV (spec section 6: UTF-8, header row
// `pwm,rpm,current,voltage,power,force,efficiency`) and builds a Table
// sorted ascending by force. This is the one fallible boundary in the
// package (spec section 7): a malformed or empty CSV is a fatal,
// surfaced error; every lookup past this point clamps silently instead of
// erroring.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("motordata: read header: %w", err)
	}
	if len(header) != len(expectedHeader) {
		return nil, fmt.Errorf("motordata: expected %d columns, got %d", len(expectedHeader), len(header))
	}
	for i, col := range header {
		if col != expectedHeader[i] {
			return nil, fmt.Errorf("motordata: expected column %q at position %d, got %q", expectedHeader[i], i, col)
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("motordata: read row: %w", err)
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("motordata: parse row %v: %w", row, err)
		}
		records = append(records, record)
	}

	return NewTable(records)
}

func parseRow(row []string) (Record, error) {
	fields := make([]float64, len(row))
	for i, cell := range row {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Record{}, err
		}
		fields[i] = v
	}
	return Record{
		PWM:        fields[0],
		RPM:        fields[1],
		Current:    fields[2],
		Voltage:    fields[3],
		Power:      fields[4],
		Force:      fields[5],
		Efficiency: fields[6],
	}, nil
}
