package forcing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadCSV parses two numeric columns, time then insolation. A leading header
// row and lines starting with '#' are skipped; extra columns are ignored.
func ReadCSV(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var s Series
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("forcing: %w", err)
		}
		line++
		if len(record) < 2 {
			return Series{}, fmt.Errorf("forcing: line %d: need 2 columns, got %d", line, len(record))
		}

		t, errT := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		v, errV := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if errT != nil || errV != nil {
			if line == 1 {
				continue
			}
			return Series{}, fmt.Errorf("forcing: line %d: invalid number", line)
		}
		s.Times = append(s.Times, t)
		s.Values = append(s.Values, v)
	}

	if err := s.Validate(); err != nil {
		return Series{}, err
	}
	return s, nil
}

func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes s with a time,insolation header.
func WriteCSV(w io.Writer, s Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "insolation"}); err != nil {
		return err
	}
	for i := range s.Times {
		row := []string{
			strconv.FormatFloat(s.Times[i], 'g', -1, 64),
			strconv.FormatFloat(s.Values[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
