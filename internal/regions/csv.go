package regions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column names of the published region table.
const (
	columnID     = "regionID"
	columnName   = "regionName"
	columnParent = "parentID"
)

// ReadCSV reads a region table with regionID, regionName and parentID
// columns, in any order. Blank parent cells mark roots.
func ReadCSV(r io.Reader) ([]Node, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range []string{columnID, columnName, columnParent} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var nodes []Node
	var errs []error
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, err := ParseID(record[cols[columnID]])
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		var parent ID
		if p := strings.TrimSpace(record[cols[columnParent]]); p != "" {
			if parent, err = ParseID(p); err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", line, err))
				continue
			}
		}
		nodes = append(nodes, Node{
			ID:     id,
			Name:   strings.TrimSpace(record[cols[columnName]]),
			Parent: parent,
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nodes, nil
}

// LoadCSV reads the region table at path and indexes it.
func LoadCSV(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open region table %s: %w", path, err)
	}
	defer f.Close()

	nodes, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("region table %s: %w", path, err)
	}
	return NewIndex(nodes)
}
