package breeds

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ReadLabels loads a class vocabulary. Plain text files hold one label per
// line; .csv files carry class_index and class_name columns and are ordered
// by index.
func ReadLabels(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(path)
	}
	return ReadLines(path)
}

func ReadLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(b), "\n")
	var labels []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels, nil
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no class rows", path)
	}

	idxCol, nameCol := -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case "class_index":
			idxCol = i
		case "class_name":
			nameCol = i
		}
	}
	if idxCol < 0 || nameCol < 0 {
		return nil, errors.New("class mapping needs class_index and class_name columns")
	}

	type row struct {
		idx  int
		name string
	}
	rows := make([]row, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) <= max(idxCol, nameCol) {
			return nil, fmt.Errorf("%s line %d: short row", path, n+2)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(rec[idxCol]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad class_index: %w", path, n+2, err)
		}
		rows = append(rows, row{idx: idx, name: strings.TrimSpace(rec[nameCol])})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].idx < rows[j].idx })

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.name
	}
	return labels, nil
}
