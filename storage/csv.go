// Package storage persists flattened sample rows: a CSV store using the
// {output}/{region}/{region}-{name}.csv layout with merge-on-append, and a
// SQLite store keyed by run ID.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pewresearch/search-sampler/internal/dates"
	"github.com/pewresearch/search-sampler/model"
)

var csvHeader = []string{"term", "timestamp", "sample", "value", "query_time"}

// CSVStore reads and writes sample files under a fixed output directory.
type CSVStore struct {
	outputPath string
	log        zerolog.Logger
}

// NewCSVStore creates a store rooted at outputPath.
func NewCSVStore(outputPath string) (*CSVStore, error) {
	if outputPath == "" {
		return nil, &model.ConfigError{Field: "output_path", Reason: "an output path is required"}
	}
	return &CSVStore{outputPath: outputPath, log: zerolog.Nop()}, nil
}

// WithLogger sets the store's logger.
func (s *CSVStore) WithLogger(log zerolog.Logger) *CSVStore {
	s.log = log
	return s
}

// FilePath returns where rows for a region and name are saved:
// {output}/{region}/{region}-{name}.csv.
func (s *CSVStore) FilePath(region model.Region, name string) string {
	label := region.Label()
	return filepath.Join(s.outputPath, label, fmt.Sprintf("%s-%s.csv", label, name))
}

// Save writes rows to the file for (region, name). When appendPrev is set
// and a previous file exists, its rows are loaded and the new rows are
// appended after them; otherwise any existing file is overwritten.
func (s *CSVStore) Save(region model.Region, name string, rows []model.SampleRow, appendPrev bool) error {
	path := s.FilePath(region, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if appendPrev {
		prev, err := s.Load(region, name)
		switch {
		case err == nil:
			rows = append(prev, rows...)
		case os.IsNotExist(err):
			s.log.Info().Str("path", path).Msg("no previous data found, saving to new file")
		default:
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Term,
			dates.FormatISO(row.Timestamp),
			strconv.Itoa(row.Sample),
			strconv.FormatFloat(row.Value, 'f', -1, 64),
			row.QueryTime.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}

	s.log.Info().Str("path", path).Int("rows", len(rows)).Msg("saved local file")
	return nil
}

// Load reads the saved rows for (region, name). Returns an error
// satisfying os.IsNotExist when no file has been saved yet.
func (s *CSVStore) Load(region model.Region, name string) ([]model.SampleRow, error) {
	path := s.FilePath(region, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]model.SampleRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string) (model.SampleRow, error) {
	if len(record) != len(csvHeader) {
		return model.SampleRow{}, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(record))
	}
	timestamp, err := dates.ParseISO(record[1])
	if err != nil {
		return model.SampleRow{}, err
	}
	sample, err := strconv.Atoi(record[2])
	if err != nil {
		return model.SampleRow{}, fmt.Errorf("invalid sample index %q: %w", record[2], err)
	}
	value, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return model.SampleRow{}, fmt.Errorf("invalid value %q: %w", record[3], err)
	}
	queryTime, err := time.Parse(time.RFC3339, record[4])
	if err != nil {
		return model.SampleRow{}, fmt.Errorf("invalid query time %q: %w", record[4], err)
	}
	return model.SampleRow{
		Term:      record[0],
		Timestamp: timestamp,
		Sample:    sample,
		Value:     value,
		QueryTime: queryTime,
	}, nil
}
