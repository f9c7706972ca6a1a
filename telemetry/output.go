package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/systems"
)

// HistoryRow is one population snapshot in plotting-friendly form.
type HistoryRow struct {
	Generation int     `csv:"generation"`
	Hawks      int     `csv:"hawk"`
	Doves      int     `csv:"dove"`
	HawkShare  float64 `csv:"%hawk"`
	DoveShare  float64 `csv:"%dove"`
}

// HistoryRows converts population snapshots to rows; generations start at 1.
func HistoryRows(history []systems.Snapshot) []HistoryRow {
	rows := make([]HistoryRow, len(history))
	h, d := components.StrategyHawk, components.StrategyDove
	for i, s := range history {
		rows[i] = HistoryRow{
			Generation: i + 1,
			Hawks:      s.Counts[h],
			Doves:      s.Counts[d],
			HawkShare:  s.Proportions[h],
			DoveShare:  s.Proportions[d],
		}
	}
	return rows
}

// csvStream appends records to a CSV file, writing the header once.
type csvStream struct {
	file          *os.File
	headerWritten bool
}

func (s *csvStream) write(records any) error {
	if !s.headerWritten {
		if err := gocsv.Marshal(records, s.file); err != nil {
			return err
		}
		s.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, s.file)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir         string
	generations *csvStream
	perf        *csvStream
	bookmarks   *csvStream
	lifetimes   *csvStream
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled); all methods accept a nil receiver.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, f := range []struct {
		name   string
		stream **csvStream
	}{
		{"generations.csv", &om.generations},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"lifetimes.csv", &om.lifetimes},
	} {
		file, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.stream = &csvStream{file: file}
	}

	return om, nil
}

// WriteConfig saves the run configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends a generation record to generations.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	if err := om.generations.write([]GenerationStats{stats}); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// WritePerf appends a timing record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(generation)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark appends a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteLifetimes appends completed lifetimes to lifetimes.csv.
func (om *OutputManager) WriteLifetimes(stats []LifetimeStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	if err := om.lifetimes.write(stats); err != nil {
		return fmt.Errorf("writing lifetimes: %w", err)
	}
	return nil
}

// WriteHistory writes the full population history to history.csv.
func (om *OutputManager) WriteHistory(history []systems.Snapshot) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "history.csv"))
	if err != nil {
		return fmt.Errorf("creating history.csv: %w", err)
	}
	defer f.Close()

	return WriteHistoryCSV(f, history)
}

// WriteHistoryCSV writes history rows with a header to w.
func WriteHistoryCSV(w io.Writer, history []systems.Snapshot) error {
	rows := HistoryRows(history)
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, s := range []*csvStream{om.generations, om.perf, om.bookmarks, om.lifetimes} {
		if s == nil || s.file == nil {
			continue
		}
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
