package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHawkExtinction BookmarkType = "hawk_extinction"
	BookmarkDoveExtinction BookmarkType = "dove_extinction"
	BookmarkTotalCollapse  BookmarkType = "total_collapse"
	BookmarkConvergence    BookmarkType = "convergence"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in a run.
// Each bookmark type fires at most once per run.
type BookmarkDetector struct {
	tolerance float64

	// Rolling hawk share history (circular buffer)
	history     []float64
	historyIdx  int
	historyFull bool

	fired map[BookmarkType]bool
}

// NewBookmarkDetector creates a detector that reports convergence once the hawk
// share has stayed within tolerance of its window mean for window generations.
func NewBookmarkDetector(window int, tolerance float64) *BookmarkDetector {
	if window < 2 {
		window = 2
	}
	return &BookmarkDetector{
		tolerance: tolerance,
		history:   make([]float64, window),
		fired:     make(map[BookmarkType]bool),
	}
}

// Check analyzes the latest stats and returns any newly triggered bookmarks.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil && !bd.fired[b.Type] {
			bd.fired[b.Type] = true
			bookmarks = append(bookmarks, *b)
		}
	}

	switch {
	case stats.HawkCount == 0 && stats.DoveCount == 0:
		add(&Bookmark{
			Type:        BookmarkTotalCollapse,
			Generation:  stats.Generation,
			Description: "no individual survived",
		})
	case stats.HawkCount == 0:
		add(&Bookmark{
			Type:        BookmarkHawkExtinction,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("hawks extinct, %d doves remain", stats.DoveCount),
		})
	case stats.DoveCount == 0:
		add(&Bookmark{
			Type:        BookmarkDoveExtinction,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("doves extinct, %d hawks remain", stats.HawkCount),
		})
	}

	bd.addToHistory(stats.HawkShare)
	add(bd.checkConvergence(stats))

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(share float64) {
	bd.history[bd.historyIdx] = share
	bd.historyIdx = (bd.historyIdx + 1) % len(bd.history)
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) checkConvergence(stats GenerationStats) *Bookmark {
	if !bd.historyFull || stats.HawkCount+stats.DoveCount == 0 {
		return nil
	}

	var sum float64
	for _, v := range bd.history {
		sum += v
	}
	mean := sum / float64(len(bd.history))

	for _, v := range bd.history {
		if math.Abs(v-mean) > bd.tolerance {
			return nil
		}
	}

	return &Bookmark{
		Type:        BookmarkConvergence,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("hawk share settled at %.3f over %d generations", mean, len(bd.history)),
	}
}

// Converged reports whether a convergence bookmark has fired.
func (bd *BookmarkDetector) Converged() bool {
	return bd.fired[BookmarkConvergence]
}
