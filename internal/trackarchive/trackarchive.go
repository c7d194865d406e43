// Package trackarchive indexes the read-only tree of pre-rendered track
// visualizations. All metadata is derived from file names, nothing is
// persisted: the layout is <root>/<mmsi>/<mmsi>_<year>_<month>_<seq>.html.
package trackarchive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidegrid/fishtrack-go/internal/errors"
)

// Entry is one archived track visualization, derived from its file name.
type Entry struct {
	MMSI     string `json:"mmsi"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Sequence int    `json:"sequence"`
	Filename string `json:"filename"`
}

// Indexer serves structured listings over the archive tree.
type Indexer struct {
	root string
}

// NewIndexer returns an indexer rooted at root. The tree is re-scanned on
// every query, there is no cache.
func NewIndexer(root string) *Indexer {
	return &Indexer{root: root}
}

// checkSegment rejects a path segment that would resolve outside the
// archive root when joined. Both the vessel id and the file name arrive
// from the request path and must stay inside the tree.
func checkSegment(kind, value string) error {
	if value == "" || value != filepath.Base(value) || strings.Contains(value, "..") {
		return errors.Newf("invalid archive %s %q", kind, value).
			Component("trackarchive").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// parseEntry derives an Entry from a file name, or reports that the name
// does not follow the archive convention.
func parseEntry(mmsi, filename string) (Entry, bool) {
	base, ok := strings.CutSuffix(filename, ".html")
	if !ok {
		return Entry{}, false
	}

	prefix, ok := strings.CutPrefix(base, mmsi+"_")
	if !ok {
		return Entry{}, false
	}

	segments := strings.Split(prefix, "_")
	if len(segments) != 3 {
		return Entry{}, false
	}

	numbers := make([]int, 3)
	for i, segment := range segments {
		n, err := strconv.Atoi(segment)
		if err != nil {
			return Entry{}, false
		}
		numbers[i] = n
	}

	return Entry{
		MMSI:     mmsi,
		Year:     numbers[0],
		Month:    numbers[1],
		Sequence: numbers[2],
		Filename: filename,
	}, true
}

// scan lists every parseable entry for one vessel. File names that do not
// follow the convention are silently excluded. A missing vessel directory
// is an empty archive, not an error.
func (ix *Indexer) scan(mmsi string) ([]Entry, error) {
	if err := checkSegment("vessel id", mmsi); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(filepath.Join(ix.root, mmsi))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("trackarchive").
			Category(errors.CategoryFileIO).
			Context("mmsi", mmsi).
			Build()
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if entry, ok := parseEntry(mmsi, de.Name()); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// List returns every archived track for a vessel, sorted by year
// descending then month ascending.
func (ix *Indexer) List(mmsi string) ([]Entry, error) {
	entries, err := ix.scan(mmsi)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Year != entries[j].Year {
			return entries[i].Year > entries[j].Year
		}
		if entries[i].Month != entries[j].Month {
			return entries[i].Month < entries[j].Month
		}
		return entries[i].Sequence < entries[j].Sequence
	})

	return entries, nil
}

// Years returns the distinct archive years for a vessel, sorted descending.
func (ix *Indexer) Years(mmsi string) ([]int, error) {
	entries, err := ix.scan(mmsi)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var years []int
	for _, entry := range entries {
		if !seen[entry.Year] {
			seen[entry.Year] = true
			years = append(years, entry.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	return years, nil
}

// Months returns a vessel's archive entries for one year, sorted by month
// ascending.
func (ix *Indexer) Months(mmsi string, year int) ([]Entry, error) {
	entries, err := ix.scan(mmsi)
	if err != nil {
		return nil, err
	}

	var months []Entry
	for _, entry := range entries {
		if entry.Year == year {
			months = append(months, entry)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Month != months[j].Month {
			return months[i].Month < months[j].Month
		}
		return months[i].Sequence < months[j].Sequence
	})

	return months, nil
}

// Content returns the raw archive document for a vessel by exact file
// name. The path is confined to the vessel's directory under the archive
// root; a missing file is a not-found error.
func (ix *Indexer) Content(mmsi, filename string) ([]byte, error) {
	if err := checkSegment("vessel id", mmsi); err != nil {
		return nil, err
	}
	if err := checkSegment("file name", filename); err != nil {
		return nil, err
	}

	path := filepath.Join(ix.root, mmsi, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(fmt.Errorf("archive file %s not found", filename)).
				Component("trackarchive").
				Category(errors.CategoryNotFound).
				Context("mmsi", mmsi).
				Build()
		}
		return nil, errors.New(err).
			Component("trackarchive").
			Category(errors.CategoryFileIO).
			Context("mmsi", mmsi).
			Build()
	}

	return data, nil
}
