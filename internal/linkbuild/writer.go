// Package linkbuild implements components E-H: the ride, wait, transfer,
// and walk link builders that join the node table into the link table
// (spec.md §4.E-H), streaming output in bounded chunks the way
// link_generator.py's create_*_links_to_file functions do, and the way
// internal/graph/builder.go in the teacher batches pgx.Batch inserts.
package linkbuild

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// flushEvery bounds how many rows accumulate in the bufio.Writer between
// flushes, mirroring the reference implementation's 10,000-50,000 row
// chunk sizes (spec.md §4.E-H) while relying on Go's own buffered writer
// instead of materializing a slice of pending rows.
const flushEvery = 20000

// Writer assigns link ids sequentially across all four builders and
// appends rows to a single CSV file.
type Writer struct {
	file       *os.File
	buf        *bufio.Writer
	csv        *csv.Writer
	nextID     int64
	sinceFlush int
	counts     map[model.Mode]int64
}

// New creates (or truncates) path, writes the link table header, and
// starts id assignment at startID (spec.md §6's link_id column).
func New(path string, startID int64) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("linkbuild: creating %s: %w", path, err)
	}
	buf := bufio.NewWriterSize(f, 1<<20)
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"link_id", "from_node", "to_node", "duration", "mode"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("linkbuild: writing header: %w", err)
	}
	return &Writer{
		file:   f,
		buf:    buf,
		csv:    w,
		nextID: startID,
		counts: make(map[model.Mode]int64),
	}, nil
}

// Append assigns the next link id to the link (from, to, duration, mode)
// and appends it.
func (w *Writer) Append(from, to int64, duration int64, mode model.Mode) error {
	id := w.nextID
	row := []string{
		strconv.FormatInt(id, 10),
		strconv.FormatInt(from, 10),
		strconv.FormatInt(to, 10),
		strconv.FormatInt(duration, 10),
		mode.String(),
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("linkbuild: writing row: %w", err)
	}
	w.nextID++
	w.counts[mode]++
	w.sinceFlush++
	if w.sinceFlush >= flushEvery {
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return fmt.Errorf("linkbuild: flushing chunk: %w", err)
		}
		w.sinceFlush = 0
	}
	return nil
}

// NextID returns the id the next Append call will assign.
func (w *Writer) NextID() int64 { return w.nextID }

// Counts returns the number of links written so far, by mode.
func (w *Writer) Counts() map[model.Mode]int64 { return w.counts }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("linkbuild: flushing: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("linkbuild: flushing buffer: %w", err)
	}
	return w.file.Close()
}
