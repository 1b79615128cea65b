// Package nodewriter assigns global monotonic node ids in emission order
// and writes the node table CSV (spec.md §4.D), the write-side mirror of
// internal/gtfs's CSV readers in the teacher repo.
package nodewriter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// Header is the fixed column order committed in spec.md §6.
var Header = []string{
	"NodeId", "RouteId", "RouteNo", "RouteVarId", "TripId", "StopId",
	"Timestamp", "Event", "Time", "StopName", "Attributes",
}

// Writer assigns ids and streams rows to a CSV file.
type Writer struct {
	file    *os.File
	buf     *bufio.Writer
	csv     *csv.Writer
	nextID  int64
	written int64
}

// Open creates (or truncates) path and writes the header row.
func Open(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("nodewriter: creating %s: %w", path, err)
	}
	buf := bufio.NewWriterSize(f, 1<<20)
	w := csv.NewWriter(buf)
	if err := w.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("nodewriter: writing header: %w", err)
	}
	return &Writer{file: f, buf: buf, csv: w, nextID: 1}, nil
}

// Write assigns the next node id to n and appends it to the file. It
// returns the assigned id.
func (w *Writer) Write(n model.Node) (int64, error) {
	n.NodeID = w.nextID
	row := []string{
		itoa(n.NodeID),
		itoa(int64(n.RouteID)),
		n.RouteNo,
		itoa(int64(n.VariantID)),
		itoa(int64(n.TripID)),
		itoa(int64(n.StopID)),
		itoa(n.Timestamp),
		n.Event.String(),
		n.TimeStr(),
		n.StopName,
		n.Attributes(),
	}
	if err := w.csv.Write(row); err != nil {
		return 0, fmt.Errorf("nodewriter: writing row: %w", err)
	}
	w.nextID++
	w.written++
	return n.NodeID, nil
}

// Count returns the number of nodes written so far.
func (w *Writer) Count() int64 { return w.written }

// NextID returns the id that will be assigned to the next Write call,
// i.e. one past the last assigned id — the starting point the link
// builders' own id sequences never need, since links have an
// independent counter (spec.md §4.H).
func (w *Writer) NextID() int64 { return w.nextID }

// Close flushes buffered rows and closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("nodewriter: flushing: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("nodewriter: flushing buffer: %w", err)
	}
	return w.file.Close()
}

func itoa(n int64) string {
	return fmt.Sprintf("%d", n)
}
