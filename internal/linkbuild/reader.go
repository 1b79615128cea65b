package linkbuild

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// ReadAll loads a link table CSV back into memory, used only by the
// optional Postgres mirror path so the streaming builders themselves
// never have to hold every link at once.
func ReadAll(path string) ([]model.Link, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("linkbuild: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("linkbuild: reading header: %w", err)
	}

	var links []model.Link
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if len(rec) < 5 {
			continue
		}
		id, err1 := strconv.ParseInt(rec[0], 10, 64)
		from, err2 := strconv.ParseInt(rec[1], 10, 64)
		to, err3 := strconv.ParseInt(rec[2], 10, 64)
		duration, err4 := strconv.ParseInt(rec[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		links = append(links, model.Link{
			LinkID:   id,
			FromNode: from,
			ToNode:   to,
			Duration: duration,
			Mode:     parseMode(rec[4]),
		})
	}
	return links, nil
}

func parseMode(s string) model.Mode {
	switch s {
	case "wait":
		return model.ModeWait
	case "transfer":
		return model.ModeTransfer
	case "walk":
		return model.ModeWalk
	default:
		return model.ModeBus
	}
}
