package catalog

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/bastiangx/addrserve/internal/utils"
	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is written into every snapshot. Older versions are rejected.
const SnapshotVersion = 1

// Snapshot is the msgpack form of a whole catalog.
type Snapshot struct {
	Version int          `msgpack:"v"`
	Records []wireRecord `msgpack:"r"`
}

// wireRecord stores the type by name so ranks can be renumbered later.
type wireRecord struct {
	ID       int64    `msgpack:"id"`
	ParentID int64    `msgpack:"pid"`
	Type     string   `msgpack:"t"`
	Name     string   `msgpack:"n"`
	Alias    []string `msgpack:"a,omitempty"`
}

func toWire(rec region.Record) wireRecord {
	return wireRecord{
		ID:       rec.ID,
		ParentID: rec.ParentID,
		Type:     rec.Type.String(),
		Name:     rec.Name,
		Alias:    rec.Alias,
	}
}

func (w wireRecord) record() (region.Record, error) {
	typ, err := region.ParseType(w.Type)
	if err != nil {
		return region.Record{}, fmt.Errorf("region %d: %w", w.ID, err)
	}
	return region.Record{
		ID:       w.ID,
		ParentID: w.ParentID,
		Type:     typ,
		Name:     w.Name,
		Alias:    w.Alias,
	}, nil
}

// SnapshotSource loads a snapshot written by WriteSnapshot.
type SnapshotSource struct {
	Path string
}

func (s *SnapshotSource) Load(ctx context.Context) ([]region.Record, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", s.Path, err)
	}
	defer file.Close()

	var snap Snapshot
	if err := msgpack.NewDecoder(bufio.NewReader(file)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.Path, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s has version %d, want %d", s.Path, snap.Version, SnapshotVersion)
	}

	records := make([]region.Record, 0, len(snap.Records))
	for _, w := range snap.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := w.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteSnapshot encodes records into path, replacing it atomically.
func WriteSnapshot(path string, records []region.Record) error {
	snap := Snapshot{Version: SnapshotVersion, Records: make([]wireRecord, 0, len(records))}
	for _, rec := range records {
		snap.Records = append(snap.Records, toWire(rec))
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return utils.WriteFileAtomic(path, data)
}
