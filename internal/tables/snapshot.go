package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	SnapshotKey     = "tableflow-tables"
	SnapshotVersion = "v1"
)

type snapshot struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Tables    []Table   `json:"tables"`
}

func encodeSnapshot(tables []Table, at time.Time) (string, error) {
	b, err := json.Marshal(snapshot{Version: SnapshotVersion, Timestamp: at, Tables: tables})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeSnapshot parses a stored snapshot. Records written before versioning
// were a bare array of tables and are still accepted.
func decodeSnapshot(raw string) ([]Table, error) {
	b := bytes.TrimSpace([]byte(raw))
	if len(b) == 0 {
		return nil, nil
	}
	if b[0] == '[' {
		var tables []Table
		if err := json.Unmarshal(b, &tables); err != nil {
			return nil, err
		}
		return tables, nil
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Version != "" && s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: version %q", ErrUnsupportedFormat, s.Version)
	}
	return s.Tables, nil
}
