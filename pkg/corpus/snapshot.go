package corpus

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotMagic prefixes every snapshot file.
const snapshotMagic = "WSPL"

// snapshotVersion is bumped whenever the snapshot layout changes.
const snapshotVersion = 1

type snapshot struct {
	Version  int                `msgpack:"v"`
	Total    float64            `msgpack:"n"`
	Unigrams map[string]float64 `msgpack:"u"`
	Bigrams  map[string]float64 `msgpack:"b"`
}

// WriteSnapshot encodes the model as a binary snapshot.
func WriteSnapshot(w io.Writer, m *Model) error {
	unigrams, bigrams := m.tables()

	if _, err := io.WriteString(w, snapshotMagic); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	enc := msgpack.NewEncoder(w)
	err := enc.Encode(&snapshot{
		Version:  snapshotVersion,
		Total:    TotalTokens,
		Unigrams: unigrams,
		Bigrams:  bigrams,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Model, error) {
	header := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if !bytes.Equal(header, []byte(snapshotMagic)) {
		return nil, fmt.Errorf("bad snapshot header %q", header)
	}

	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if snap.Total != TotalTokens {
		return nil, fmt.Errorf("snapshot total %v does not match %v", snap.Total, TotalTokens)
	}

	return NewModel(snap.Unigrams, snap.Bigrams)
}

// WriteSnapshotFile writes the model snapshot to path.
func WriteSnapshotFile(path string, m *Model) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	if err := WriteSnapshot(w, m); err != nil {
		file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush snapshot %s: %w", path, err)
	}
	return file.Close()
}

// ReadSnapshotFile loads a model snapshot from path.
func ReadSnapshotFile(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer file.Close()

	model, err := ReadSnapshot(bufio.NewReader(file))
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return model, nil
}
