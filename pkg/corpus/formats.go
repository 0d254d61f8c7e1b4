package corpus

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the corpus resource formats
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatText                // Tab-separated "<key>\t<count>" lines
	FormatSnapshot            // msgpack-encoded model snapshot
)

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// FormatInfo contains metadata about a corpus file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Tab-separated counts",
		Extensions:  []string{".txt", ".tsv"},
		MinSize:     0, // An empty bigram table is valid
	},
	FormatSnapshot: {
		Format:      FormatSnapshot,
		Description: "Binary corpus snapshot",
		Extensions:  []string{".bin"},
		MinSize:     int64(len(snapshotMagic)),
	},
}

// ValidateFormat checks if a file matches the expected format
func ValidateFormat(filename string, expected FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[expected]
	if !exists {
		return fmt.Errorf("unknown format: %v", expected)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	switch expected {
	case FormatSnapshot:
		return validateSnapshotFormat(filename)
	case FormatText:
		return validateTextFormat(filename)
	}
	return nil
}

// validateSnapshotFormat checks the snapshot magic header
func validateSnapshotFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	header := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(file, header); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if !bytes.Equal(header, []byte(snapshotMagic)) {
		return fmt.Errorf("file %s is not a corpus snapshot", filename)
	}

	log.Debugf("Snapshot file %s validated", filename)
	return nil
}

// validateTextFormat checks that the first line of a text file holds a tab
func validateTextFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}
	if strings.TrimSpace(line) != "" && !strings.Contains(line, "\t") {
		return fmt.Errorf("text file %s is not tab-separated", filename)
	}

	log.Debugf("Text file %s validated", filename)
	return nil
}

// DetectFormat attempts to detect the format of a file from its extension
// and contents
func DetectFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".bin":
		if err := ValidateFormat(filename, FormatSnapshot); err != nil {
			return FormatUnknown, err
		}
		return FormatSnapshot, nil
	case ".txt", ".tsv":
		if err := ValidateFormat(filename, FormatText); err != nil {
			return FormatUnknown, err
		}
		return FormatText, nil
	}

	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}
