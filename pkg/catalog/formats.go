package catalog

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the on-disk catalog formats.
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatTSV                 // tab-separated text
	FormatSnapshot            // msgpack snapshot
	FormatBolt                // bbolt database
)

// FormatInfo contains metadata about a catalog file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatTSV: {
		Format:      FormatTSV,
		Description: "Tab-separated region list",
		Extensions:  []string{".tsv", ".txt"},
		MinSize:     1,
	},
	FormatSnapshot: {
		Format:      FormatSnapshot,
		Description: "msgpack region snapshot",
		Extensions:  []string{".msgpack", ".snap"},
		MinSize:     2,
	},
	FormatBolt: {
		Format:      FormatBolt,
		Description: "bbolt region store",
		Extensions:  []string{".db", ".bolt"},
		MinSize:     20,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// bbolt meta pages carry this magic right after the 16-byte page header.
const boltMagic = 0xED0CDAED

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expected FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expected]
	if !exists {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, expected)
	}
	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, e := range formatInfo.Extensions {
		if ext == e {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	head, err := readHead(filename, 20)
	if err != nil {
		return err
	}
	switch expected {
	case FormatSnapshot:
		// Snapshots are encoded as a msgpack map.
		if b := head[0]; !(b >= 0x80 && b <= 0x8f) && b != 0xde && b != 0xdf {
			return fmt.Errorf("file %s does not start with a msgpack map", filename)
		}
	case FormatBolt:
		if len(head) < 20 || binary.LittleEndian.Uint32(head[16:20]) != boltMagic {
			return fmt.Errorf("file %s is not a bbolt database", filename)
		}
	}
	log.Debugf("Catalog file %s validated as %s", filename, formatInfo.Description)
	return nil
}

func readHead(filename string, n int) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	return buf[:read], nil
}

// DetectFileFormat picks the format of filename from its extension and
// validates the content against it.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e != ext {
				continue
			}
			if err := ValidateFileFormat(filename, format); err != nil {
				return FormatUnknown, err
			}
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
