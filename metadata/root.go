package metadata

import (
	"bytes"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/dotnet-metadata/errors"
	"github.com/wippyai/dotnet-metadata/metadata/internal/binary"
)

// rootSignature is the magic at the start of the metadata root ("BSJB").
const rootSignature = 0x424A5342

// maxStreamNameLen bounds a stream header's name field, padding included.
const maxStreamNameLen = 32

// Stream names defined by the format.
const (
	streamTables            = "#~"
	streamTablesUncompacted = "#-"
	streamStrings           = "#Strings"
	streamUserStrings       = "#US"
	streamGUID              = "#GUID"
	streamBlob              = "#Blob"
)

// Root is the decoded metadata root: the version string, the table stream,
// and the four heaps. Optional heaps that the image omits are present as
// empty heaps, so lookups of offset zero still succeed.
type Root struct {
	MajorVersion uint16
	MinorVersion uint16
	Version      string
	Flags        uint16

	Tables      *TableStream
	Strings     *StringHeap
	GUIDs       *GUIDHeap
	Blobs       *BlobHeap
	UserStrings *UserStringHeap
}

type streamHeader struct {
	name   string
	offset uint32
	size   uint32
}

// DecodeRoot parses a metadata root from the raw bytes of the metadata
// section. Stream payloads alias data; the caller must not mutate it while
// the Root is in use.
func DecodeRoot(data []byte) (*Root, error) {
	c := binary.NewCursor(binary.NewRegion(data, errors.PhaseDecode))

	sig, err := c.U32()
	if err != nil {
		return nil, err
	}
	if sig != rootSignature {
		return nil, errors.NotManagedAssembly("metadata root signature mismatch")
	}
	major, err := c.U16()
	if err != nil {
		return nil, err
	}
	minor, err := c.U16()
	if err != nil {
		return nil, err
	}
	if err := c.Skip(4); err != nil { // reserved
		return nil, err
	}
	versionLen, err := c.U32()
	if err != nil {
		return nil, err
	}
	versionBytes, err := c.Bytes(int(versionLen))
	if err != nil {
		return nil, err
	}
	version := string(bytes.TrimRight(versionBytes, "\x00"))
	if !utf8.ValidString(version) {
		return nil, errors.New(errors.PhaseDecode, errors.KindNotManagedAssembly).
			Detail("metadata version string is not valid UTF-8").
			Build()
	}
	flags, err := c.U16()
	if err != nil {
		return nil, err
	}
	streamCount, err := c.U16()
	if err != nil {
		return nil, err
	}

	headers := make([]streamHeader, 0, streamCount)
	for i := 0; i < int(streamCount); i++ {
		h, err := decodeStreamHeader(c)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}

	root := &Root{
		MajorVersion: major,
		MinorVersion: minor,
		Version:      version,
		Flags:        flags,
	}

	region := binary.NewRegion(data, errors.PhaseDecode)
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		// Duplicate stream names occur in obfuscated images; the first
		// occurrence wins.
		if seen[h.name] {
			continue
		}
		seen[h.name] = true

		payload, err := region.BytesAt(int(h.offset), int(h.size))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err,
				"stream "+h.name+" extends past the metadata section")
		}

		switch h.name {
		case streamTables:
			root.Tables, err = decodeTableStream(payload)
			if err != nil {
				return nil, err
			}
		case streamTablesUncompacted:
			return nil, errors.UnsupportedVersion("uncompacted #- table stream")
		case streamStrings:
			root.Strings = NewStringHeap(payload)
		case streamUserStrings:
			root.UserStrings = NewUserStringHeap(payload)
		case streamGUID:
			root.GUIDs = NewGUIDHeap(payload)
		case streamBlob:
			root.Blobs = NewBlobHeap(payload)
		default:
			Logger().Debug("skipping unknown metadata stream", zap.String("name", h.name))
		}
	}

	if root.Tables == nil {
		return nil, errors.MissingStream(streamTables)
	}
	if root.Strings == nil {
		root.Strings = NewStringHeap(nil)
	}
	if root.GUIDs == nil {
		root.GUIDs = NewGUIDHeap(nil)
	}
	if root.Blobs == nil {
		root.Blobs = NewBlobHeap(nil)
	}
	if root.UserStrings == nil {
		root.UserStrings = NewUserStringHeap(nil)
	}

	Logger().Debug("decoded metadata root",
		zap.String("version", version),
		zap.Int("streams", len(headers)),
	)
	return root, nil
}

// decodeStreamHeader reads one header: offset, size, then a NUL-terminated
// name padded with NULs to a 4-byte boundary and capped at 32 bytes.
func decodeStreamHeader(c *binary.Cursor) (streamHeader, error) {
	offset, err := c.U32()
	if err != nil {
		return streamHeader{}, err
	}
	size, err := c.U32()
	if err != nil {
		return streamHeader{}, err
	}

	var name []byte
	for read := 0; ; {
		chunk, err := c.Bytes(4)
		if err != nil {
			return streamHeader{}, err
		}
		read += 4
		if i := bytes.IndexByte(chunk, 0); i >= 0 {
			name = append(name, chunk[:i]...)
			break
		}
		name = append(name, chunk...)
		if read >= maxStreamNameLen {
			return streamHeader{}, errors.New(errors.PhaseDecode, errors.KindMalformedHeap).
				Detail("stream name is not NUL-terminated within %d bytes", maxStreamNameLen).
				Build()
		}
	}
	return streamHeader{name: string(name), offset: offset, size: size}, nil
}
