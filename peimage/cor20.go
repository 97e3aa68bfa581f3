package peimage

import (
	"encoding/binary"

	"github.com/wippyai/dotnet-metadata/errors"
)

// cor20Size is the fixed size of the CLR runtime header.
const cor20Size = 72

// Runtime flags of the CLR header.
const (
	COMImageFlagsILOnly           = 0x00000001
	COMImageFlags32BitRequired    = 0x00000002
	COMImageFlagsStrongNameSigned = 0x00000008
	COMImageFlagsNativeEntryPoint = 0x00000010
	COMImageFlags32BitPreferred   = 0x00020000
)

// Cor20Header is the CLR runtime header (IMAGE_COR20_HEADER). It locates
// the metadata root within the image and carries the managed entry point.
type Cor20Header struct {
	Size                uint32
	MajorRuntimeVersion uint16
	MinorRuntimeVersion uint16
	MetadataRVA         uint32
	MetadataSize        uint32
	Flags               uint32
	EntryPointToken     uint32
	ResourcesRVA        uint32
	ResourcesSize       uint32
	StrongNameRVA       uint32
	StrongNameSize      uint32
	VTableFixupsRVA     uint32
	VTableFixupsSize    uint32
}

// DecodeCor20 parses a CLR runtime header from raw bytes.
func DecodeCor20(b []byte) (Cor20Header, error) {
	if len(b) < cor20Size {
		return Cor20Header{}, errors.NotManagedAssembly("CLR runtime header is truncated")
	}
	le := binary.LittleEndian
	h := Cor20Header{
		Size:                le.Uint32(b[0:]),
		MajorRuntimeVersion: le.Uint16(b[4:]),
		MinorRuntimeVersion: le.Uint16(b[6:]),
		MetadataRVA:         le.Uint32(b[8:]),
		MetadataSize:        le.Uint32(b[12:]),
		Flags:               le.Uint32(b[16:]),
		EntryPointToken:     le.Uint32(b[20:]),
		ResourcesRVA:        le.Uint32(b[24:]),
		ResourcesSize:       le.Uint32(b[28:]),
		StrongNameRVA:       le.Uint32(b[32:]),
		StrongNameSize:      le.Uint32(b[36:]),
		VTableFixupsRVA:     le.Uint32(b[48:]),
		VTableFixupsSize:    le.Uint32(b[52:]),
	}
	if h.Size < cor20Size {
		return Cor20Header{}, errors.NotManagedAssembly("CLR runtime header declares an invalid size")
	}
	if h.MetadataRVA == 0 || h.MetadataSize == 0 {
		return Cor20Header{}, errors.NotManagedAssembly("CLR runtime header has no metadata directory")
	}
	return h, nil
}

// EncodeCor20 writes the header back to its wire form.
func EncodeCor20(h Cor20Header) []byte {
	b := make([]byte, cor20Size)
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Size)
	le.PutUint16(b[4:], h.MajorRuntimeVersion)
	le.PutUint16(b[6:], h.MinorRuntimeVersion)
	le.PutUint32(b[8:], h.MetadataRVA)
	le.PutUint32(b[12:], h.MetadataSize)
	le.PutUint32(b[16:], h.Flags)
	le.PutUint32(b[20:], h.EntryPointToken)
	le.PutUint32(b[24:], h.ResourcesRVA)
	le.PutUint32(b[28:], h.ResourcesSize)
	le.PutUint32(b[32:], h.StrongNameRVA)
	le.PutUint32(b[36:], h.StrongNameSize)
	le.PutUint32(b[48:], h.VTableFixupsRVA)
	le.PutUint32(b[52:], h.VTableFixupsSize)
	return b
}
