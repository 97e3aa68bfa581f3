package peimage

import (
	"bytes"
	"debug/pe"

	"github.com/wippyai/dotnet-metadata/errors"
)

// clrDirectoryIndex is the data directory slot of the CLR runtime header
// (IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR).
const clrDirectoryIndex = 14

// Image maps relative virtual addresses to file bytes and locates the CLR
// runtime header. Implementations return slices aliasing their backing
// buffer; callers must not mutate them.
type Image interface {
	// ResolveRVA returns size bytes at the given relative virtual
	// address, or an out_of_bounds error when the range maps outside
	// the image.
	ResolveRVA(rva, size uint32) ([]byte, error)

	// CLRDirectory returns the location of the CLR runtime header, or a
	// not_managed_assembly error when the image has none.
	CLRDirectory() (rva, size uint32, err error)
}

// File is a PE-backed Image.
type File struct {
	data     []byte
	sections []*pe.Section
	clrRVA   uint32
	clrSize  uint32
}

// Open parses a PE image from memory. The returned File keeps data and
// serves ResolveRVA from it without copying.
func Open(data []byte) (*File, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotManagedAssembly, err,
			"input is not a PE image")
	}
	defer f.Close()

	var dirs []pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dirs = oh.DataDirectory[:]
	case *pe.OptionalHeader64:
		dirs = oh.DataDirectory[:]
	default:
		return nil, errors.NotManagedAssembly("PE image has no optional header")
	}

	img := &File{data: data, sections: f.Sections}
	if clrDirectoryIndex < len(dirs) {
		img.clrRVA = dirs[clrDirectoryIndex].VirtualAddress
		img.clrSize = dirs[clrDirectoryIndex].Size
	}
	return img, nil
}

// CLRDirectory implements Image.
func (f *File) CLRDirectory() (uint32, uint32, error) {
	if f.clrRVA == 0 || f.clrSize == 0 {
		return 0, 0, errors.NotManagedAssembly("PE image has no CLR data directory")
	}
	return f.clrRVA, f.clrSize, nil
}

// ResolveRVA implements Image. The range must lie within one section's raw
// data; ranges reaching into the zero-filled tail of a section (virtual
// size beyond raw size) are treated as out of bounds.
func (f *File) ResolveRVA(rva, size uint32) ([]byte, error) {
	for _, s := range f.sections {
		span := s.VirtualSize
		if span == 0 {
			// Some linkers leave VirtualSize zero; fall back to the
			// raw size.
			span = s.Size
		}
		if rva < s.VirtualAddress || rva-s.VirtualAddress >= span {
			continue
		}
		delta := rva - s.VirtualAddress
		if uint64(delta)+uint64(size) > uint64(s.Size) {
			return nil, errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
				Detail("rva 0x%x+%d extends past raw data of section %s", rva, size, s.Name).
				Build()
		}
		start := uint64(s.Offset) + uint64(delta)
		if start+uint64(size) > uint64(len(f.data)) {
			return nil, errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
				Detail("section %s raw data extends past end of file", s.Name).
				Build()
		}
		return f.data[start : start+uint64(size) : start+uint64(size)], nil
	}
	return nil, errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
		Detail("rva 0x%x is not mapped by any section", rva).
		Build()
}

// Flat is an Image backed by one contiguous byte range starting at Base.
// It exists for callers that already extracted a mapped region, and for
// tests.
type Flat struct {
	Base uint32
	Data []byte

	// CLRRva and CLRSize locate the runtime header within Data, when
	// present.
	CLRRva  uint32
	CLRSize uint32
}

// ResolveRVA implements Image.
func (f *Flat) ResolveRVA(rva, size uint32) ([]byte, error) {
	if rva < f.Base || uint64(rva-f.Base)+uint64(size) > uint64(len(f.Data)) {
		return nil, errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
			Detail("rva 0x%x+%d outside flat range", rva, size).
			Build()
	}
	off := rva - f.Base
	return f.Data[off : off+size : off+size], nil
}

// CLRDirectory implements Image.
func (f *Flat) CLRDirectory() (uint32, uint32, error) {
	if f.CLRRva == 0 || f.CLRSize == 0 {
		return 0, 0, errors.NotManagedAssembly("flat image has no CLR data directory")
	}
	return f.CLRRva, f.CLRSize, nil
}
