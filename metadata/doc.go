// Package metadata provides parsing for the physical metadata of .NET
// assemblies as defined by ECMA-335 partition II.
//
// This package decodes the metadata root, the `#~` table stream, and the
// four heaps (#Strings, #US, #GUID, #Blob). Table rows are exposed as
// lazy views: decoding a stream validates headers and computes row
// layouts, but individual column values are read only when an accessor
// is called.
//
// # Decoding
//
// Decode a metadata root from the raw metadata section bytes:
//
//	root, err := metadata.DecodeRoot(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The Root gives access to the table stream and the heaps:
//
//	row, err := root.Tables.Row(metadata.TableTypeDef, 1)
//	nameOff, _ := row.StringOffset(1)
//	name, _ := root.Strings.String(nameOff)
//
// # Row Layouts
//
// Column widths in the table stream are not fixed: heap offset columns
// are 2 or 4 bytes depending on the header's heap-size flags, and table
// index columns are 2 or 4 bytes depending on the row count of the
// referenced table (for coded indexes, the maximum row count across all
// candidate tables, shifted by the tag width). Layouts are computed once
// per stream after all row counts are read.
//
// # Coded Indexes
//
// A coded index packs a table tag into the low bits of a row id. Decode
// and encode through CodedIndexKind:
//
//	ref, err := metadata.TypeDefOrRef.Decode(raw)
//	raw, err := metadata.TypeDefOrRef.Encode(ref)
//
// A stored value of zero is the null reference for every kind.
//
// # Heaps
//
// Heap accessors take the offsets stored in table columns. Offset zero
// is the empty string, the nil GUID, or a nil blob. Blob and user string
// payloads alias the input buffer; callers must not mutate it.
package metadata
