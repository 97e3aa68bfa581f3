// Package peimage locates CLI metadata inside PE images.
//
// The Image interface abstracts relative virtual address resolution so
// higher layers never touch PE structure directly. File implements it
// over debug/pe for on-disk images; Flat implements it over a single
// contiguous byte range for pre-extracted regions and tests.
//
// The package also decodes the CLR runtime header (IMAGE_COR20_HEADER),
// which points at the metadata root and carries the managed entry point
// token.
package peimage
