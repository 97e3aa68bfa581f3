// Package binary provides bounds-checked little-endian reads over byte
// regions. Region offers random access by absolute offset; Cursor layers
// sequential reads with position tracking on top. Both are views: they
// never copy or mutate the backing buffer.
package binary
