package binary

// Cursor is a sequential reader over a Region with position tracking,
// used by the header decoders. Random-access row reads go through Region
// directly.
type Cursor struct {
	region Region
	pos    int
}

// NewCursor creates a Cursor positioned at the start of the region.
func NewCursor(region Region) *Cursor {
	return &Cursor{region: region}
}

// Pos returns the current byte position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return c.region.Len() - c.pos
}

// U8 reads one byte and advances.
func (c *Cursor) U8() (uint8, error) {
	v, err := c.region.U8At(c.pos)
	if err != nil {
		return 0, err
	}
	c.pos++
	return v, nil
}

// U16 reads a little-endian uint16 and advances.
func (c *Cursor) U16() (uint16, error) {
	v, err := c.region.U16At(c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 2
	return v, nil
}

// U32 reads a little-endian uint32 and advances.
func (c *Cursor) U32() (uint32, error) {
	v, err := c.region.U32At(c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 4
	return v, nil
}

// U64 reads a little-endian uint64 and advances.
func (c *Cursor) U64() (uint64, error) {
	v, err := c.region.U64At(c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 8
	return v, nil
}

// Bytes reads n bytes and advances. The slice aliases the backing buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.region.BytesAt(c.pos, n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	if _, err := c.region.BytesAt(c.pos, n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// Tail returns the unread remainder as a Region.
func (c *Cursor) Tail() (Region, error) {
	return c.region.Tail(c.pos)
}
