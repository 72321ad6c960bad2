package database

// BlockAt exposes the stored block so tests can tamper with a sealed block
// in place.
func (c *Chain) BlockAt(i int) *Block {
	return &c.blocks[i]
}
