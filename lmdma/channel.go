package lmdma

// channelInfo is what the driver remembers about a channel between
// configuration and the progress queries.
type channelInfo struct {
	expected   uint32
	configured bool
}

func (c *channelInfo) record(size uint32) {
	c.expected = size
	c.configured = true
}

// progress is the number of elements moved so far given the live count. It
// is negative if the live count exceeds what was configured.
func (c *channelInfo) progress(live uint32) int64 {
	return int64(c.expected) - int64(live)
}
