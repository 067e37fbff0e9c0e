package memory

import "fmt"

// A Memory can be read and written by address.
type Memory interface {
	Read(address, length uint64) ([]byte, error)
	Write(address uint64, data []byte) error
}

// A Region places a Storage at a base address of a bus.
type Region struct {
	Base    uint64
	Storage *Storage
}

// NewRegion creates a region of the given size at base.
func NewRegion(base, size uint64) *Region {
	return &Region{
		Base:    base,
		Storage: NewStorage(size),
	}
}

// Contains tells if the whole access lies in the region.
func (r *Region) Contains(address, length uint64) bool {
	return address >= r.Base &&
		address-r.Base+length <= r.Storage.Capacity()
}

func (r *Region) translate(address, length uint64) (uint64, error) {
	if !r.Contains(address, length) {
		return 0, fmt.Errorf("%w: 0x%x+%d outside [0x%x, 0x%x)",
			ErrOutOfRange, address, length,
			r.Base, r.Base+r.Storage.Capacity())
	}

	return address - r.Base, nil
}

// Read returns length bytes at a bus address.
func (r *Region) Read(address, length uint64) ([]byte, error) {
	offset, err := r.translate(address, length)
	if err != nil {
		return nil, err
	}

	return r.Storage.Read(offset, length)
}

// Write stores data at a bus address.
func (r *Region) Write(address uint64, data []byte) error {
	offset, err := r.translate(address, uint64(len(data)))
	if err != nil {
		return err
	}

	return r.Storage.Write(offset, data)
}
