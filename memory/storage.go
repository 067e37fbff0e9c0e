// Package memory provides the byte storage behind the simulated local
// memories and DDR.
package memory

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfRange is returned when an access falls outside a storage or a
// region.
var ErrOutOfRange = errors.New("memory: access out of range")

// A Storage keeps the data of a memory.
//
// The storage manages its data in units, similar to pages. Units not touched
// by Write are not allocated and read as zero.
type Storage struct {
	sync.Mutex

	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the number of bytes the storage holds.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) checkRange(address, length uint64) error {
	if address+length > s.capacity || address+length < address {
		return fmt.Errorf("%w: [0x%x, 0x%x) in a storage of 0x%x bytes",
			ErrOutOfRange, address, address+length, s.capacity)
	}

	return nil
}

func (s *Storage) unit(address uint64, create bool) []byte {
	baseAddr, _ := s.parseAddress(address)

	unit, ok := s.data[baseAddr]
	if !ok && create {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns length bytes starting at address.
func (s *Storage) Read(address, length uint64) ([]byte, error) {
	if err := s.checkRange(address, length); err != nil {
		return nil, err
	}

	s.Lock()
	defer s.Unlock()

	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToRead := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		if unit := s.unit(currAddr, false); unit != nil {
			copy(res[dataOffset:dataOffset+lenToRead],
				unit[inUnitAddr:inUnitAddr+lenToRead])
		}

		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if err := s.checkRange(address, length); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToWrite := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		unit := s.unit(currAddr, true)
		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])

		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}

// AllocatedUnits returns how many units have been touched by writes.
func (s *Storage) AllocatedUnits() int {
	s.Lock()
	defer s.Unlock()

	return len(s.data)
}
