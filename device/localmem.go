package device

import (
	"sync"

	"github.com/sarchlab/lmdma/lm"
	"github.com/sarchlab/lmdma/memory"
	"github.com/sarchlab/lmdma/regs"
)

// LocalMemory models one local memory and its base register. The size code
// is fixed; the enable bit and the base can be written. The memory answers
// at its base address once enabled.
type LocalMemory struct {
	*memory.Region

	mu       sync.Mutex
	sizeCode uint32
	enabled  bool
}

// newLocalMemory creates a disabled local memory. Reserved size codes get no
// storage.
func newLocalMemory(sizeCode uint32) *LocalMemory {
	return &LocalMemory{
		Region:   memory.NewRegion(0, uint64(lm.SizeOfCode(sizeCode))),
		sizeCode: sizeCode,
	}
}

// Enabled tells if the memory has been enabled.
func (m *LocalMemory) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.enabled
}

// Read returns length bytes at a bus address.
func (m *LocalMemory) Read(address, length uint64) ([]byte, error) {
	if err := m.check(); err != nil {
		return nil, err
	}

	return m.Region.Read(address, length)
}

// Write stores data at a bus address.
func (m *LocalMemory) Write(address uint64, data []byte) error {
	if err := m.check(); err != nil {
		return err
	}

	return m.Region.Write(address, data)
}

func (m *LocalMemory) check() error {
	if !m.Enabled() {
		return memory.ErrOutOfRange
	}

	return nil
}

type baseRegister struct {
	m *LocalMemory
}

func (r baseRegister) Read() uint32 {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	v := regs.LMBSize.Bits(r.m.sizeCode) | uint32(r.m.Base)
	if r.m.enabled {
		v |= regs.LMBEnable.Mask()
	}

	return v
}

func (r baseRegister) Write(value uint32, _ bool) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	r.m.enabled = regs.LMBEnable.IsSet(value)
	r.m.Base = uint64(value & regs.LMBBase.Mask())
}
