package cmd

import (
	"bytes"
	"fmt"

	"github.com/sarchlab/lmdma/device"
	"github.com/sarchlab/lmdma/lm"
	"github.com/sarchlab/lmdma/lmdma"
	"github.com/sarchlab/lmdma/sim"
)

const (
	ilmBase uint32 = 0x00200000
	dlmBase uint32 = 0x00100000
	ddrBase uint32 = 0x80000000
)

// A Result is the outcome of one transfer of a scenario.
type Result struct {
	Channel   uint8
	Mode      lmdma.TriggerMode
	Direction lmdma.Direction
	Status    lmdma.Status
	Matched   bool
	Duration  sim.VTimeInSec
}

// A scenario runs a transfer for every channel, trigger mode and direction
// and checks the data that arrives.
type scenario struct {
	engine   *sim.SerialEngine
	soc      *device.SoC
	lm       *lm.Driver
	dma      *lmdma.Engine
	elements uint32

	statuses []lmdma.Status
	tracker  transferTracker
}

// A transferTracker counts transfers as they are started and completed.
type transferTracker interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

func newScenario(c Config) (*scenario, error) {
	if c.FreqMHz <= 0 {
		return nil, fmt.Errorf("frequency must be positive, got %g MHz",
			c.FreqMHz)
	}

	engine := sim.NewSerialEngine()
	soc := device.MakeBuilder().
		WithEngine(engine).
		WithFreq(sim.Freq(c.FreqMHz) * sim.MHz).
		WithBytesPerCycle(c.BytesPerCycle).
		WithVersion(c.Version).
		WithNumChannels(c.Channels).
		Build("SoC")

	s := &scenario{
		engine:   engine,
		soc:      soc,
		lm:       lm.New(soc.Regs),
		elements: c.Elements,
	}

	s.dma = lmdma.MakeBuilder().
		WithRegisterPort(soc.Regs).
		WithInterruptController(soc.IC).
		Build("LMDMA")

	if err := s.lm.Initialize(lm.ILM, ilmBase); err != nil {
		return nil, err
	}

	if err := s.lm.Initialize(lm.DLM, dlmBase); err != nil {
		return nil, err
	}

	need := uint64(c.Elements) * uint64(lmdma.Word.Bytes())
	if c.Elements == 0 || need > uint64(s.lm.Size(lm.DLM)) {
		return nil, fmt.Errorf("%d words do not fit the %d-byte DLM",
			c.Elements, s.lm.Size(lm.DLM))
	}

	if err := s.dma.Initialize(s.collect); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *scenario) collect(status lmdma.Status) {
	s.statuses = append(s.statuses, status)

	if s.tracker != nil {
		s.tracker.MoveInProgressToFinished(1)
	}
}

func (s *scenario) numTransfers() (int, error) {
	channels, err := s.dma.ChannelCount()
	if err != nil {
		return 0, err
	}

	return channels * len(lmdma.TriggerModes()) * 2, nil
}

// runAll runs every transfer. The tracker, if not nil, sees each transfer
// start and complete.
func (s *scenario) runAll(tracker transferTracker) ([]Result, error) {
	s.tracker = tracker


	channels, err := s.dma.ChannelCount()
	if err != nil {
		return nil, err
	}

	var results []Result

	for ch := 0; ch < channels; ch++ {
		for _, mode := range lmdma.TriggerModes() {
			for _, dir := range []lmdma.Direction{lmdma.DDRToLM, lmdma.LMToDDR} {
				r, err := s.runOne(uint8(ch), mode, dir)
				if err != nil {
					return results, err
				}

				results = append(results, r)
			}
		}
	}

	return results, nil
}

func (s *scenario) runOne(
	ch uint8,
	mode lmdma.TriggerMode,
	dir lmdma.Direction,
) (Result, error) {
	n := uint64(s.elements) * uint64(lmdma.Word.Bytes())
	data := pattern(int(n), byte(ch)<<6|byte(mode)<<4|byte(dir))

	req := lmdma.TransferRequest{
		Channel:    ch,
		Size:       s.elements,
		Trigger:    mode,
		SubCommand: lmdma.NoCondition,
		Setup: lmdma.Setup{
			Memory:        lmdma.DLM,
			Direction:     dir,
			ElementSize:   lmdma.Word,
			Stride:        1,
			CompletionIRQ: true,
			ErrorIRQ:      true,
		},
	}

	src, dst := s.soc.DDR.Write, s.soc.DLM.Read
	req.SrcAddr, req.DstAddr = ddrBase, dlmBase
	if dir == lmdma.LMToDDR {
		src, dst = s.soc.DLM.Write, s.soc.DDR.Read
		req.SrcAddr, req.DstAddr = dlmBase, ddrBase
	}

	if err := src(uint64(req.SrcAddr), data); err != nil {
		return Result{}, err
	}

	s.statuses = nil
	start := s.engine.CurrentTime()

	if err := s.dma.Configure(req); err != nil {
		return Result{}, err
	}

	if s.tracker != nil {
		s.tracker.IncrementInProgress(1)
	}

	if err := s.engine.Run(); err != nil {
		return Result{}, err
	}

	if len(s.statuses) != 1 {
		return Result{}, fmt.Errorf(
			"channel %d %s %s: expected one completion, got %d",
			ch, mode, dir, len(s.statuses))
	}

	arrived, err := dst(uint64(req.DstAddr), n)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Channel:   ch,
		Mode:      mode,
		Direction: dir,
		Status:    s.statuses[0],
		Matched:   bytes.Equal(arrived, data),
		Duration:  s.engine.CurrentTime() - start,
	}, nil
}

func pattern(n int, seed byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = seed ^ byte(i*7)
	}

	return data
}
