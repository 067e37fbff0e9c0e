package device

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/lmdma/intc"
	"github.com/sarchlab/lmdma/lmdma"
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
	"github.com/sarchlab/lmdma/tracing"
	"go.uber.org/mock/gomock"
)

const (
	dlmBase uint32 = 0x00100000
	ddrBase uint32 = 0x80000000
)

type probe struct {
	read func()
}

func (p *probe) Handle(sim.Event) error {
	p.read()
	return nil
}

func words(n int, seed byte) []byte {
	data := make([]byte, n*4)
	for i := range data {
		data[i] = seed + byte(i)
	}

	return data
}

var _ = Describe("DMA", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		irq      *MockInterruptSink
		soc      *SoC
		file     *regs.File
	)

	transfer := func(
		ch uint8,
		mode lmdma.TriggerMode,
		dir lmdma.Direction,
		lmAddr, ddrAddr, count uint32,
	) lmdma.TransferRequest {
		req := lmdma.TransferRequest{
			Channel:    ch,
			Size:       count,
			Trigger:    mode,
			SubCommand: lmdma.Enqueue,
			Setup: lmdma.Setup{
				Memory:        lmdma.DLM,
				Direction:     dir,
				ElementSize:   lmdma.Word,
				CompletionIRQ: true,
				ErrorIRQ:      true,
			},
		}

		if dir == lmdma.LMToDDR {
			req.SrcAddr, req.DstAddr = lmAddr, ddrAddr
		} else {
			req.SrcAddr, req.DstAddr = ddrAddr, lmAddr
		}

		return req
	}

	start := func(req lmdma.TransferRequest) {
		p, err := lmdma.Encode(req)
		Expect(err).NotTo(HaveOccurred())
		p.Apply(file)
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		irq = NewMockInterruptSink(mockCtrl)
		soc = MakeBuilder().
			WithEngine(engine).
			WithInterruptSink(irq).
			Build("SoC")
		file = soc.Regs

		file.Write(regs.DLMB, dlmBase|regs.LMBEnable.Mask())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("configuration registers", func() {
		It("should report the engine and the memories", func() {
			Expect(regs.MSCCfgLMDMA.IsSet(file.Read(regs.MSCCfg))).To(BeTrue())

			dmaCfg := file.Read(regs.DMACfg)
			Expect(regs.DMACfgNumChannels.Get(dmaCfg)).To(Equal(uint32(1)))
			Expect(regs.DMACfgVersion.Get(dmaCfg)).To(Equal(uint32(1)))

			dlmb := file.Read(regs.DLMB)
			Expect(regs.LMBSize.Get(dlmb)).To(Equal(uint32(4)))
			Expect(regs.LMBEnable.IsSet(dlmb)).To(BeTrue())
			Expect(dlmb & regs.LMBBase.Mask()).To(Equal(dlmBase))

			Expect(regs.LMBEnable.IsSet(file.Read(regs.ILMB))).To(BeFalse())
		})

		It("should keep the size code when the base is written", func() {
			file.Write(regs.ILMB, 0x00300000|regs.LMBSize.Bits(9)|1)

			ilmb := file.Read(regs.ILMB)
			Expect(regs.LMBSize.Get(ilmb)).To(Equal(uint32(4)))
			Expect(soc.ILM.Base).To(Equal(uint64(0x00300000)))
		})
	})

	It("should move data from DDR to the local memory", func() {
		data := words(16, 1)
		Expect(soc.DDR.Write(uint64(ddrBase), data)).To(Succeed())
		irq.EXPECT().Raise(intc.LineLDMA)

		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase+0x40, ddrBase, 16))

		gcsw := file.Read(regs.DMAGCSW)
		Expect(regs.GCSWEnable.IsSet(gcsw)).To(BeTrue())
		Expect(regs.GCSWC0Status.Get(gcsw)).To(Equal(regs.ChanActive))
		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanActive))

		Expect(engine.Run()).To(Succeed())

		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanComplete))
		Expect(file.Read(regs.DMATCnt)).To(Equal(uint32(0)))
		Expect(engine.CurrentTime()).To(BeNumerically("~", 160e-9, 1e-12))

		moved, err := soc.DLM.Read(uint64(dlmBase+0x40), 64)
		Expect(err).NotTo(HaveOccurred())
		Expect(moved).To(Equal(data))
	})

	DescribeTable("starting on the trigger register of each mode",
		func(mode lmdma.TriggerMode) {
			data := words(8, 0x20)
			Expect(soc.DLM.Write(uint64(dlmBase), data)).To(Succeed())
			irq.EXPECT().Raise(intc.LineLDMA)

			req := transfer(1, mode, lmdma.LMToDDR, dlmBase, ddrBase+0x100, 8)
			p, err := lmdma.Encode(req)
			Expect(err).NotTo(HaveOccurred())

			p[:len(p)-1].Apply(file)
			Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanIdle))

			p[len(p)-1:].Apply(file)
			Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanActive))
			Expect(regs.GCSWHeadChan.Get(file.Read(regs.DMAGCSW))).
				To(Equal(uint32(1)))

			Expect(engine.Run()).To(Succeed())

			moved, err := soc.DDR.Read(uint64(ddrBase+0x100), 32)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved).To(Equal(data))
		},
		Entry("action command", lmdma.ActionCommand),
		Entry("count", lmdma.FastStartOnCount),
		Entry("internal address", lmdma.FastStartOnInternalAddr),
		Entry("external address", lmdma.FastStartOnExternalAddr),
	)

	It("should refill the live count from the refill count", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		file.Write(regs.DMAGCSW, regs.GCSWEnable.Mask())
		file.Write(regs.DMAChnSel, 0)
		file.Write(regs.DMASetup, regs.SetupLM.Bits(1)|
			regs.SetupElemSize.Bits(2)|regs.SetupCIE.Mask())
		file.Write(regs.DMARCnt, 4)
		file.Write(regs.DMAISAddr, dlmBase)
		file.Write(regs.DMAESAddr, ddrBase)

		file.Write(regs.DMAAct, regs.ActStart)

		Expect(file.Read(regs.DMATCnt)).To(Equal(uint32(4)))
		Expect(engine.Run()).To(Succeed())
	})

	It("should report the remaining count while moving", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 16))

		var live uint32
		engine.Schedule(sim.NewEventBase(80e-9, &probe{read: func() {
			live = file.Read(regs.DMATCnt)
		}}))
		Expect(engine.Run()).To(Succeed())

		Expect(live).To(Equal(uint32(8)))
	})

	It("should fail a transfer outside DDR", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		start(transfer(0, lmdma.FastStartOnExternalAddr, lmdma.DDRToLM,
			dlmBase, 0x10000000, 4))

		Expect(engine.Run()).To(Succeed())

		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanError))
		Expect(regs.GCSWC0Status.Get(file.Read(regs.DMAGCSW))).
			To(Equal(regs.ChanError))
	})

	It("should not interrupt on error unless asked", func() {
		req := transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, 0x10000000, 4)
		req.Setup.ErrorIRQ = false
		start(req)

		Expect(engine.Run()).To(Succeed())

		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanError))
	})

	It("should fail an unaligned transfer", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase+2, ddrBase, 4))

		Expect(engine.Run()).To(Succeed())

		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanError))
	})

	It("should fail a transfer into a disabled memory", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		req := transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 4)
		req.Setup.Memory = lmdma.ILM
		start(req)

		Expect(engine.Run()).To(Succeed())

		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanError))
	})

	It("should follow the external stride", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		Expect(soc.DDR.Write(uint64(ddrBase), words(8, 0))).To(Succeed())

		req := transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 4)
		req.Setup.Stride = 2
		start(req)
		Expect(engine.Run()).To(Succeed())

		moved, _ := soc.DLM.Read(uint64(dlmBase), 16)
		Expect(moved).To(Equal([]byte{
			0, 1, 2, 3,
			8, 9, 10, 11,
			16, 17, 18, 19,
			24, 25, 26, 27,
		}))
	})

	It("should lay a 2D transfer out in rows", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		data := words(6, 0x40)
		Expect(soc.DLM.Write(uint64(dlmBase), data)).To(Succeed())

		req := transfer(0, lmdma.ActionCommand, lmdma.LMToDDR,
			dlmBase, ddrBase, 6)
		req.TwoD = &lmdma.TwoD{
			RowElements:      4,
			RowStride:        8,
			StartRowElements: 2,
		}
		start(req)
		Expect(engine.Run()).To(Succeed())

		firstRow, _ := soc.DDR.Read(uint64(ddrBase), 8)
		Expect(firstRow).To(Equal(data[:8]))

		gap, _ := soc.DDR.Read(uint64(ddrBase+8), 24)
		Expect(gap).To(Equal(make([]byte, 24)))

		secondRow, _ := soc.DDR.Read(uint64(ddrBase+32), 16)
		Expect(secondRow).To(Equal(data[8:24]))
	})

	It("should queue a second channel behind the head", func() {
		irq.EXPECT().Raise(intc.LineLDMA).Times(2)

		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 4))
		start(transfer(1, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase+0x100, ddrBase+0x100, 4))

		gcsw := file.Read(regs.DMAGCSW)
		Expect(regs.GCSWHeadChan.Get(gcsw)).To(Equal(uint32(0)))
		Expect(regs.GCSWC1Status.Get(gcsw)).To(Equal(regs.ChanQueued))

		Expect(engine.Run()).To(Succeed())
		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanComplete))

		file.Write(regs.DMAHStatus, 0)

		gcsw = file.Read(regs.DMAGCSW)
		Expect(regs.GCSWHeadChan.Get(gcsw)).To(Equal(uint32(1)))
		Expect(regs.GCSWC1Status.Get(gcsw)).To(Equal(regs.ChanActive))

		Expect(engine.Run()).To(Succeed())
		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanComplete))
	})

	It("should hold a queued start when asked to wait", func() {
		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 4))

		req := transfer(1, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase+0x100, ddrBase+0x100, 4)
		req.SubCommand = lmdma.WaitDrainBeforeStart
		start(req)

		Expect(regs.GCSWC1Status.Get(file.Read(regs.DMAGCSW))).
			To(Equal(regs.ChanWaiting))
	})

	It("should drop unfinished transfers on abort", func() {
		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 16))

		gcsw := file.Read(regs.DMAGCSW)
		file.Write(regs.DMAGCSW, gcsw&^regs.GCSWEnable.Mask())

		Expect(engine.Run()).To(Succeed())

		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanIdle))
		Expect(file.Read(regs.DMATCnt)).To(Equal(uint32(16)))
		Expect(regs.GCSWEnable.IsSet(file.Read(regs.DMAGCSW))).To(BeFalse())
	})

	It("should ignore starts while disabled", func() {
		file.Write(regs.DMASetup, regs.SetupCIE.Mask())
		file.Write(regs.DMARCnt, 4)
		file.Write(regs.DMAAct, regs.ActStart)

		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanIdle))
		Expect(engine.Run()).To(Succeed())
	})

	It("should stop the selected channel", func() {
		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 16))

		file.Write(regs.DMAAct, regs.ActStop)

		Expect(file.Read(regs.DMAStatus)).To(Equal(regs.ChanIdle))
		Expect(engine.Run()).To(Succeed())
	})

	It("should forget everything when the control word is cleared", func() {
		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 4))

		file.Write(regs.DMAGCSW, 0)

		Expect(file.Read(regs.DMAGCSW)).To(Equal(uint32(0)))
		Expect(file.Read(regs.DMAHStatus)).To(Equal(regs.ChanIdle))
		Expect(engine.Run()).To(Succeed())
	})

	It("should report finished transfers to a tracer", func() {
		irq.EXPECT().Raise(intc.LineLDMA)
		tracer := tracing.NewAverageTimeTracer(engine, nil)
		soc.DMA.TraceTransfers(tracer)

		start(transfer(0, lmdma.ActionCommand, lmdma.DDRToLM,
			dlmBase, ddrBase, 4))
		Expect(engine.Run()).To(Succeed())

		Expect(tracer.TotalCount()).To(Equal(uint64(1)))
		Expect(tracer.InflightCount()).To(Equal(0))
	})
})
