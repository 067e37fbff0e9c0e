package lmdma

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/lmdma/intc"
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
	"github.com/sarchlab/lmdma/tracing"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Engine with mocks", func() {
	var (
		mockCtrl *gomock.Controller
		port     *MockPort
		ic       *MockController
		engine   *Engine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		port = NewMockPort(mockCtrl)
		ic = NewMockController(mockCtrl)

		ic.EXPECT().Install(intc.LineLDMA, gomock.Any())
		engine = MakeBuilder().
			WithRegisterPort(port).
			WithInterruptController(ic).
			Build("LMDMA")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should refuse to build without a port", func() {
		Expect(func() {
			MakeBuilder().WithInterruptController(ic).Build("LMDMA")
		}).To(Panic())
	})

	It("should fail to initialize a missing engine", func() {
		port.EXPECT().Read(regs.MSCCfg).Return(uint32(0x1))

		err := engine.Initialize(func(Status) {})

		Expect(err).To(MatchError(ErrNotPresent))
		Expect(engine.Initialized()).To(BeFalse())
	})

	It("should unmask the line at the highest priority", func() {
		port.EXPECT().Read(regs.MSCCfg).Return(regs.MSCCfgLMDMA.Mask())
		gomock.InOrder(
			ic.EXPECT().SetPriority(intc.LineLDMA, intc.PriorityHighest),
			ic.EXPECT().Enable(intc.LineLDMA),
			ic.EXPECT().EnableGlobal(),
		)

		err := engine.Initialize(func(Status) {})

		Expect(err).NotTo(HaveOccurred())
		Expect(engine.Initialized()).To(BeTrue())
	})

	It("should mask the line and drop its priority", func() {
		gomock.InOrder(
			ic.EXPECT().Disable(intc.LineLDMA),
			ic.EXPECT().SetPriority(intc.LineLDMA, intc.PriorityLowest),
		)

		err := engine.Uninitialize()

		Expect(err).NotTo(HaveOccurred())
		Expect(engine.Initialized()).To(BeFalse())
	})

	DescribeTable("channel count",
		func(field uint32, count int, expected error) {
			port.EXPECT().Read(regs.DMACfg).
				Return(regs.DMACfgNumChannels.Bits(field) |
					regs.DMACfgVersion.Bits(2))

			n, err := engine.ChannelCount()

			if expected != nil {
				Expect(err).To(MatchError(expected))
				return
			}

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(count))
		},
		Entry("one channel", uint32(0), 1, nil),
		Entry("two channels", uint32(1), 2, nil),
		Entry("reserved 2", uint32(2), 0, ErrReserved),
		Entry("reserved 3", uint32(3), 0, ErrReserved),
	)

	It("should write nothing for an invalid request", func() {
		err := engine.Configure(request(2, ActionCommand, LMToDDR))

		Expect(err).To(MatchError(ErrInvalidChannel))
	})

	It("should read the version field", func() {
		port.EXPECT().Read(regs.DMACfg).Return(uint32(0x03000001))

		Expect(engine.Version()).To(Equal(uint8(3)))
	})
})

var _ = Describe("Engine", func() {
	var (
		file     *regs.File
		recorder *regs.Recorder
		ic       *intc.Sim
		engine   *Engine
		statuses []Status
	)

	BeforeEach(func() {
		file = regs.NewFile("regs")
		file.Set(regs.MSCCfg, regs.MSCCfgLMDMA.Mask())
		file.Set(regs.DMACfg, regs.DMACfgNumChannels.Bits(1)|
			regs.DMACfgVersion.Bits(1))
		recorder = regs.NewRecorder()
		file.AcceptHook(recorder)

		ic = intc.NewSim()
		engine = MakeBuilder().
			WithRegisterPort(file).
			WithInterruptController(ic).
			Build("LMDMA")

		statuses = nil
		Expect(engine.Initialize(func(s Status) {
			statuses = append(statuses, s)
		})).To(Succeed())
		Expect(ic.Enabled(intc.LineLDMA)).To(BeTrue())
		Expect(ic.PriorityOf(intc.LineLDMA)).To(Equal(intc.PriorityHighest))
		Expect(ic.GlobalEnabled()).To(BeTrue())
	})

	Context("abort", func() {
		It("should only clear the enable bit", func() {
			file.Set(regs.DMAGCSW, 0xFFFFFFFF)
			recorder.Reset()

			Expect(engine.Abort()).To(Succeed())

			Expect(file.Peek(regs.DMAGCSW)).To(Equal(uint32(0x7FFFFFFF)))
			writes := recorder.Writes()
			Expect(writes).To(HaveLen(1))
			Expect(writes[0].Reg).To(Equal(regs.DMAGCSW))
		})

		It("should be harmless on an idle engine", func() {
			Expect(engine.Abort()).To(Succeed())
			Expect(file.Peek(regs.DMAGCSW)).To(Equal(uint32(0)))
		})
	})

	Context("progress", func() {
		It("should reject channels out of range", func() {
			_, err := engine.ChannelProgress(2)
			Expect(err).To(MatchError(ErrInvalidChannel))

			_, err = engine.ChannelProgress(255)
			Expect(err).To(MatchError(ErrInvalidChannel))
		})

		It("should reject channels that are not at the head", func() {
			Expect(engine.Configure(request(1, ActionCommand, LMToDDR))).
				To(Succeed())

			_, err := engine.ChannelProgress(1)

			Expect(err).To(MatchError(ErrNotSelected))
		})

		It("should reject a channel never configured", func() {
			_, err := engine.ChannelProgress(0)

			Expect(err).To(MatchError(ErrNotConfigured))
		})

		It("should subtract the live count from the configured size", func() {
			Expect(engine.Configure(request(1, ActionCommand, LMToDDR))).
				To(Succeed())
			file.Set(regs.DMAGCSW, regs.GCSWHeadChan.Bits(1))
			file.Set(regs.DMATCnt, 0xFFFC0000|24)

			n, err := engine.ChannelProgress(1)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(40)))
		})

		It("should use the wider live count on newer engines", func() {
			file.Set(regs.DMACfg, regs.DMACfgVersion.Bits(2))
			req := request(0, FastStartOnCount, DDRToLM)
			req.Size = 0x500000
			Expect(engine.Configure(req)).To(Succeed())
			file.Set(regs.DMATCnt, 0xFF100000)

			n, err := engine.ChannelProgress(0)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(0x400000)))
		})

		It("should go negative when the live count exceeds the size", func() {
			Expect(engine.Configure(request(0, ActionCommand, DDRToLM))).
				To(Succeed())
			file.Set(regs.DMATCnt, 100)

			n, err := engine.ChannelProgress(0)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(-36)))
		})
	})

	Context("completion", func() {
		complete := func(hstatus uint32) {
			file.Set(regs.DMAHStatus, hstatus)
			recorder.Reset()
			ic.Raise(intc.LineLDMA)
		}

		It("should retire the head and reset the engine in action mode", func() {
			Expect(engine.Configure(request(0, ActionCommand, LMToDDR))).
				To(Succeed())

			complete(regs.ChanComplete)

			Expect(statuses).To(Equal([]Status{StatusOK}))
			writes := recorder.Writes()
			Expect(writes).To(Equal([]regs.Access{
				{Kind: regs.AccessWrite, Reg: regs.DMAHStatus,
					Value: 0, Ordered: true},
				{Kind: regs.AccessWrite, Reg: regs.DMAAct,
					Value: regs.ActReset, Ordered: true},
				{Kind: regs.AccessWrite, Reg: regs.DMAGCSW,
					Value: 0, Ordered: true},
			}))
		})

		It("should not reset the engine in fast start modes", func() {
			Expect(engine.Configure(request(0, FastStartOnCount, LMToDDR))).
				To(Succeed())

			complete(regs.ChanComplete)

			Expect(statuses).To(Equal([]Status{StatusOK}))
			for _, w := range recorder.Writes() {
				Expect(w.Reg).NotTo(Equal(regs.DMAAct))
			}
		})

		It("should report an error and still turn the engine off", func() {
			Expect(engine.Configure(request(1, ActionCommand, DDRToLM))).
				To(Succeed())

			complete(regs.ChanError)

			Expect(statuses).To(Equal([]Status{StatusError}))
			Expect(recorder.Writes()).To(Equal([]regs.Access{
				{Kind: regs.AccessWrite, Reg: regs.DMAGCSW,
					Value: 0, Ordered: true},
			}))
			Expect(file.Peek(regs.DMAGCSW)).To(Equal(uint32(0)))
		})

		It("should treat any status but complete as an error", func() {
			complete(regs.ChanActive)

			Expect(statuses).To(Equal([]Status{StatusError}))
		})

		It("should not call back after uninitialize", func() {
			Expect(engine.Uninitialize()).To(Succeed())

			engine.HandleCompletion()

			Expect(statuses).To(BeEmpty())
			Expect(ic.Enabled(intc.LineLDMA)).To(BeFalse())
			Expect(ic.PriorityOf(intc.LineLDMA)).To(Equal(intc.PriorityLowest))
		})

		It("should deliver to the latest callback", func() {
			var latest []Status
			Expect(engine.Initialize(func(s Status) {
				latest = append(latest, s)
			})).To(Succeed())

			complete(regs.ChanComplete)

			Expect(statuses).To(BeEmpty())
			Expect(latest).To(Equal([]Status{StatusOK}))
		})
	})

	It("should complete every channel, trigger and direction", func() {
		for ch := uint8(0); ch < NumChannels; ch++ {
			for _, mode := range TriggerModes() {
				for _, dir := range []Direction{DDRToLM, LMToDDR} {
					statuses = nil
					req := request(ch, mode, dir)
					req.Size = uint32(ch)*100 + uint32(mode)*10 + 5

					Expect(engine.Configure(req)).To(Succeed())
					Expect(file.Peek(regs.DMARCnt)).To(Equal(req.Size))
					Expect(engine.channels[ch].expected).To(Equal(req.Size))

					file.Set(regs.DMAHStatus, regs.ChanComplete)
					ic.Raise(intc.LineLDMA)

					Expect(statuses).To(Equal([]Status{StatusOK}),
						"channel %d %s %s", ch, mode, dir)
				}
			}
		}
	})

	Context("tracing", func() {
		var tracer *tracing.AverageTimeTracer

		BeforeEach(func() {
			tracer = tracing.NewAverageTimeTracer(sim.NewSerialEngine(), nil)
			tracing.CollectTrace(engine, tracer)
		})

		It("should end a transfer task on completion", func() {
			Expect(engine.Configure(request(0, ActionCommand, LMToDDR))).
				To(Succeed())
			Expect(tracer.InflightCount()).To(Equal(1))

			file.Set(regs.DMAHStatus, regs.ChanComplete)
			ic.Raise(intc.LineLDMA)

			Expect(tracer.InflightCount()).To(Equal(0))
			Expect(tracer.TotalCount()).To(Equal(uint64(1)))
		})

		It("should end queued tasks when the completion turns the engine off", func() {
			Expect(engine.Configure(request(0, ActionCommand, LMToDDR))).
				To(Succeed())
			Expect(engine.Configure(request(1, ActionCommand, LMToDDR))).
				To(Succeed())

			file.Set(regs.DMAHStatus, regs.ChanComplete)
			ic.Raise(intc.LineLDMA)

			Expect(tracer.InflightCount()).To(Equal(0))
			Expect(tracer.TotalCount()).To(Equal(uint64(2)))
		})

		It("should end every pending task on abort", func() {
			Expect(engine.Configure(request(0, ActionCommand, LMToDDR))).
				To(Succeed())
			Expect(engine.Configure(request(1, ActionCommand, LMToDDR))).
				To(Succeed())

			Expect(engine.Abort()).To(Succeed())

			Expect(tracer.InflightCount()).To(Equal(0))
			Expect(tracer.TotalCount()).To(Equal(uint64(2)))
		})
	})
})
