package memspace

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("Logger", func() {
	AfterEach(func() {
		SetLogger(nil)
	})

	It("should discard by default", func() {
		Expect(Logger().Core().Enabled(zapcore.ErrorLevel)).To(BeFalse())
	})

	It("should report builds and defrags to the configured logger", func() {
		core, logs := observer.New(zapcore.DebugLevel)
		SetLogger(zap.New(core))

		s, err := MakeBuilder().WithName("Logged").WithCapacity(8).Build()
		Expect(err).NotTo(HaveOccurred())
		s.Defrag()

		Expect(logs.FilterMessage("memory space built").Len()).To(Equal(1))
		Expect(logs.FilterMessage("defragmented").Len()).To(Equal(1))
		Expect(logs.All()[0].ContextMap()).To(HaveKeyWithValue("space", "Logged"))
	})

	It("should restore the no-op logger on nil", func() {
		core, _ := observer.New(zapcore.DebugLevel)
		SetLogger(zap.New(core))
		SetLogger(nil)

		Expect(Logger()).NotTo(BeNil())
		Expect(Logger().Core().Enabled(zapcore.ErrorLevel)).To(BeFalse())
	})

	It("should allow swapping the logger while spaces log", func() {
		s, err := New(64)
		Expect(err).NotTo(HaveOccurred())

		var wg sync.WaitGroup
		wg.Add(1)

		go func() {
			defer GinkgoRecover()
			defer wg.Done()

			for i := 0; i < 100; i++ {
				core, _ := observer.New(zapcore.DebugLevel)
				SetLogger(zap.New(core))
			}
		}()

		for i := 0; i < 100; i++ {
			s.Defrag()
		}

		wg.Wait()
	})
})
