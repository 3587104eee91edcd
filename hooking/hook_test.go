package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	positions []*HookPos
}

func (h *countingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  = &HookPos{Name: "Test"}
	)

	BeforeEach(func() {
		base = &HookableBase{}
	})

	It("should invoke hooks in order", func() {
		var order []int
		first := &countingHook{}
		base.AcceptHook(first)
		base.AcceptHook(HookFunc(func(HookCtx) { order = append(order, 2) }))

		base.InvokeHook(HookCtx{Pos: pos})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(first.positions).To(ConsistOf(pos))
		Expect(order).To(Equal([]int{2}))
	})

	It("should panic on duplicated hooks", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})

	It("should remove hooks", func() {
		h1 := &countingHook{}
		h2 := &countingHook{}
		base.AcceptHook(h1)
		base.AcceptHook(h2)

		Expect(base.RemoveHook(h1)).To(BeTrue())
		Expect(base.RemoveHook(h1)).To(BeFalse())

		base.InvokeHook(HookCtx{Pos: pos})

		Expect(h1.positions).To(BeEmpty())
		Expect(h2.positions).To(HaveLen(1))
		Expect(base.Hooks()).To(HaveLen(1))
	})
})
