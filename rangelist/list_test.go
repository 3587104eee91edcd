package rangelist_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/memspace/rangelist"
)

func listOf(ranges ...*rangelist.Range) *rangelist.List {
	l := rangelist.New()
	for _, r := range ranges {
		Expect(l.AppendLast(r)).To(Succeed())
	}

	return l
}

func listMustBeConsistent(l *rangelist.List) {
	if l.Size() == 0 {
		Expect(l.Front()).To(BeNil())
		Expect(l.Back()).To(BeNil())
		return
	}

	e := l.Front()
	for i := 1; i < l.Size(); i++ {
		e = e.Next()
		Expect(e).NotTo(BeNil())
	}

	Expect(e).To(BeIdenticalTo(l.Back()))
	Expect(e.Next()).To(BeNil())
}

var _ = Describe("List", func() {
	var l *rangelist.List

	BeforeEach(func() {
		l = rangelist.New()
	})

	It("should start empty", func() {
		Expect(l.Size()).To(Equal(0))
		Expect(l.String()).To(Equal(""))
		listMustBeConsistent(l)
	})

	Context("when inserting", func() {
		It("should set first and last on the first insertion", func() {
			r := rangelist.NewRange(0, 10)
			Expect(l.AppendLast(r)).To(Succeed())

			Expect(l.Size()).To(Equal(1))
			Expect(l.Front()).To(BeIdenticalTo(l.Back()))
			Expect(l.Front().Range()).To(BeIdenticalTo(r))
		})

		It("should insert at head, tail and middle", func() {
			Expect(l.AppendLast(rangelist.NewRange(10, 1))).To(Succeed())
			Expect(l.AppendFirst(rangelist.NewRange(0, 1))).To(Succeed())
			Expect(l.AppendLast(rangelist.NewRange(30, 1))).To(Succeed())
			Expect(l.Insert(2, rangelist.NewRange(20, 1))).To(Succeed())

			Expect(l.String()).To(Equal("(0,1) -> (10,1) -> (20,1) -> (30,1)"))
			listMustBeConsistent(l)
		})

		It("should reject out of range indices", func() {
			Expect(l.Insert(-1, rangelist.NewRange(0, 1))).To(MatchError(rangelist.ErrOutOfRange))
			Expect(l.Insert(1, rangelist.NewRange(0, 1))).To(MatchError(rangelist.ErrOutOfRange))
			Expect(l.Size()).To(Equal(0))
		})

		It("should reject nil ranges", func() {
			Expect(l.AppendLast(nil)).To(MatchError(rangelist.ErrInvalidArgument))
		})
	})

	Context("when reading by position", func() {
		BeforeEach(func() {
			l = listOf(rangelist.NewRange(0, 5), rangelist.NewRange(10, 3), rangelist.NewRange(20, 8))
		})

		It("should return the range at an index", func() {
			r, err := l.At(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(Equal(rangelist.NewRange(10, 3)))
		})

		It("should fail outside the bounds", func() {
			_, err := l.At(3)
			Expect(err).To(MatchError(rangelist.ErrOutOfRange))

			_, err = l.At(-1)
			Expect(err).To(MatchError(rangelist.ErrOutOfRange))
		})

		It("should find ranges by value", func() {
			Expect(l.IndexOf(rangelist.NewRange(20, 8))).To(Equal(2))
			Expect(l.IndexOf(rangelist.NewRange(20, 7))).To(Equal(-1))

			_, err := l.IndexOf(nil)
			Expect(err).To(MatchError(rangelist.ErrInvalidArgument))
		})
	})

	Context("when removing", func() {
		var a, b, c *rangelist.Range

		BeforeEach(func() {
			a, b, c = rangelist.NewRange(0, 5), rangelist.NewRange(10, 3), rangelist.NewRange(20, 8)
			l = listOf(a, b, c)
		})

		It("should remove the head", func() {
			Expect(l.RemoveEntry(l.Front())).To(Succeed())
			Expect(l.String()).To(Equal("(10,3) -> (20,8)"))
			listMustBeConsistent(l)
		})

		It("should update last when removing the tail", func() {
			Expect(l.RemoveEntry(l.Back())).To(Succeed())
			Expect(l.Back().Range()).To(BeIdenticalTo(b))
			listMustBeConsistent(l)
		})

		It("should empty the list when removing the only entry", func() {
			l = listOf(a)
			Expect(l.RemoveEntry(l.Front())).To(Succeed())
			listMustBeConsistent(l)
		})

		It("should match entries by identity", func() {
			twin := rangelist.NewRange(10, 3)
			Expect(l.AppendFirst(twin)).To(Succeed())

			target, err := l.EntryAt(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.RemoveEntry(target)).To(Succeed())

			r, _ := l.At(0)
			Expect(r).To(BeIdenticalTo(twin))
			Expect(l.Size()).To(Equal(3))
		})

		It("should reject entries of another list", func() {
			other := listOf(rangelist.NewRange(0, 5))

			err := l.RemoveEntry(other.Front())
			Expect(err).To(MatchError(rangelist.ErrNotFound))
			Expect(err).To(MatchError(rangelist.ErrInvalidArgument))
			Expect(l.Size()).To(Equal(3))
		})

		It("should reject nil entries and empty lists", func() {
			Expect(l.RemoveEntry(nil)).To(MatchError(rangelist.ErrInvalidArgument))

			e := l.Front()
			Expect(rangelist.New().RemoveEntry(e)).To(MatchError(rangelist.ErrInvalidArgument))
		})

		It("should remove by index", func() {
			Expect(l.RemoveAt(1)).To(Succeed())
			Expect(l.String()).To(Equal("(0,5) -> (20,8)"))
			Expect(l.RemoveAt(2)).To(MatchError(rangelist.ErrOutOfRange))
		})

		It("should remove by value", func() {
			Expect(l.RemoveValue(rangelist.NewRange(20, 8))).To(Succeed())
			Expect(l.String()).To(Equal("(0,5) -> (10,3)"))
			listMustBeConsistent(l)

			Expect(l.RemoveValue(rangelist.NewRange(7, 7))).To(MatchError(rangelist.ErrNotFound))
			Expect(l.RemoveValue(nil)).To(MatchError(rangelist.ErrInvalidArgument))
		})
	})

	Context("when sorting", func() {
		It("should do nothing for short lists", func() {
			l = listOf(rangelist.NewRange(5, 1))
			l.SortByBase()
			Expect(l.String()).To(Equal("(5,1)"))
		})

		It("should order by base address", func() {
			l = listOf(rangelist.NewRange(20, 8), rangelist.NewRange(0, 5), rangelist.NewRange(10, 3))
			first := l.Front()

			l.SortByBase()

			Expect(l.String()).To(Equal("(0,5) -> (10,3) -> (20,8)"))
			Expect(l.Front()).To(BeIdenticalTo(first))
			listMustBeConsistent(l)
		})

		It("should keep equal bases in order", func() {
			x, y := rangelist.NewRange(4, 1), rangelist.NewRange(4, 2)
			l = listOf(rangelist.NewRange(9, 1), x, y)

			l.SortByBase()

			r1, _ := l.At(0)
			r2, _ := l.At(1)
			Expect(r1).To(BeIdenticalTo(x))
			Expect(r2).To(BeIdenticalTo(y))
		})
	})

	It("should snapshot ranges and total length", func() {
		l = listOf(rangelist.NewRange(0, 5), rangelist.NewRange(10, 3))

		snapshot := l.Ranges()
		l.Front().Range().SetLength(1)

		Expect(snapshot).To(Equal([]rangelist.Range{{Base: 0, Length: 5}, {Base: 10, Length: 3}}))
		Expect(l.TotalLength()).To(Equal(4))
	})
})
