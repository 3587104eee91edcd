package script

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memspace/memspace"
	"github.com/sarchlab/memspace/rangelist"
)

var _ = Describe("Runner", func() {
	var (
		out    *bytes.Buffer
		runner *Runner
	)

	BeforeEach(func() {
		s, err := memspace.New(28)
		Expect(err).NotTo(HaveOccurred())

		out = &bytes.Buffer{}
		runner = NewRunner(s, out)
	})

	run := func(src string) error {
		return runner.Run(context.Background(), strings.NewReader(src))
	}

	It("should run the first-fit walkthrough", func() {
		err := run(`
			# carve the space into five pieces
			malloc 5 as a
			malloc 5
			malloc 3 as b
			malloc 7
			malloc 8 as c
			expect free
			free $a
			free $b
			free $c
			expect free (0,5) (10,3) (20,8)

			malloc 3          # first fit splits the first range
			expect last 0
			expect free (3,2) (10,3) (20,8)
			check
		`)

		Expect(err).NotTo(HaveOccurred())
		Expect(runner.Steps()).To(Equal(14))
	})

	It("should print the space", func() {
		Expect(run("malloc 4\nprint\n")).To(Succeed())
		Expect(out.String()).To(Equal("(4,24)\n(0,4)\n"))
	})

	It("should defrag", func() {
		err := run(`
			malloc 4 as x
			malloc 4
			free $x
			expect free (8,20) (0,4)
			defrag
			expect free (0,4) (8,20)
		`)

		Expect(err).NotTo(HaveOccurred())
	})

	It("should record failed allocations", func() {
		Expect(run("malloc 40\nexpect last -1\n")).To(Succeed())
		Expect(runner.Last()).To(Equal(memspace.NoAddress))
	})

	It("should report the failing line", func() {
		err := run("malloc 4\n\nexpect allocated (0,5)\nmalloc 1\n")

		var lineErr *LineError
		Expect(errors.As(err, &lineErr)).To(BeTrue())
		Expect(lineErr.Line).To(Equal(3))
		Expect(lineErr.Text).To(Equal("expect allocated (0,5)"))
		Expect(err).To(MatchError(ErrExpectation))
		Expect(runner.Space().AllocatedRanges()).To(HaveLen(1))
	})

	It("should surface engine errors", func() {
		Expect(run("free 0\n")).To(MatchError(memspace.ErrNothingAllocated))
		Expect(run("malloc 0\n")).To(MatchError(memspace.ErrInvalidArgument))
	})

	DescribeTable("should reject malformed commands",
		func(line string, want error) {
			Expect(runner.Exec(line)).To(MatchError(want))
		},
		Entry("unknown command", "allocate 3", ErrSyntax),
		Entry("missing length", "malloc", ErrSyntax),
		Entry("bad length", "malloc x", ErrSyntax),
		Entry("bad label clause", "malloc 3 to y", ErrSyntax),
		Entry("free without address", "free", ErrSyntax),
		Entry("unknown label", "free $nope", ErrUnknownLabel),
		Entry("defrag with arguments", "defrag now", ErrSyntax),
		Entry("bare expect", "expect", ErrSyntax),
		Entry("unknown expectation", "expect nothing", ErrSyntax),
		Entry("bad range", "expect free (1;2)", ErrSyntax),
		Entry("unclosed range", "expect free (1,2", ErrSyntax),
	)

	It("should stop when the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := runner.Run(ctx, strings.NewReader("malloc 1\n"))

		Expect(err).To(MatchError(context.Canceled))
		Expect(runner.Steps()).To(BeZero())
	})
})

var _ = Describe("ParseRanges", func() {
	It("should parse groups with or without spaces", func() {
		Expect(ParseRanges("(0,5) ( 10 , 3 )(20,8)")).To(Equal([]rangelist.Range{
			{Base: 0, Length: 5},
			{Base: 10, Length: 3},
			{Base: 20, Length: 8},
		}))
	})

	It("should parse nothing as no ranges", func() {
		Expect(ParseRanges("")).To(BeEmpty())
	})
})
