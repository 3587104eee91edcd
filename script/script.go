// Package script drives a memory space from a line-oriented command script.
//
// One command per line; everything after a '#' is a comment.
//
//	malloc <length> [as <label>]  allocate; remember the address as $label
//	free <address|$label>         release an allocated range
//	defrag                        coalesce the free list
//	print                         write the free and allocated lists
//	check                         verify the space invariants
//	expect free <ranges...>       compare the free list, e.g. (0,5) (20,8)
//	expect allocated <ranges...>  compare the allocated list
//	expect last <address>         compare the last malloc result
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/memspace/memspace"
	"github.com/sarchlab/memspace/rangelist"
)

var (
	// ErrSyntax indicates a line that is not a valid command.
	ErrSyntax = errors.New("script: syntax error")

	// ErrUnknownLabel indicates a $label that no malloc defined.
	ErrUnknownLabel = errors.New("script: unknown label")

	// ErrExpectation indicates an expect command that did not hold.
	ErrExpectation = errors.New("script: expectation failed")
)

// LineError reports the script line a command failed on.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// A Runner executes commands against one memory space.
type Runner struct {
	space  *memspace.Space
	out    io.Writer
	labels map[string]int
	last   int
	steps  int
}

// NewRunner creates a runner that writes print output to out.
func NewRunner(space *memspace.Space, out io.Writer) *Runner {
	return &Runner{
		space:  space,
		out:    out,
		labels: make(map[string]int),
		last:   memspace.NoAddress,
	}
}

// Space returns the memory space the runner drives.
func (r *Runner) Space() *memspace.Space {
	return r.space
}

// Last returns the address returned by the most recent malloc.
func (r *Runner) Last() int {
	return r.last
}

// Steps returns the number of commands executed so far.
func (r *Runner) Steps() int {
	return r.steps
}

// Run executes the script line by line. It stops at the first failing
// line, or when ctx is done.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		if err := ctx.Err(); err != nil {
			return err
		}

		text := scanner.Text()
		if err := r.Exec(text); err != nil {
			return &LineError{Line: lineNo, Text: strings.TrimSpace(text), Err: err}
		}
	}

	return scanner.Err()
}

// Exec executes a single line. Blank lines and comments are no-ops.
func (r *Runner) Exec(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	r.steps++

	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "malloc":
		return r.malloc(args)
	case "free":
		return r.free(args)
	case "defrag":
		if len(args) != 0 {
			return fmt.Errorf("%w: defrag takes no arguments", ErrSyntax)
		}

		r.space.Defrag()

		return nil
	case "print":
		_, err := fmt.Fprintln(r.out, r.space.String())
		return err
	case "check":
		return r.space.CheckInvariants()
	case "expect":
		return r.expect(args)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrSyntax, cmd)
	}
}

func (r *Runner) malloc(args []string) error {
	if len(args) != 1 && !(len(args) == 3 && args[1] == "as") {
		return fmt.Errorf("%w: usage: malloc <length> [as <label>]", ErrSyntax)
	}

	length, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: bad length %q", ErrSyntax, args[0])
	}

	addr, err := r.space.Malloc(length)
	if err != nil {
		return err
	}

	r.last = addr

	if len(args) == 3 {
		r.labels[args[2]] = addr
	}

	return nil
}

func (r *Runner) free(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: free <address|$label>", ErrSyntax)
	}

	addr, err := r.address(args[0])
	if err != nil {
		return err
	}

	return r.space.Free(addr)
}

func (r *Runner) address(token string) (int, error) {
	if label, ok := strings.CutPrefix(token, "$"); ok {
		addr, found := r.labels[label]
		if !found {
			return 0, fmt.Errorf("%w: $%s", ErrUnknownLabel, label)
		}

		return addr, nil
	}

	addr, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: bad address %q", ErrSyntax, token)
	}

	return addr, nil
}

func (r *Runner) expect(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: expect free|allocated|last ...", ErrSyntax)
	}

	switch args[0] {
	case "free":
		return expectRanges("free", r.space.FreeRanges(), args[1:])
	case "allocated":
		return expectRanges("allocated", r.space.AllocatedRanges(), args[1:])
	case "last":
		if len(args) != 2 {
			return fmt.Errorf("%w: usage: expect last <address>", ErrSyntax)
		}

		want, err := r.address(args[1])
		if err != nil {
			return err
		}

		if r.last != want {
			return fmt.Errorf("%w: last address is %d, want %d",
				ErrExpectation, r.last, want)
		}

		return nil
	default:
		return fmt.Errorf("%w: cannot expect %q", ErrSyntax, args[0])
	}
}

func expectRanges(list string, got []rangelist.Range, args []string) error {
	want, err := ParseRanges(strings.Join(args, ""))
	if err != nil {
		return err
	}

	if !equalRanges(got, want) {
		return fmt.Errorf("%w: %s list is %s, want %s",
			ErrExpectation, list, formatRanges(got), formatRanges(want))
	}

	return nil
}

// ParseRanges parses a sequence of "(base,length)" groups. Spaces between
// and inside groups are ignored. An empty string yields no ranges.
func ParseRanges(s string) ([]rangelist.Range, error) {
	s = strings.ReplaceAll(s, " ", "")

	var out []rangelist.Range

	for s != "" {
		if s[0] != '(' {
			return nil, fmt.Errorf("%w: expected '(' in %q", ErrSyntax, s)
		}

		end := strings.IndexByte(s, ')')
		if end < 0 {
			return nil, fmt.Errorf("%w: missing ')' in %q", ErrSyntax, s)
		}

		baseText, lengthText, ok := strings.Cut(s[1:end], ",")
		if !ok {
			return nil, fmt.Errorf("%w: missing ',' in %q", ErrSyntax, s[:end+1])
		}

		base, err := strconv.Atoi(baseText)
		if err != nil {
			return nil, fmt.Errorf("%w: bad base %q", ErrSyntax, baseText)
		}

		length, err := strconv.Atoi(lengthText)
		if err != nil {
			return nil, fmt.Errorf("%w: bad length %q", ErrSyntax, lengthText)
		}

		out = append(out, rangelist.Range{Base: base, Length: length})
		s = s[end+1:]
	}

	return out, nil
}

func equalRanges(a, b []rangelist.Range) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func formatRanges(ranges []rangelist.Range) string {
	if len(ranges) == 0 {
		return "[]"
	}

	parts := make([]string, len(ranges))
	for i := range ranges {
		parts[i] = ranges[i].String()
	}

	return strings.Join(parts, " ")
}
