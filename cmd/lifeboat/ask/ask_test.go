package askcmder

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/clitest"
	"github.com/papercomputeco/lifeboat/pkg/dispatch"
)

var _ = Describe("Ask Command", func() {
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewAskCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(args)

		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	Context("when the answer service is running", func() {
		var (
			url  string
			stop func()
		)

		BeforeEach(func() {
			var err error
			url, stop, err = clitest.StartAnswerService("342 passengers survived.")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			stop()
		})

		It("prints only the final answer when output is not a terminal", func() {
			out, err := run("--answer-url", url, "How many passengers survived?")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("342 passengers survived.\n"))
		})

		It("joins the remaining arguments into one question", func() {
			out, err := run("--answer-url", url, "--no-animate", "How", "many", "survived?")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("342 passengers survived.\n"))
		})
	})

	Context("when the answer service is down", func() {
		var url string

		BeforeEach(func() {
			var err error
			url, err = clitest.UnreachableURL()
			Expect(err).NotTo(HaveOccurred())
		})

		It("prints the fallback message", func() {
			out, err := run("--answer-url", url, "How many passengers survived?")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(dispatch.DefaultFallback + "\n"))
		})

		It("fails in strict mode", func() {
			out, err := run("--answer-url", url, "--strict", "How many passengers survived?")
			Expect(err).To(MatchError(ContainSubstring("unavailable")))
			Expect(out).To(ContainSubstring(dispatch.DefaultFallback))
		})
	})

	It("rejects a blank question", func() {
		_, err := run("--answer-url", "http://127.0.0.1:1/ask", "   ")
		Expect(err).To(MatchError(ContainSubstring("must not be empty")))
	})

	It("requires a question", func() {
		_, err := run()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("redraw", func() {
	It("rewrites a single line in place", func() {
		Expect(redraw("", "3", 80)).To(Equal("\r" + ansi.EraseScreenBelow + "3"))
		Expect(redraw("34", "342", 80)).To(Equal("\r" + ansi.EraseScreenBelow + "342"))
	})

	It("moves back over every line of a multi-line answer", func() {
		prev := "Survivors by class:\n- first: 136\n- sec"
		next := prev + "o"

		Expect(redraw(prev, next, 80)).To(Equal("\r" + ansi.CursorUp(2) + ansi.EraseScreenBelow + next))
	})

	It("counts rows produced by wrapping", func() {
		prev := strings.Repeat("x", 10)
		Expect(redraw(prev, prev+"y", 4)).To(Equal("\r" + ansi.CursorUp(2) + ansi.EraseScreenBelow + prev + "y"))
	})

	It("counts terminal rows", func() {
		Expect(rows("", 80)).To(Equal(1))
		Expect(rows("a\n\nb", 0)).To(Equal(3))
		Expect(rows(strings.Repeat("x", 8), 4)).To(Equal(2))
		Expect(rows(strings.Repeat("x", 9), 4)).To(Equal(3))
		Expect(rows("⚠️ Backend not running!", 80)).To(Equal(1))
	})
})
