package chartcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/clitest"
	"github.com/papercomputeco/lifeboat/pkg/chart"
)

var _ = Describe("Chart Command", func() {
	var (
		tmpDir      string
		datasetPath string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "lifeboat-chart-test-*")
		Expect(err).NotTo(HaveOccurred())

		datasetPath, err = clitest.WriteDataset(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewChartCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(append([]string{"--dataset", datasetPath}, args...))

		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	It("draws the class distribution as plain text when piped", func() {
		out, err := run("class-distribution", "--width", "40")
		Expect(err).NotTo(HaveOccurred())

		Expect(out).To(HavePrefix("Passenger Class Distribution\n"))
		Expect(out).NotTo(ContainSubstring("\x1b["))
		Expect(out).To(MatchRegexp(`1\s*│█+\s+2\n`))
		Expect(out).To(MatchRegexp(`3\s*│█+\s+1\n`))

		for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
			Expect(ansi.StringWidth(line)).To(BeNumerically("<=", 40))
		}
	})

	It("accepts a chart title", func() {
		out, err := run("Survival", "by", "Gender")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("Survival by Gender\n"))
		Expect(out).To(ContainSubstring("male"))
		Expect(out).To(ContainSubstring("female"))
	})

	It("prints the chart data as JSON", func() {
		out, err := run("age-distribution", "--json")
		Expect(err).NotTo(HaveOccurred())

		var c chart.Chart
		Expect(json.Unmarshal([]byte(out), &c)).To(Succeed())
		Expect(c.Kind).To(Equal(chart.AgeDistribution))
		Expect(c.Curve).To(HaveLen(len(c.Bars)))

		total := 0.0
		for _, b := range c.Bars {
			total += b.Value
		}
		Expect(total).To(Equal(2.0))
	})

	It("rejects an unknown chart", func() {
		_, err := run("pie")
		Expect(err).To(MatchError(ContainSubstring(`unknown chart "pie"`)))
	})

	It("fails on a missing dataset", func() {
		var out bytes.Buffer
		cmd := NewChartCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"--dataset", filepath.Join(tmpDir, "missing.csv"), "age-distribution"})

		err := cmd.ExecuteContext(context.Background())
		Expect(err).To(MatchError(ContainSubstring("could not load dataset")))
	})
})
