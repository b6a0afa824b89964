package tuicmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/clitest"
)

var _ = Describe("TUI Command", func() {
	var (
		tmpDir      string
		datasetPath string
		logPath     string
		answerURL   string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "lifeboat-tui-test-*")
		Expect(err).NotTo(HaveOccurred())

		datasetPath, err = clitest.WriteDataset(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		logPath = filepath.Join(tmpDir, "lifeboat.log")

		answerURL, err = clitest.UnreachableURL()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	newCommander := func() *tuiCommander {
		cmder := &tuiCommander{
			logFile:       logPath,
			markdownStyle: "notty",
			programOpts:   []tea.ProgramOption{tea.WithoutSignalHandler()},
		}
		cmder.flags.Dataset = datasetPath
		cmder.flags.AnswerURL = answerURL
		return cmder
	}

	It("draws the dashboard and quits on ctrl+c", func() {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader("\x03"))
		cmd.SetOut(&out)

		err := newCommander().run(context.Background(), cmd)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.String()).To(ContainSubstring("Total Passengers"))

		logs, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(logs)).To(ContainSubstring("terminal dashboard starting"))
		Expect(string(logs)).To(ContainSubstring("terminal dashboard closed"))
	})

	It("fails before drawing when the dataset is missing", func() {
		cmder := newCommander()
		cmder.flags.Dataset = filepath.Join(tmpDir, "missing.csv")

		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(""))
		cmd.SetOut(&out)

		err := cmder.run(context.Background(), cmd)
		Expect(err).To(MatchError(ContainSubstring("could not load dataset")))
		Expect(out.String()).To(BeEmpty())
	})
})
