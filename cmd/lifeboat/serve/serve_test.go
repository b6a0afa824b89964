package servecmder

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/lifeboat/cmd/lifeboat/clitest"
	"github.com/papercomputeco/lifeboat/dashboard"
	"github.com/papercomputeco/lifeboat/pkg/llm"
)

var _ = Describe("Serve Command", func() {
	var (
		tmpDir      string
		datasetPath string
		answerURL   string
		stopService func()
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "lifeboat-serve-test-*")
		Expect(err).NotTo(HaveOccurred())

		datasetPath, err = clitest.WriteDataset(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		answerURL, stopService, err = clitest.StartAnswerService("Most passengers in first class survived.")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		stopService()
		os.RemoveAll(tmpDir)
	})

	// start runs the command on a fresh listener until the returned cancel
	// function is called.
	start := func() (string, func() error) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		ready := make(chan *dashboard.Server, 1)
		cmder := &serveCommander{listener: listener, ready: ready}
		cmder.flags.Dataset = datasetPath
		cmder.flags.AnswerURL = answerURL

		cmd := &cobra.Command{}
		cmd.SetErr(io.Discard)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- cmder.run(ctx, cmd)
		}()

		Eventually(ready).Should(Receive())

		base := "http://" + listener.Addr().String()
		Eventually(func() error {
			resp, err := http.Get(base + "/health")
			if err == nil {
				resp.Body.Close()
			}
			return err
		}).Should(Succeed())

		return base, func() error {
			cancel()
			select {
			case err := <-done:
				return err
			case <-time.After(5 * time.Second):
				return context.DeadlineExceeded
			}
		}
	}

	It("serves statistics for the configured dataset", func() {
		base, stop := start()

		resp, err := http.Get(base + "/api/stats")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var st dashboard.StatsResponse
		Expect(json.NewDecoder(resp.Body).Decode(&st)).To(Succeed())
		Expect(st.Count).To(Equal(4))
		Expect(*st.SurvivalPercent).To(Equal(75.0))

		Expect(stop()).To(Succeed())
	})

	It("answers chat submissions through the answer service", func() {
		base, stop := start()

		resp, err := http.Post(base+"/api/conversation?stream=false", "application/json",
			strings.NewReader(`{"query":"Who survived?"}`))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var result struct {
			Turns []llm.TurnPayload `json:"turns"`
		}
		Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
		Expect(result.Turns).To(HaveLen(2))
		Expect(result.Turns[1].Content).To(Equal("Most passengers in first class survived."))
		Expect(result.Turns[1].Fallback).To(BeFalse())

		Expect(stop()).To(Succeed())
	})

	It("fails when the dataset is missing", func() {
		cmd := NewServeCmd()
		cmd.SetErr(io.Discard)
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{"--dataset", tmpDir + "/missing.csv", "--answer-url", answerURL})

		err := cmd.ExecuteContext(context.Background())
		Expect(err).To(MatchError(ContainSubstring("could not load dataset")))
	})

	It("rejects a config file with unknown keys", func() {
		path := tmpDir + "/lifeboat.toml"
		Expect(os.WriteFile(path, []byte("listn = \":9090\"\n"), 0o600)).To(Succeed())

		cmd := NewServeCmd()
		cmd.SetErr(io.Discard)
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{"--config", path})

		err := cmd.ExecuteContext(context.Background())
		Expect(err).To(MatchError(ContainSubstring("listn")))
	})
})
