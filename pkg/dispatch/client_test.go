package dispatch_test

import (
	"context"
	"encoding/json"
	"net"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/llm"
)

var _ = Describe("Client", func() {
	var (
		ctx   context.Context
		calls atomic.Int32
	)

	BeforeEach(func() {
		ctx = context.Background()
		calls.Store(0)
	})

	// startService runs a fake answer service whose /ask route is handled by h.
	startService := func(h fiber.Handler) (string, func()) {
		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		app.Post("/ask", func(c *fiber.Ctx) error {
			calls.Add(1)
			return h(c)
		})

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		go func() {
			_ = app.Listener(listener)
		}()

		return "http://" + listener.Addr().String() + "/ask", func() {
			_ = app.Shutdown()
		}
	}

	newClient := func(url string, timeout time.Duration) *dispatch.Client {
		c, err := dispatch.New(dispatch.Config{URL: url, Timeout: timeout}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Describe("New", func() {
		It("requires a URL", func() {
			_, err := dispatch.New(dispatch.Config{}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("fills in the default fallback", func() {
			c := newClient("http://127.0.0.1:1/ask", 0)
			Expect(c.Fallback()).To(Equal(dispatch.DefaultFallback))
		})
	})

	Context("when the service answers", func() {
		It("returns the answer and sends the query as JSON", func() {
			var (
				body        []byte
				contentType string
			)
			url, stop := startService(func(c *fiber.Ctx) error {
				body = append([]byte(nil), c.Body()...)
				contentType = c.Get("Content-Type")
				return c.JSON(fiber.Map{"answer": "342 passengers survived."})
			})
			defer stop()

			out := newClient(url, time.Second).Dispatch(ctx, "How many passengers survived?")

			Expect(out.Kind).To(Equal(dispatch.Answered))
			Expect(out.Available()).To(BeTrue())
			Expect(out.Text).To(Equal("342 passengers survived."))
			Expect(out.Cause).To(BeNil())
			var got llm.AskRequest
			Expect(json.Unmarshal(body, &got)).To(Succeed())
			Expect(got.Query).To(Equal("How many passengers survived?"))
			Expect(contentType).To(Equal("application/json"))
			Expect(calls.Load()).To(Equal(int32(1)))
		})

		It("accepts an empty answer string", func() {
			url, stop := startService(func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"answer": ""})
			})
			defer stop()

			out := newClient(url, time.Second).Dispatch(ctx, "q")
			Expect(out.Kind).To(Equal(dispatch.Answered))
			Expect(out.Text).To(BeEmpty())
		})
	})

	DescribeTable("collapsing failures into Unavailable",
		func(h fiber.Handler, reason dispatch.Reason) {
			url, stop := startService(h)
			defer stop()

			out := newClient(url, 200*time.Millisecond).Dispatch(ctx, "q")

			Expect(out.Kind).To(Equal(dispatch.Unavailable))
			Expect(out.Text).To(Equal(dispatch.DefaultFallback))
			Expect(dispatch.ReasonOf(out.Cause)).To(Equal(reason))
			Expect(calls.Load()).To(Equal(int32(1)))
		},
		Entry("non-success status", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"answer": "ignored"})
		}, dispatch.ReasonStatus),
		Entry("malformed body", func(c *fiber.Ctx) error {
			return c.SendString("not json")
		}, dispatch.ReasonDecode),
		Entry("non-string answer", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"answer": 42})
		}, dispatch.ReasonDecode),
		Entry("missing answer field", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"result": "wrong shape"})
		}, dispatch.ReasonMissingAnswer),
		Entry("slow service", func(c *fiber.Ctx) error {
			time.Sleep(time.Second)
			return c.JSON(fiber.Map{"answer": "too late"})
		}, dispatch.ReasonTimeout),
	)

	Context("when the service is unreachable", func() {
		It("returns the fallback without retrying", func() {
			listener, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			addr := listener.Addr().String()
			listener.Close()

			out := newClient("http://"+addr+"/ask", time.Second).Dispatch(ctx, "How many passengers survived?")

			Expect(out.Kind).To(Equal(dispatch.Unavailable))
			Expect(out.Text).To(Equal(dispatch.DefaultFallback))
			Expect(dispatch.ReasonOf(out.Cause)).To(Equal(dispatch.ReasonTransport))
		})
	})

	It("does not call the service for an empty query", func() {
		url, stop := startService(func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"answer": "x"})
		})
		defer stop()

		out := newClient(url, time.Second).Dispatch(ctx, "   ")

		Expect(out.Kind).To(Equal(dispatch.Unavailable))
		Expect(dispatch.ReasonOf(out.Cause)).To(Equal(dispatch.ReasonEmptyQuery))
		Expect(calls.Load()).To(Equal(int32(0)))
	})

	It("uses a custom fallback message", func() {
		c, err := dispatch.New(dispatch.Config{URL: "http://127.0.0.1:1/ask", Fallback: "offline"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Dispatch(ctx, "q").Text).To(Equal("offline"))
	})
})
