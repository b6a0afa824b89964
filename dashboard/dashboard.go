// Package dashboard serves the passenger dashboard over HTTP: statistics,
// charts, and a per-session conversation with the answer service whose
// replies are streamed as reveal frames.
package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/chart"
	"github.com/papercomputeco/lifeboat/pkg/conversation"
	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/llm"
	"github.com/papercomputeco/lifeboat/pkg/logger"
	"github.com/papercomputeco/lifeboat/pkg/passenger"
	"github.com/papercomputeco/lifeboat/pkg/reveal"
	"github.com/papercomputeco/lifeboat/pkg/session"
	"github.com/papercomputeco/lifeboat/pkg/stats"
)

const (
	// SessionCookie carries the session ID for browser clients.
	SessionCookie = "lifeboat_session"

	// SessionHeader carries the session ID for API clients and takes
	// precedence over the cookie.
	SessionHeader = "X-Lifeboat-Session"
)

// Server is the dashboard HTTP server. The dataset is shared read-only by
// every session; each session owns its own conversation.
type Server struct {
	config   Config
	dataset  *passenger.Dataset
	sessions *registry
	logger   *zap.Logger
	server   *fiber.App
	done     chan struct{}
}

// New creates a new Server.
func New(config Config, ds *passenger.Dataset, d dispatch.Dispatcher, logger *zap.Logger) (*Server, error) {
	if ds == nil {
		return nil, errors.New("dashboard: dataset must not be nil")
	}
	if d == nil {
		return nil, errors.New("dashboard: dispatcher must not be nil")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		dataset: ds,
		sessions: newRegistry(d, session.Options{
			Placeholder: config.Placeholder,
			Pacer:       config.Pacer,
		}, logger),
		logger: logger,
		server: app,
		done:   make(chan struct{}),
	}

	app.Use(recover.New())
	app.Use(s.logRequests)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Get("/api/stats", s.handleStats)
	app.Get("/api/charts", s.handleListCharts)
	app.Get("/api/charts/:kind", s.handleChart)

	app.Get("/api/conversation", s.handleConversation)
	app.Post("/api/conversation", s.handleSubmit)
	app.Delete("/api/conversation", s.handleClear)
	app.Delete("/api/session", s.handleEndSession)

	return s, nil
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting dashboard server",
		zap.String("listen", s.config.ListenAddr),
		zap.Int("passengers", s.dataset.Len()),
	)

	go s.pruneLoop()
	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting dashboard server", zap.String("listen", ln.Addr().String()))

	go s.pruneLoop()
	return s.server.Listener(ln)
}

// Shutdown stops the server and the session pruner.
func (s *Server) Shutdown() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return s.server.Shutdown()
}

func (s *Server) pruneLoop() {
	if s.config.SessionTTL <= 0 {
		return
	}

	ticker := time.NewTicker(s.config.SessionTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.sessions.prune(s.config.SessionTTL, now)
		}
	}
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Debug("request handled",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// session resolves the caller's session, issuing a cookie for new ones.
func (s *Server) session(c *fiber.Ctx) *session.Session {
	id := c.Get(SessionHeader)
	if id == "" {
		id = c.Cookies(SessionCookie)
	}

	sess, created := s.sessions.get(id)
	if created {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Set(SessionHeader, sess.ID())
	return sess
}

// StatsResponse holds the headline figures. Figures with no underlying
// data are null.
type StatsResponse struct {
	Count           int      `json:"count"`
	SurvivalRatio   *float64 `json:"survival_ratio"`
	SurvivalPercent *float64 `json:"survival_percent"`
	AverageAge      *float64 `json:"average_age"`
}

// handleStats recomputes the statistics on every request.
func (s *Server) handleStats(c *fiber.Ctx) error {
	sum := stats.Summarize(s.dataset)

	return c.JSON(StatsResponse{
		Count:           sum.Count,
		SurvivalRatio:   finite(sum.SurvivalRatio),
		SurvivalPercent: finite(sum.SurvivalPercent()),
		AverageAge:      finite(sum.AverageAgeRounded()),
	})
}

// ChartInfo describes a selectable chart.
type ChartInfo struct {
	Kind  chart.Kind `json:"kind"`
	Title string     `json:"title"`
}

func (s *Server) handleListCharts(c *fiber.Ctx) error {
	infos := make([]ChartInfo, len(chart.Kinds))
	for i, k := range chart.Kinds {
		infos[i] = ChartInfo{Kind: k, Title: k.Title()}
	}
	return c.JSON(infos)
}

func (s *Server) handleChart(c *fiber.Ctx) error {
	kind, err := chart.ParseKind(c.Params("kind"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	ch, err := chart.Build(kind, s.dataset)
	if err != nil {
		s.logger.Error("failed to build chart", zap.String("kind", string(kind)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(ch)
}

// ConversationResponse is the full conversation of a session.
type ConversationResponse struct {
	SessionID string            `json:"session_id"`
	Pending   bool              `json:"pending"`
	Turns     []llm.TurnPayload `json:"turns"`
}

// handleConversation returns the conversation read fresh from the log.
func (s *Server) handleConversation(c *fiber.Ctx) error {
	sess := s.session(c)

	return c.JSON(ConversationResponse{
		SessionID: sess.ID(),
		Pending:   sess.Pending(),
		Turns:     conversation.Payloads(sess.Turns()),
	})
}

// SubmitRequest is the body of POST /api/conversation.
type SubmitRequest struct {
	Query string `json:"query"`
}

// handleSubmit records a user query and replies with the assistant turn.
// By default the answer is streamed as NDJSON reveal frames followed by a
// final chunk carrying the stored turn; ?stream=false answers with both new
// turns at once.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("failed to parse submission", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	sess := s.session(c)

	ex, err := sess.Begin(req.Query)
	switch {
	case errors.Is(err, session.ErrEmptyQuery):
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "query must not be empty"})
	case errors.Is(err, session.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(llm.ErrorResponse{Error: "a query is already pending"})
	case err != nil:
		s.logger.Error("failed to begin exchange", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	s.logger.Debug("received query",
		zap.String("session", sess.ID()),
		zap.String("query_preview", logger.Preview(ex.Query(), 50)),
	)

	if c.Query("stream") == "false" {
		return s.finishBatch(c, ex)
	}
	return s.finishStreaming(c, ex)
}

func (s *Server) finishBatch(c *fiber.Ctx, ex *session.Exchange) error {
	ex.Dispatch(c.Context())

	turn, err := ex.Finish()
	if err != nil {
		s.logger.Error("failed to record answer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(map[string]any{
		"turns": []llm.TurnPayload{ex.UserTurn().Payload(), turn.Payload()},
	})
}

func (s *Server) finishStreaming(c *fiber.Ctx, ex *session.Exchange) error {
	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		startTime := time.Now()

		// The exchange must be finished even if the client goes away
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ex.Dispatch(ctx)

		writeChunk := func(chunk llm.RevealChunk) {
			line, err := json.Marshal(chunk)
			if err != nil {
				s.logger.Error("failed to marshal chunk", zap.Error(err))
				return
			}
			w.Write(line)
			w.Write([]byte("\n"))
			if err := w.Flush(); err != nil {
				s.logger.Debug("client stopped reading", zap.Error(err))
				cancel()
			}
		}

		err := s.config.Pacer.Play(ctx, ex.Reveal(), func(f reveal.Frame) {
			writeChunk(llm.RevealChunk{Text: f.Text, Placeholder: f.Placeholder})
		})
		if err != nil {
			s.logger.Debug("reveal interrupted", zap.Error(err))
		}

		turn, err := ex.Finish()
		if err != nil {
			s.logger.Error("failed to record answer", zap.Error(err))
			return
		}

		payload := turn.Payload()
		writeChunk(llm.RevealChunk{Text: turn.Content, Done: true, Turn: &payload})

		s.logger.Debug("streaming complete",
			zap.String("answer_preview", logger.Preview(turn.Content, 100)),
			zap.Bool("fallback", turn.Fallback),
			zap.Duration("duration", time.Since(startTime)),
		)
	}))

	return nil
}

// handleClear empties the caller's conversation.
func (s *Server) handleClear(c *fiber.Ctx) error {
	if err := s.session(c).Clear(); err != nil {
		if errors.Is(err, session.ErrBusy) {
			return c.Status(fiber.StatusConflict).JSON(llm.ErrorResponse{Error: "a query is already pending"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleEndSession discards the caller's session and conversation.
func (s *Server) handleEndSession(c *fiber.Ctx) error {
	id := c.Get(SessionHeader)
	if id == "" {
		id = c.Cookies(SessionCookie)
	}
	if !s.sessions.end(id) {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "session not found"})
	}

	c.ClearCookie(SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
