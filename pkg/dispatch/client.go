package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/llm"
	"github.com/papercomputeco/lifeboat/pkg/logger"
)

// DefaultTimeout bounds the wait for the answer service.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Config is the dispatcher configuration.
type Config struct {
	// URL of the answer endpoint (e.g., "http://localhost:8000/ask")
	URL string

	// Timeout bounds each dispatch, including reading the response.
	Timeout time.Duration

	// Fallback is the text returned with Unavailable outcomes.
	Fallback string
}

// Dispatcher sends one query and reports the outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, query string) Outcome
}

// Client is a Dispatcher speaking JSON over HTTP.
type Client struct {
	config     Config
	logger     *zap.Logger
	httpClient *http.Client
}

// New creates a new Client.
func New(config Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(config.URL) == "" {
		return nil, errors.New("dispatch: answer service URL must not be empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Fallback == "" {
		config.Fallback = DefaultFallback
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Fallback returns the text used for Unavailable outcomes.
func (c *Client) Fallback() string {
	return c.config.Fallback
}

// Dispatch makes exactly one request to the answer service. It never
// returns an error: every failure becomes an Unavailable outcome whose cause
// is logged.
func (c *Client) Dispatch(ctx context.Context, query string) Outcome {
	startTime := time.Now()

	answer, err := c.ask(ctx, query)
	if err != nil {
		c.logger.Warn("answer service unavailable",
			zap.String("reason", string(ReasonOf(err))),
			zap.String("query_preview", logger.Preview(query, 50)),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
		return Outcome{Kind: Unavailable, Text: c.config.Fallback, Cause: err}
	}

	c.logger.Debug("received answer",
		zap.String("answer_preview", logger.Preview(answer, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return Outcome{Kind: Answered, Text: answer}
}

func (c *Client) ask(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", &Error{Reason: ReasonEmptyQuery}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reqBody, err := json.Marshal(llm.AskRequest{Query: query})
	if err != nil {
		return "", &Error{Reason: ReasonTransport, Err: fmt.Errorf("marshal request: %w", err)}
	}

	c.logger.Debug("dispatching query",
		zap.String("url", c.config.URL),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(reqBody))
	if err != nil {
		return "", &Error{Reason: ReasonTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Reason: classify(ctx, err), Err: fmt.Errorf("do request: %w", err)}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBody))
	if err != nil {
		return "", &Error{Reason: classify(ctx, err), Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", &Error{
			Reason: ReasonStatus,
			Err:    fmt.Errorf("answer service returned %d: %s", httpResp.StatusCode, logger.Preview(string(body), 200)),
		}
	}

	var resp llm.AskResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Reason: ReasonDecode, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if resp.Answer == nil {
		return "", &Error{Reason: ReasonMissingAnswer}
	}

	return *resp.Answer, nil
}

func classify(ctx context.Context, err error) Reason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}
