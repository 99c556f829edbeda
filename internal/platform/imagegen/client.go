// Package imagegen fetches illustrative pictures from a prompt-to-image HTTP
// service (Pollinations by default).
package imagegen

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/unicode/norm"

	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/httpx"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

const (
	DefaultBaseURL  = "https://image.pollinations.ai/prompt/"
	DefaultKeywords = "school classroom"
	DefaultWidth    = 600
	DefaultHeight   = 350
	DefaultTimeout  = 10 * time.Second

	userAgent     = "Mozilla/5.0"
	maxImageBytes = 10 << 20
	maxSeed       = 9999
)

type Config struct {
	BaseURL string
	Width   int
	Height  int
	Timeout time.Duration
	// Seed overrides the random seed; zero picks one per request.
	Seed int
}

type Client struct {
	log        *logger.Logger
	baseURL    string
	width      int
	height     int
	seed       int
	httpClient *http.Client

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewClient(log *logger.Logger, cfg Config) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		log:        log.With("service", "ImageGenClient"),
		baseURL:    baseURL,
		width:      cfg.Width,
		height:     cfg.Height,
		seed:       cfg.Seed,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sanitize reduces a free-text visual prompt to ASCII letters, digits and
// spaces. Accented letters are folded to their base letter first.
func Sanitize(keywords string) string {
	decomposed := norm.NFKD.String(keywords)
	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' '):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// URL builds the request URL for keywords; an empty sanitized phrase falls
// back to DefaultKeywords.
func (c *Client) URL(keywords string, seed int) string {
	phrase := Sanitize(keywords)
	if phrase == "" {
		phrase = DefaultKeywords
	}
	q := url.Values{}
	q.Set("width", fmt.Sprint(c.width))
	q.Set("height", fmt.Sprint(c.height))
	q.Set("nologo", "true")
	q.Set("seed", fmt.Sprint(seed))
	return c.baseURL + url.PathEscape(phrase) + "?" + q.Encode()
}

func (c *Client) nextSeed() int {
	if c.seed > 0 {
		return c.seed
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return 1 + c.rng.Intn(maxSeed)
}

// FetchImage downloads one generated image. Any non-200 status is an error;
// there are no retries.
func (c *Client) FetchImage(ctx context.Context, keywords string) (data []byte, err error) {
	seed := c.nextSeed()
	target := c.URL(keywords, seed)

	ctx, span := observability.StartSpan(ctx, "imagegen.fetch",
		attribute.Int("image.seed", seed),
	)
	defer func() { observability.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := httpx.ReadLimited(resp.Body, 1024)
		return nil, &httpx.StatusError{Service: "imagegen", StatusCode: resp.StatusCode, Body: httpx.Truncate(body, 256)}
	}
	data, err = httpx.ReadLimited(resp.Body, maxImageBytes)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch image: empty body")
	}
	c.log.Debug("image fetched", "bytes", len(data), "seed", seed)
	return data, nil
}
