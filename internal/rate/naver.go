package rate

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"

	"exchange-diary/internal/config"
)

// NaverSource scrapes the USD/KRW rate off the Naver mobile marketindex
// page. The value sits in a <strong> located by an absolute XPath; the page
// serves a different layout without a desktop User-Agent, so both are
// configured rather than hardcoded.
type NaverSource struct {
	HTTP   *http.Client
	Logger *zap.Logger

	Endpoint  string
	XPath     string
	UserAgent string
}

func NewNaverSource(cfg config.RateConfig, logger *zap.Logger) *NaverSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NaverSource{
		HTTP:      &http.Client{Timeout: timeout},
		Logger:    logger,
		Endpoint:  cfg.Endpoint,
		XPath:     cfg.XPath,
		UserAgent: cfg.UserAgent,
	}
}

func (s *NaverSource) Fetch(ctx context.Context) (float64, error) {
	rate, err := s.fetch(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("rate fetch failed", zap.Error(err))
		}
		return 0, ErrUnavailable
	}
	return rate, nil
}

func (s *NaverSource) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint, nil)
	if err != nil {
		return 0, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.HTTP
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := htmlquery.Parse(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse html: %w", err)
	}
	nodes, err := htmlquery.QueryAll(doc, s.XPath)
	if err != nil {
		return 0, fmt.Errorf("xpath %q: %w", s.XPath, err)
	}
	if len(nodes) == 0 {
		return 0, fmt.Errorf("xpath %q matched nothing", s.XPath)
	}

	text := strings.TrimSpace(htmlquery.InnerText(nodes[0]))
	text = strings.ReplaceAll(text, ",", "")
	rate, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rate %q: %w", text, err)
	}
	return rate, nil
}
