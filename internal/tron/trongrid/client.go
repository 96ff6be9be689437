package trongrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/chain"
	"github.com/goodnatureofminers/hashroad-backend/pkg/safe"
	"go.uber.org/ratelimit"
)

const (
	// DefaultURL is the public TronGrid mainnet endpoint.
	DefaultURL = "https://api.trongrid.io"

	apiKeyHeader = "TRON-PRO-API-KEY"

	getNowBlockPath   = "/wallet/getnowblock"
	getBlockByNumPath = "/wallet/getblockbynum"

	maxErrorBody = 512
)

// Client implements chain.Source against TronGrid.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rl         ratelimit.Limiter
}

// NewClient constructs a TronGrid client issuing at most rps requests per second.
func NewClient(rawURL, apiKey string, timeout time.Duration, rps int) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("trongrid api key is required: %w", chain.ErrAuth)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse trongrid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("trongrid url scheme %q not supported", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("trongrid url missing host")
	}

	rl := ratelimit.NewUnlimited()
	if rps > 0 {
		rl = ratelimit.New(rps)
	}

	return &Client{
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		rl:         rl,
	}, nil
}

// Head returns the latest produced block.
func (c *Client) Head(ctx context.Context) (*chain.Block, error) {
	var resp blockResponse
	if err := c.post(ctx, getNowBlockPath, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("get now block: %w", err)
	}
	if resp.BlockID == "" {
		return nil, fmt.Errorf("get now block: missing blockID: %w", chain.ErrMalformedResponse)
	}
	return convertBlock(resp)
}

// BlockByHeight returns the block produced at height.
func (c *Client) BlockByHeight(ctx context.Context, height uint64) (*chain.Block, error) {
	num, err := safe.Int64(height)
	if err != nil {
		return nil, fmt.Errorf("block height %d: %w", height, chain.ErrNotFound)
	}

	var resp blockResponse
	if err := c.post(ctx, getBlockByNumPath, blockByNumRequest{Num: num}, &resp); err != nil {
		return nil, fmt.Errorf("get block %d: %w", height, err)
	}
	if resp.BlockID == "" {
		return nil, fmt.Errorf("get block %d: %w", height, chain.ErrNotFound)
	}

	block, err := convertBlock(resp)
	if err != nil {
		return nil, fmt.Errorf("get block %d: %w", height, err)
	}
	if block.Height != height {
		return nil, fmt.Errorf("get block %d: got height %d: %w", height, block.Height, chain.ErrMalformedResponse)
	}
	return block, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out *blockResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set(apiKeyHeader, c.apiKey)

	c.rl.Take()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", chain.ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("http status %d: %w", resp.StatusCode, chain.ErrAuth)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("http status %d %q: %w", resp.StatusCode, strings.TrimSpace(string(snippet)), chain.ErrNetwork)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", chain.ErrMalformedResponse, err)
	}
	if out.Error != "" {
		return fmt.Errorf("upstream error %q: %w", out.Error, chain.ErrNetwork)
	}
	return nil
}
