package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wgamage/actextract/constants"
	"github.com/wgamage/actextract/internal/common"
)

// Config holds the client configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Mode    constants.Mode
}

// Client calls the generative-language REST API. One extraction is
// upload → generateContent against the uploaded file → delete.
type Client struct {
	cfg        Config
	req        Request
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		req:        RequestForMode(cfg.Mode),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Extract runs one chunk through the service and returns its payload.
// The uploaded remote file is deleted whether or not extraction
// succeeds; a failed delete is logged and never fails the extraction.
func (c *Client) Extract(ctx context.Context, filename string, data []byte) ([]byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.log.Info("gemini.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"file", filename,
		"bytes", len(data),
		"structured", c.req.ResponseSchema != nil,
	)

	mime := c.req.MIMEType
	if mime == "" {
		mime = "application/pdf"
	}

	file, err := c.uploadFile(ctx, filename, mime, data)
	if err != nil {
		c.log.Error("gemini.upload.error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	c.log.Debug("gemini.upload.ok", "req_id", rid, "remote_file", file.Name)
	defer func() {
		if derr := c.deleteFile(context.WithoutCancel(ctx), file.Name); derr != nil {
			c.log.Warn("gemini.file.delete_failed",
				"req_id", rid, "remote_file", file.Name, "error", derr)
		}
	}()

	payload, err := c.generate(ctx, mime, file.URI)
	if err != nil {
		c.log.Error("gemini.extract.error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	out := []byte(stripCodeBlock(string(payload)))
	c.log.Info("gemini.extract.ok",
		"req_id", rid,
		"payload_bytes", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

type remoteFile struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

func (c *Client) uploadFile(ctx context.Context, filename, mime string, data []byte) (*remoteFile, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/upload/v1beta/files?key=" + url.QueryEscape(c.cfg.APIKey)
	headers := map[string]string{
		"X-Goog-Upload-Protocol": "raw",
		"X-Goog-File-Name":       filename,
		"Content-Type":           mime,
	}
	status, body, err := c.do(ctx, http.MethodPost, endpoint, headers, data)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, classifyStatus(status, body)
	}
	var ur struct {
		File remoteFile `json:"file"`
	}
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if ur.File.URI == "" {
		return nil, fmt.Errorf("upload response missing file uri")
	}
	return &ur.File, nil
}

func (c *Client) generate(ctx context.Context, mime, fileURI string) ([]byte, error) {
	body := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{
				{"file_data": map[string]any{"mime_type": mime, "file_uri": fileURI}},
				{"text": c.req.Instructions},
			},
		}},
	}
	if c.req.ResponseSchema != nil {
		body["generationConfig"] = map[string]any{
			"responseMimeType": c.req.ResponseMIME,
			"responseSchema":   c.req.ResponseSchema,
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/models/" + c.cfg.Model +
		":generateContent?key=" + url.QueryEscape(c.cfg.APIKey)
	status, respBody, err := c.do(ctx, http.MethodPost, endpoint, map[string]string{"Content-Type": "application/json"}, b)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, classifyStatus(status, respBody)
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in gemini response")
	}
	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("empty candidate in gemini response")
	}
	return []byte(sb.String()), nil
}

func (c *Client) deleteFile(ctx context.Context, name string) error {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/" + name + "?key=" + url.QueryEscape(c.cfg.APIKey)
	status, body, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("delete status %d: %s", status, truncate(string(body), 200))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, headers map[string]string, body []byte) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("gemini http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if cerr := rc.Close(); cerr != nil {
			c.log.Warn("gemini response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, buf.Bytes(), nil
}
