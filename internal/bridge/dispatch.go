package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yutashx/openapi-mcp-server/internal/common"
	"github.com/yutashx/openapi-mcp-server/internal/config"
)

// defaultMaxResponse caps upstream response bodies when no limit is
// configured, preventing OOM from unexpectedly large responses.
const defaultMaxResponse = 50 << 20 // 50MB

// Dispatcher resolves tool invocations into HTTP requests against the
// configured upstream API and normalizes responses into MCP results.
//
// The operation index is built once at construction and never mutated, so
// overlapping invocations read it without locking.
type Dispatcher struct {
	baseURL      string
	client       *http.Client
	index        map[string]Entry
	extraHeaders map[string]string
	maxResponse  int64
	logger       *common.Logger
}

// NewDispatcher builds a Dispatcher for the given document and published
// tool list. cfg.BaseURL must already be validated as an absolute URL.
func NewDispatcher(doc *openapi3.T, tools []mcp.Tool, cfg config.UpstreamConfig, logger *common.Logger) *Dispatcher {
	maxResponse := int64(cfg.MaxResponseMB) << 20
	if maxResponse <= 0 {
		maxResponse = defaultMaxResponse
	}
	return &Dispatcher{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		client:       &http.Client{Timeout: cfg.GetTimeout()},
		index:        BuildIndex(doc, tools, logger),
		extraHeaders: cfg.Headers,
		maxResponse:  maxResponse,
		logger:       logger,
	}
}

// Invoke resolves a tool name and argument bag into an HTTP request,
// executes it, and folds the response into an MCP result. Dispatch-layer
// failures (unknown tool, missing arguments, unsupported body encoding,
// network errors) return an error; an HTTP error status is a successful
// dispatch whose result carries the error flag.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	entry, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	logger := d.logger.WithCorrelationId(uuid.NewString())

	req, err := d.buildRequest(ctx, logger, entry, args)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("tool", name).Str("method", entry.Method).Str("url", req.URL.String()).Msg("dispatching tool call")

	start := time.Now()
	resp, err := d.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.Error().
			Str("tool", name).
			Int64("duration_ms", duration.Milliseconds()).
			Str("error", err.Error()).
			Msg("upstream request failed")
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("upstream response")

	return d.normalizeResponse(resp), nil
}

// buildRequest applies the argument bag to the operation's path, query,
// header, and body slots and assembles the outbound HTTP request.
func (d *Dispatcher) buildRequest(ctx context.Context, logger *common.Logger, entry Entry, args map[string]any) (*http.Request, error) {
	for _, pref := range entry.Operation.Parameters {
		if pref == nil || pref.Value == nil || !pref.Value.Required {
			continue
		}
		if v, ok := args[pref.Value.Name]; !ok || v == nil {
			return nil, &InvalidArgumentsError{Name: pref.Value.Name}
		}
	}

	path := entry.Path
	query := url.Values{}
	headers := http.Header{}

	for _, pref := range entry.Operation.Parameters {
		if pref == nil || pref.Value == nil {
			continue
		}
		p := pref.Value
		v, ok := args[p.Name]
		if !ok || v == nil {
			continue
		}

		switch p.In {
		case openapi3.ParameterInPath:
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(stringifyArg(v)))
		case openapi3.ParameterInQuery:
			if arr, isArray := v.([]any); isArray {
				// Arrays become repeated same-named query entries.
				for _, el := range arr {
					query.Add(p.Name, stringifyArg(el))
				}
			} else {
				query.Set(p.Name, stringifyArg(v))
			}
		case openapi3.ParameterInHeader:
			headers.Set(p.Name, stringifyArg(v))
		case openapi3.ParameterInCookie:
			// Cookie parameters are unsupported: dropped, not placed.
			logger.Warn().Str("parameter", p.Name).Msg("cookie parameters are not supported, dropping argument")
		}
	}

	var bodyReader io.Reader
	contentType := ""
	if rb := entry.Operation.RequestBody; rb != nil && rb.Value != nil {
		bodyVal, supplied := args["requestBody"]
		if rb.Value.Required && (!supplied || bodyVal == nil) {
			return nil, &InvalidArgumentsError{Name: "requestBody"}
		}
		if supplied && bodyVal != nil {
			if jsonMediaType(rb.Value.Content) == nil {
				return nil, &UnsupportedContentTypeError{ContentTypes: contentTypeKeys(rb.Value.Content)}
			}
			data, err := json.Marshal(bodyVal)
			if err != nil {
				return nil, &InvalidArgumentsError{Name: "requestBody"}
			}
			bodyReader = bytes.NewReader(data)
			contentType = "application/json"
		}
	}

	fullURL := d.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, entry.Method, fullURL, bodyReader)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	for k, v := range d.extraHeaders {
		req.Header.Set(k, v)
	}
	// Header parameters land after configured headers so tool arguments win.
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// normalizeResponse folds an HTTP response into a single textual MCP result
// containing the status line, a flat header map, and the (pretty-printed
// when JSON) body. A non-2xx status sets the error flag but is still a
// successful dispatch, distinct from a network-level failure.
func (d *Dispatcher) normalizeResponse(resp *http.Response) *mcp.CallToolResult {
	var body string
	raw, err := io.ReadAll(io.LimitReader(resp.Body, d.maxResponse))
	if err != nil {
		body = fmt.Sprintf("(response body could not be read: %v)", err)
	} else {
		body = string(raw)
		if isJSONContentType(resp.Header.Get("Content-Type")) {
			var buf bytes.Buffer
			if json.Indent(&buf, raw, "", "  ") == nil {
				body = buf.String()
			}
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	headerJSON, _ := json.Marshal(headers)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", resp.Status)
	fmt.Fprintf(&sb, "Headers: %s\n\n", headerJSON)
	sb.WriteString(body)

	succeeded := resp.StatusCode >= 200 && resp.StatusCode < 300
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(sb.String())},
		IsError: !succeeded,
	}
}

// isJSONContentType reports whether a Content-Type header value denotes a
// JSON payload, including +json structured suffixes.
func isJSONContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
