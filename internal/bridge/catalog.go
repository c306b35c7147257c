package bridge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yutashx/openapi-mcp-server/internal/common"
)

// methodOrder is the set of HTTP verbs that become tools, in the order
// operations are visited. The catalog and the operation index both walk
// methods in this order so collision handling agrees between them.
var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE"}

var nonNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
var pathSeparators = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ToolName derives the published tool name for one operation. It is a pure
// function of (method, path, operationId); the operation index recomputes
// it independently and the two must agree exactly.
func ToolName(method, path string, op *openapi3.Operation) string {
	if op != nil && op.OperationID != "" {
		return sanitizeName(op.OperationID)
	}
	return strings.ToLower(method) + "_" + collapsePath(path)
}

// sanitizeName replaces every character outside [A-Za-z0-9_] with an
// underscore. Idempotent: sanitizing a sanitized name is a no-op.
func sanitizeName(s string) string {
	return nonNameChars.ReplaceAllString(s, "_")
}

// collapsePath splits a URL path template on runs of non-alphanumerics and
// joins the segments with underscores: "/pets/{id}" becomes "pets_id".
func collapsePath(path string) string {
	segments := pathSeparators.Split(path, -1)
	parts := segments[:0]
	for _, seg := range segments {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "_")
}

// Builder converts OpenAPI operations into MCP tools.
type Builder struct {
	translator *Translator
	logger     *common.Logger
}

// NewBuilder creates a Builder reporting degraded conversions to the logger.
func NewBuilder(logger *common.Logger) *Builder {
	return &Builder{
		translator: NewTranslator(logger),
		logger:     logger,
	}
}

// BuildTools derives one MCP tool per (path, method) pair in the document.
// An empty or absent path map yields an empty catalog. When two operations
// sanitize to the same tool name the later one encountered overwrites the
// earlier, with a logged warning.
func (b *Builder) BuildTools(doc *openapi3.T) []mcp.Tool {
	if doc == nil || doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var tools []mcp.Tool
	byName := make(map[string]int)

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		for _, method := range methodOrder {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}

			name := ToolName(method, path, op)
			tool := mcp.NewToolWithRawSchema(name, describeOperation(method, path, op), b.buildInputSchema(name, op))

			if i, exists := byName[name]; exists {
				b.logger.Warn().
					Str("name", name).
					Str("method", method).
					Str("path", path).
					Msg("tool name collision, later operation overwrites earlier")
				tools[i] = tool
				continue
			}
			byName[name] = len(tools)
			tools = append(tools, tool)
		}
	}

	return tools
}

// describeOperation picks the tool description: summary, else description,
// else a synthesized fallback.
func describeOperation(method, path string, op *openapi3.Operation) string {
	if op.Summary != "" {
		return op.Summary
	}
	if op.Description != "" {
		return op.Description
	}
	return fmt.Sprintf("Perform %s on %s", method, path)
}

// buildInputSchema assembles the object schema for one tool from the
// operation's parameters and its JSON request body.
func (b *Builder) buildInputSchema(name string, op *openapi3.Operation) json.RawMessage {
	props := map[string]any{}
	var required []string

	for _, pref := range op.Parameters {
		if pref == nil || pref.Value == nil {
			b.logger.Warn().Str("tool", name).Msg("unresolved parameter reference, skipping")
			continue
		}
		p := pref.Value

		ps := b.translator.Translate(p.Schema)
		if ps == nil {
			ps = map[string]any{}
		}
		if _, ok := ps["description"]; !ok && p.Description != "" {
			ps["description"] = p.Description
		}
		annotateLocation(ps, p.In)

		props[p.Name] = ps
		if p.Required {
			required = append(required, p.Name)
		}
	}

	if rb := op.RequestBody; rb != nil && rb.Value != nil {
		if mt := jsonMediaType(rb.Value.Content); mt != nil {
			bs := b.translator.Translate(mt.Schema)
			if bs == nil {
				bs = map[string]any{}
			}
			if desc, _ := bs["description"].(string); desc == "" {
				if rb.Value.Description != "" {
					bs["description"] = rb.Value.Description
				} else {
					bs["description"] = "The request body (JSON)"
				}
			}
			props["requestBody"] = bs
			if rb.Value.Required {
				required = append(required, "requestBody")
			}
		} else {
			// Callers cannot submit a non-JSON body through this tool.
			b.logger.Warn().
				Str("tool", name).
				Str("content_types", strings.Join(contentTypeKeys(rb.Value.Content), ",")).
				Msg("request body has no application/json content, omitting from input schema")
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		// Marshalling a map of JSON-safe values cannot fail in practice.
		b.logger.Error().Str("tool", name).Str("error", err.Error()).Msg("failed to encode input schema")
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return raw
}

// annotateLocation appends "(in: {location})" to a property description,
// creating one if absent, so callers and the dispatcher both see where the
// argument is consumed.
func annotateLocation(schema map[string]any, in string) {
	if desc, _ := schema["description"].(string); desc != "" {
		schema["description"] = desc + " (in: " + in + ")"
		return
	}
	schema["description"] = "(in: " + in + ")"
}

// jsonMediaType returns the application/json entry of a content map,
// tolerating media-type parameters such as "; charset=utf-8".
func jsonMediaType(content openapi3.Content) *openapi3.MediaType {
	if mt, ok := content["application/json"]; ok {
		return mt
	}
	for key, mt := range content {
		if strings.HasPrefix(strings.ToLower(key), "application/json;") {
			return mt
		}
	}
	return nil
}

// contentTypeKeys lists a content map's media types in stable order.
func contentTypeKeys(content openapi3.Content) []string {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
