package bridge

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/yutashx/openapi-mcp-server/internal/common"
)

// Translator converts OpenAPI schema nodes into the JSON-Schema fragments
// published in MCP tool input schemas.
type Translator struct {
	logger *common.Logger
}

// NewTranslator creates a Translator that reports degraded translations
// through the given logger.
func NewTranslator(logger *common.Logger) *Translator {
	return &Translator{logger: logger}
}

// Translate maps one OpenAPI schema node to a tool-protocol schema node.
// A nil input yields nil: "no schema" means accept anything, and callers
// omit the property rather than treating it as an error. Translation never
// fails — a node that cannot be represented degrades to an unconstrained
// schema with a logged warning.
func (t *Translator) Translate(ref *openapi3.SchemaRef) map[string]any {
	if ref == nil {
		return nil
	}
	if ref.Value == nil {
		// The document arrives fully dereferenced; an unresolved pointer
		// degrades this one node to accept-anything instead of aborting
		// tool generation.
		t.logger.Warn().Str("ref", ref.Ref).Msg("unresolved schema reference, accepting any value")
		return map[string]any{}
	}

	s := ref.Value
	out := map[string]any{}

	switch {
	case s.Type.Is(openapi3.TypeInteger):
		out["type"] = "integer"
	case s.Type.Is(openapi3.TypeNumber):
		out["type"] = "number"
	case s.Type.Is(openapi3.TypeBoolean):
		out["type"] = "boolean"
	case s.Type.Is(openapi3.TypeString):
		out["type"] = "string"
		if s.Format == "byte" || s.Format == "binary" {
			if s.Description != "" {
				out["description"] = s.Description + " (base64-encoded binary data)"
			} else {
				out["description"] = "Base64-encoded binary data"
			}
		}
		if len(s.Enum) > 0 {
			out["enum"] = s.Enum
		}
	case s.Type.Is(openapi3.TypeArray):
		out["type"] = "array"
		// An absent item schema leaves the array unconstrained; an
		// unresolved item reference degrades (with its own warning) to an
		// accept-anything items schema inside the recursion.
		if items := t.Translate(s.Items); items != nil {
			out["items"] = items
		}
	case s.Type.Is(openapi3.TypeObject):
		props := map[string]any{}
		for name, pref := range s.Properties {
			ps := t.Translate(pref)
			if ps == nil {
				t.logger.Warn().Str("property", name).Msg("property schema could not be translated, dropping property")
				continue
			}
			props[name] = ps
		}
		out["type"] = "object"
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
	default:
		// Unrecognized kinds become unconstrained schemas rather than
		// failing the containing tool.
		t.logger.Warn().Str("type", typeString(s.Type)).Msg("unrecognized schema type, accepting any value")
	}

	if s.Description != "" {
		if _, ok := out["description"]; !ok {
			out["description"] = s.Description
		}
	}
	if s.Default != nil {
		out["default"] = s.Default
	}

	return out
}

// typeString renders an OpenAPI type list for log output.
func typeString(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	return strings.Join(types.Slice(), ",")
}
