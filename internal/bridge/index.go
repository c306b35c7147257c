package bridge

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yutashx/openapi-mcp-server/internal/common"
)

// Entry binds a published tool name back to its source operation. Entries
// are built once and never mutated, so every dispatch may read them
// concurrently without synchronization.
type Entry struct {
	Path      string
	Method    string
	Operation *openapi3.Operation
}

// BuildIndex recomputes the tool naming rule over every operation in the
// document and keeps the entries whose name matches a published tool.
// Operations whose recomputed name has no published tool are dropped with
// a warning: no caller can ever address them.
//
// Paths and methods are walked in the same order as BuildTools so that a
// name collision binds the index to the same operation the catalog kept.
func BuildIndex(doc *openapi3.T, tools []mcp.Tool, logger *common.Logger) map[string]Entry {
	published := make(map[string]bool, len(tools))
	for _, t := range tools {
		published[t.Name] = true
	}

	index := make(map[string]Entry)
	if doc == nil || doc.Paths == nil {
		return index
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

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
			if !published[name] {
				logger.Warn().
					Str("name", name).
					Str("method", method).
					Str("path", path).
					Msg("operation has no published tool, dropping index entry")
				continue
			}
			index[name] = Entry{Path: path, Method: method, Operation: op}
		}
	}

	return index
}
