package bridge

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// stringifyArg renders one argument value for placement in a URL path,
// query string, or header. Arguments arrive as decoded JSON, so the closed
// set of shapes is {nil, bool, float64, string, []any, map[string]any};
// anything else falls through to fmt.
func stringifyArg(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case []any, map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
