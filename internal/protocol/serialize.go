package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// JoinArgs renders a heterogeneous argument list as a single command
// string. Floats keep full precision in scientific notation so the
// engine re-reads exactly the value the caller held; booleans use the
// engine's T/F spelling.
func JoinArgs(args ...any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatArg(arg)
	}
	return strings.Join(parts, " ")
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case bool:
		if v {
			return "T"
		}
		return "F"
	case float64:
		return strconv.FormatFloat(v, 'e', 15, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'e', 15, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(arg)
	}
}
