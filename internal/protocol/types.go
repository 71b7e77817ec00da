package protocol

import (
	"strconv"
	"strings"
)

// NoDataSentinel is the literal first field the engine emits when a
// structured query matched nothing.
const NoDataSentinel = "INVALID"

// Kind identifies the declared type tag of a response field.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindString
	KindInt
	KindReal
	KindLogical
	KindEnum
)

// ParseKind maps an engine kind tag to its Kind. Unrecognized tags map
// to KindUnknown; decoding then falls back to the tag text itself.
func ParseKind(tag string) Kind {
	switch tag {
	case "STR":
		return KindString
	case "INT":
		return KindInt
	case "REAL":
		return KindReal
	case "LOGIC":
		return KindLogical
	case "ENUM":
		return KindEnum
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindString:
		return "STR"
	case KindInt:
		return "INT"
	case KindReal:
		return "REAL"
	case KindLogical:
		return "LOGIC"
	case KindEnum:
		return "ENUM"
	default:
		return "UNKNOWN"
	}
}

// Value is a decoded field value.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Real  float64
	Logic bool
}

// Text renders the value the way the engine would print it.
func (v Value) Text() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case KindLogical:
		if v.Logic {
			return "T"
		}
		return "F"
	default:
		return v.Str
	}
}

// Parameter is a decoded value plus its vary flag. The flag marks
// quantities the engine permits the caller to change.
type Parameter struct {
	Value   Value
	CanVary bool
}

// Record is one response line split on the field delimiter.
type Record []string

// ParseRecord splits a raw response line into its fields.
func ParseRecord(line string) Record {
	return Record(strings.Split(line, ";"))
}

// NoData reports whether a structured response is the engine's
// "matched nothing" sentinel rather than a data table.
func NoData(records []Record) bool {
	return len(records) > 0 && len(records[0]) > 0 && records[0][0] == NoDataSentinel
}
