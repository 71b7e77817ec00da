package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Record layout for structured responses: field 0 is the name, field 1
// the kind tag, field 2 the vary flag, field 3 the raw value.
const (
	fieldName  = 0
	fieldKind  = 1
	fieldVary  = 2
	fieldValue = 3
)

// DecodeField decodes one response record into a lowercased name and a
// typed value. Unrecognized kind tags never fail: the tag text itself
// becomes a string value.
func DecodeField(rec Record) (string, Value, error) {
	if len(rec) <= fieldKind {
		return "", Value{}, fmt.Errorf("%w: want at least %d fields, got %d", ErrMalformedRecord, fieldKind+1, len(rec))
	}
	name := strings.ToLower(rec[fieldName])
	kind := ParseKind(rec[fieldKind])
	if kind == KindUnknown {
		return name, Value{Kind: KindString, Str: rec[fieldKind]}, nil
	}
	if len(rec) <= fieldValue {
		return "", Value{}, fmt.Errorf("%w: %s field %q: want %d fields, got %d",
			ErrMalformedRecord, kind, name, fieldValue+1, len(rec))
	}
	raw := rec[fieldValue]

	switch kind {
	case KindString:
		return name, Value{Kind: KindString, Str: raw}, nil
	case KindEnum:
		return name, Value{Kind: KindEnum, Str: raw}, nil
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return "", Value{}, DecodeError{Name: name, Kind: kind, Raw: raw, Err: err}
		}
		return name, Value{Kind: KindInt, Int: n}, nil
	case KindReal:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return "", Value{}, DecodeError{Name: name, Kind: kind, Raw: raw, Err: err}
		}
		return name, Value{Kind: KindReal, Real: f}, nil
	case KindLogical:
		// The engine prints T for true; anything else reads false.
		return name, Value{Kind: KindLogical, Logic: raw == "T"}, nil
	default:
		return "", Value{}, fmt.Errorf("%w: unhandled kind %s", ErrMalformedRecord, kind)
	}
}

// DecodeParam decodes one record as a settable parameter: the typed
// value plus the vary flag from field 2.
func DecodeParam(rec Record) (string, Parameter, error) {
	name, value, err := DecodeField(rec)
	if err != nil {
		return "", Parameter{}, err
	}
	p := Parameter{Value: value}
	if len(rec) > fieldVary {
		p.CanVary = rec[fieldVary] == "T"
	}
	return name, p, nil
}

// ExtractList interprets each record as an (index, value) pair and
// returns the values in response order. The no-data sentinel yields an
// empty list.
func ExtractList(records []Record) ([]string, error) {
	if NoData(records) {
		return nil, nil
	}
	values := make([]string, 0, len(records))
	for i, rec := range records {
		if len(rec) != 2 {
			return nil, fmt.Errorf("%w: list row %d: want 2 fields, got %d", ErrMalformedRecord, i+1, len(rec))
		}
		values = append(values, rec[1])
	}
	return values, nil
}
