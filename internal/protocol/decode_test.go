package protocol

import (
	"errors"
	"strconv"
	"testing"
)

func TestDecodeFieldKinds(t *testing.T) {
	name, v, err := DecodeField(ParseRecord("IX_UNI;INT;F;2"))
	if err != nil {
		t.Fatalf("decode int: %v", err)
	}
	if name != "ix_uni" {
		t.Fatalf("expected lowercased name, got %q", name)
	}
	if v.Kind != KindInt || v.Int != 2 {
		t.Fatalf("unexpected int value: %+v", v)
	}

	_, v, err = DecodeField(ParseRecord("model;REAL;T;1.25e-01"))
	if err != nil {
		t.Fatalf("decode real: %v", err)
	}
	if v.Kind != KindReal || v.Real != 0.125 {
		t.Fatalf("unexpected real value: %+v", v)
	}

	_, v, err = DecodeField(ParseRecord("name;STR;F;Q01W"))
	if err != nil {
		t.Fatalf("decode str: %v", err)
	}
	if v.Kind != KindString || v.Str != "Q01W" {
		t.Fatalf("unexpected string value: %+v", v)
	}

	_, v, err = DecodeField(ParseRecord("draw_grid;LOGIC;T;T"))
	if err != nil {
		t.Fatalf("decode logic: %v", err)
	}
	if v.Kind != KindLogical || !v.Logic {
		t.Fatalf("unexpected logic value: %+v", v)
	}

	// Only a literal T reads true.
	for _, raw := range []string{"F", "maybe", ""} {
		_, v, err = DecodeField(Record{"flag", "LOGIC", "F", raw})
		if err != nil {
			t.Fatalf("decode logic %q: %v", raw, err)
		}
		if v.Kind != KindLogical || v.Logic {
			t.Fatalf("logic %q decoded true: %+v", raw, v)
		}
	}

	_, v, err = DecodeField(ParseRecord("graph^type;ENUM;T;data"))
	if err != nil {
		t.Fatalf("decode enum: %v", err)
	}
	if v.Kind != KindEnum || v.Str != "data" {
		t.Fatalf("unexpected enum value: %+v", v)
	}
}

func TestDecodeFieldUnknownKindFallsBack(t *testing.T) {
	name, v, err := DecodeField(ParseRecord("weights;REAL_ARR;F;0.1 0.2"))
	if err != nil {
		t.Fatalf("decode unknown kind: %v", err)
	}
	if name != "weights" {
		t.Fatalf("unexpected name: %q", name)
	}
	if v.Kind != KindString || v.Str != "REAL_ARR" {
		t.Fatalf("expected kind tag as value, got %+v", v)
	}

	// Unknown kinds carry no payload fields at all.
	if _, _, err := DecodeField(Record{"x", "COMPLEX"}); err != nil {
		t.Fatalf("decode short unknown record: %v", err)
	}
}

func TestDecodeFieldMalformed(t *testing.T) {
	if _, _, err := DecodeField(Record{"only"}); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected malformed record, got %v", err)
	}
	if _, _, err := DecodeField(Record{"a", "INT", "F"}); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected malformed record for missing value field, got %v", err)
	}
}

func TestDecodeFieldBadPayloads(t *testing.T) {
	_, _, err := DecodeField(ParseRecord("n;INT;F;abc"))
	var derr DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if derr.Name != "n" || derr.Kind != KindInt || derr.Raw != "abc" {
		t.Fatalf("unexpected decode error detail: %+v", derr)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Fatalf("expected wrapped syntax error, got %v", err)
	}

	if _, _, err := DecodeField(ParseRecord("x;REAL;F;zero")); !errors.As(err, &derr) {
		t.Fatalf("expected real decode error, got %v", err)
	}
}

func TestDecodeParamVaryFlag(t *testing.T) {
	name, p, err := DecodeParam(ParseRecord("model;REAL;T;3.5"))
	if err != nil {
		t.Fatalf("decode param: %v", err)
	}
	if name != "model" {
		t.Fatalf("unexpected name: %q", name)
	}
	if !p.CanVary {
		t.Fatalf("expected vary flag set")
	}
	if p.Value.Kind != KindReal || p.Value.Real != 3.5 {
		t.Fatalf("unexpected param value: %+v", p.Value)
	}

	_, p, err = DecodeParam(ParseRecord("base;REAL;F;3.5"))
	if err != nil {
		t.Fatalf("decode fixed param: %v", err)
	}
	if p.CanVary {
		t.Fatalf("expected vary flag clear")
	}
}

func TestExtractList(t *testing.T) {
	records := []Record{
		ParseRecord("1;beta.plot"),
		ParseRecord("2;orbit.plot"),
		ParseRecord("3;dispersion"),
	}
	got, err := ExtractList(records)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected list length: %d", len(got))
	}
	if got[0] != "beta.plot" || got[1] != "orbit.plot" || got[2] != "dispersion" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestExtractListNoData(t *testing.T) {
	records := []Record{ParseRecord("INVALID")}
	got, err := ExtractList(records)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestExtractListMalformed(t *testing.T) {
	records := []Record{ParseRecord("1;beta.plot;extra")}
	if _, err := ExtractList(records); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected malformed record, got %v", err)
	}
}

func TestNoData(t *testing.T) {
	if !NoData([]Record{ParseRecord("INVALID")}) {
		t.Fatalf("expected no-data sentinel")
	}
	if NoData([]Record{ParseRecord("invalid")}) {
		t.Fatalf("sentinel must be exact")
	}
	if NoData(nil) {
		t.Fatalf("empty response is not the sentinel")
	}
}
