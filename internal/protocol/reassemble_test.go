package protocol

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func strictDecoder() Decoder {
	return NewDecoder(StrictArrays, zerolog.Nop())
}

func warnDecoder() Decoder {
	return NewDecoder(WarnArrays, zerolog.Nop())
}

func TestStrictnessValidate(t *testing.T) {
	if err := StrictArrays.Validate(); err != nil {
		t.Fatalf("strict: %v", err)
	}
	if err := WarnArrays.Validate(); err != nil {
		t.Fatalf("warn: %v", err)
	}
	if err := Strictness("loose").Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestPropertiesFoldsArray(t *testing.T) {
	records := []Record{
		ParseRecord("num_curves;INT;F;2"),
		ParseRecord("curve[1];STR;F;orbit.x"),
		ParseRecord("curve[2];STR;F;orbit.y"),
	}
	m, err := strictDecoder().Properties(records)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("unexpected map size: %d names=%+v", m.Len(), m.Names())
	}
	if _, ok := m.Value("num_curves"); ok {
		t.Fatalf("count field must be removed after the check")
	}
	curves, ok := m.Array("curve")
	if !ok {
		t.Fatalf("expected folded curve array")
	}
	if len(curves) != 2 || curves[0].Str != "orbit.x" || curves[1].Str != "orbit.y" {
		t.Fatalf("unexpected curve array: %+v", curves)
	}
}

func TestPropertiesIndexGapStrict(t *testing.T) {
	records := []Record{
		ParseRecord("num_curves;INT;F;2"),
		ParseRecord("curve[1];STR;F;a"),
		ParseRecord("curve[3];STR;F;b"),
	}
	_, err := strictDecoder().Properties(records)
	var cerr ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected consistency error, got %v", err)
	}
	if cerr.Name != "curve" || cerr.Reason != ConsistencyIndexOrder {
		t.Fatalf("unexpected consistency detail: %+v", cerr)
	}
	if cerr.Want != 2 || cerr.Got != 3 {
		t.Fatalf("unexpected index detail: %+v", cerr)
	}
}

func TestPropertiesIndexGapWarnProceeds(t *testing.T) {
	records := []Record{
		ParseRecord("num_curves;INT;F;2"),
		ParseRecord("curve[1];STR;F;a"),
		ParseRecord("curve[3];STR;F;b"),
	}
	m, err := warnDecoder().Properties(records)
	if err != nil {
		t.Fatalf("warn fold must proceed: %v", err)
	}
	curves, ok := m.Array("curve")
	if !ok || len(curves) != 2 {
		t.Fatalf("expected both elements kept, got %+v", curves)
	}
}

func TestPropertiesCountMismatch(t *testing.T) {
	records := []Record{
		ParseRecord("num_curves;INT;F;3"),
		ParseRecord("curve[1];STR;F;a"),
		ParseRecord("curve[2];STR;F;b"),
	}
	_, err := strictDecoder().Properties(records)
	var cerr ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected consistency error, got %v", err)
	}
	if cerr.Reason != ConsistencyCountMismatch || cerr.Want != 3 || cerr.Got != 2 {
		t.Fatalf("unexpected consistency detail: %+v", cerr)
	}
}

func TestPropertiesCountMissing(t *testing.T) {
	records := []Record{
		ParseRecord("curve[1];STR;F;a"),
	}
	_, err := strictDecoder().Properties(records)
	var cerr ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected consistency error, got %v", err)
	}
	if cerr.Reason != ConsistencyCountMissing {
		t.Fatalf("unexpected consistency detail: %+v", cerr)
	}

	m, err := warnDecoder().Properties(records)
	if err != nil {
		t.Fatalf("warn fold must proceed: %v", err)
	}
	if _, ok := m.Array("curve"); !ok {
		t.Fatalf("expected folded array despite missing count")
	}
}

func TestPropertiesOrderPreserved(t *testing.T) {
	records := []Record{
		ParseRecord("name;STR;F;g1"),
		ParseRecord("num_curves;INT;F;1"),
		ParseRecord("curve[1];STR;F;a"),
		ParseRecord("title;STR;F;orbit"),
	}
	m, err := strictDecoder().Properties(records)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	names := m.Names()
	if len(names) != 3 || names[0] != "name" || names[1] != "curve" || names[2] != "title" {
		t.Fatalf("unexpected name order: %+v", names)
	}
}

func TestPropertiesDuplicateOverwrites(t *testing.T) {
	records := []Record{
		ParseRecord("units;STR;F;m"),
		ParseRecord("title;STR;F;one"),
		ParseRecord("units;STR;F;mm"),
	}
	m, err := strictDecoder().Properties(records)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	v, ok := m.Value("units")
	if !ok || v.Str != "mm" {
		t.Fatalf("expected later duplicate to win, got %+v", v)
	}
	names := m.Names()
	if len(names) != 2 || names[0] != "units" {
		t.Fatalf("duplicate must keep its original position: %+v", names)
	}
}

func TestPropertiesNoData(t *testing.T) {
	m, err := strictDecoder().Properties([]Record{ParseRecord("INVALID")})
	if err != nil {
		t.Fatalf("no-data fold: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty map, got %+v", m.Names())
	}
}

func TestParametersFoldsArray(t *testing.T) {
	records := []Record{
		ParseRecord("num_knots;INT;F;2"),
		ParseRecord("knot[1];REAL;T;1.0"),
		ParseRecord("knot[2];REAL;T;2.5"),
		ParseRecord("units;STR;F;m"),
	}
	m, err := strictDecoder().Parameters(records)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	knots, ok := m.Array("knot")
	if !ok || len(knots) != 2 {
		t.Fatalf("expected folded knots, got %+v", knots)
	}
	if !knots[0].CanVary || knots[0].Value.Real != 1.0 {
		t.Fatalf("unexpected knot: %+v", knots[0])
	}
	if _, ok := m.Param("num_knots"); ok {
		t.Fatalf("count field must be removed after the check")
	}
	units, ok := m.Param("units")
	if !ok || units.CanVary || units.Value.Str != "m" {
		t.Fatalf("unexpected units param: %+v", units)
	}
}

func TestParametersCountMismatch(t *testing.T) {
	records := []Record{
		ParseRecord("num_knots;INT;F;5"),
		ParseRecord("knot[1];REAL;T;1.0"),
	}
	_, err := strictDecoder().Parameters(records)
	var cerr ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected consistency error, got %v", err)
	}
	if cerr.Name != "knot" || cerr.Reason != ConsistencyCountMismatch {
		t.Fatalf("unexpected consistency detail: %+v", cerr)
	}
}

func TestSplitArrayKey(t *testing.T) {
	base, idx, ok := splitArrayKey("curve[12]")
	if !ok || base != "curve" || idx != 12 {
		t.Fatalf("unexpected split: %q %d %v", base, idx, ok)
	}
	for _, name := range []string{"curve", "curve[]", "curve[a]", "[1]", "curve[1]x"} {
		if _, _, ok := splitArrayKey(name); ok {
			t.Fatalf("%q must not parse as an array key", name)
		}
	}
}
