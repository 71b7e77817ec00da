package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Strictness selects how array reassembly treats inconsistent input.
// Strict folding fails on the first inconsistency; warn folding reports
// it through the decoder's logger and keeps going.
type Strictness string

const (
	StrictArrays Strictness = "strict"
	WarnArrays   Strictness = "warn"
)

func (s Strictness) Validate() error {
	switch s {
	case StrictArrays, WarnArrays:
		return nil
	default:
		return fmt.Errorf("protocol: unknown strictness %q", string(s))
	}
}

// Decoder turns structured response records into typed maps, folding
// indexed element fields (name[i]) back into ordered arrays and
// checking them against their declared counts.
//
// The zero value folds strictly and logs nowhere.
type Decoder struct {
	Strictness Strictness
	Log        zerolog.Logger
}

func NewDecoder(strictness Strictness, log zerolog.Logger) Decoder {
	if strictness == "" {
		strictness = StrictArrays
	}
	return Decoder{Strictness: strictness, Log: log}
}

// Properties decodes a structured response into a PropertyMap. The
// no-data sentinel yields an empty map.
func (d Decoder) Properties(records []Record) (*PropertyMap, error) {
	m := NewPropertyMap()
	if NoData(records) {
		return m, nil
	}
	for _, rec := range records {
		name, value, err := DecodeField(rec)
		if err != nil {
			return nil, err
		}
		base, idx, ok := splitArrayKey(name)
		if !ok {
			m.Set(name, value)
			continue
		}
		entry, exists := m.entries[base]
		if !exists || !entry.IsArray {
			// First element: the array takes this position, displacing
			// any scalar of the same name.
			entry = Property{IsArray: true}
		}
		want := len(entry.Array) + 1
		if idx != want {
			cerr := ConsistencyError{Name: base, Reason: ConsistencyIndexOrder, Want: want, Got: idx}
			if d.Strictness != WarnArrays {
				return nil, cerr
			}
			d.warn(cerr)
		}
		entry.Array = append(entry.Array, value)
		m.put(base, entry)
	}
	if err := d.checkCounts(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Parameters decodes a structured response into a ParamMap, keeping
// each field's vary flag alongside its value.
func (d Decoder) Parameters(records []Record) (*ParamMap, error) {
	m := NewParamMap()
	if NoData(records) {
		return m, nil
	}
	for _, rec := range records {
		name, param, err := DecodeParam(rec)
		if err != nil {
			return nil, err
		}
		base, idx, ok := splitArrayKey(name)
		if !ok {
			m.Set(name, param)
			continue
		}
		entry, exists := m.entries[base]
		if !exists || !entry.IsArray {
			entry = ParamEntry{IsArray: true}
		}
		want := len(entry.Array) + 1
		if idx != want {
			cerr := ConsistencyError{Name: base, Reason: ConsistencyIndexOrder, Want: want, Got: idx}
			if d.Strictness != WarnArrays {
				return nil, cerr
			}
			d.warn(cerr)
		}
		entry.Array = append(entry.Array, param)
		m.put(base, entry)
	}
	if err := d.checkParamCounts(m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkCounts verifies every folded array against its declared count
// sibling (num_<name>s) and removes the sibling once checked.
func (d Decoder) checkCounts(m *PropertyMap) error {
	for _, name := range m.Names() {
		entry, ok := m.entries[name]
		if !ok || !entry.IsArray {
			continue
		}
		got := len(entry.Array)
		key := countKey(name)
		declared, ok := m.Value(key)
		if !ok || declared.Kind != KindInt {
			cerr := ConsistencyError{Name: name, Reason: ConsistencyCountMissing, Got: got}
			if d.Strictness != WarnArrays {
				return cerr
			}
			d.warn(cerr)
			continue
		}
		if declared.Int != int64(got) {
			cerr := ConsistencyError{Name: name, Reason: ConsistencyCountMismatch, Want: int(declared.Int), Got: got}
			if d.Strictness != WarnArrays {
				return cerr
			}
			d.warn(cerr)
		}
		m.Delete(key)
	}
	return nil
}

func (d Decoder) checkParamCounts(m *ParamMap) error {
	for _, name := range m.Names() {
		entry, ok := m.entries[name]
		if !ok || !entry.IsArray {
			continue
		}
		got := len(entry.Array)
		key := countKey(name)
		declared, ok := m.Param(key)
		if !ok || declared.Value.Kind != KindInt {
			cerr := ConsistencyError{Name: name, Reason: ConsistencyCountMissing, Got: got}
			if d.Strictness != WarnArrays {
				return cerr
			}
			d.warn(cerr)
			continue
		}
		if declared.Value.Int != int64(got) {
			cerr := ConsistencyError{Name: name, Reason: ConsistencyCountMismatch, Want: int(declared.Value.Int), Got: got}
			if d.Strictness != WarnArrays {
				return cerr
			}
			d.warn(cerr)
		}
		m.Delete(key)
	}
	return nil
}

func (d Decoder) warn(cerr ConsistencyError) {
	d.Log.Warn().
		Str("array", cerr.Name).
		Str("reason", cerr.Reason).
		Int("want", cerr.Want).
		Int("got", cerr.Got).
		Msg("protocol.fold inconsistent array")
}

// splitArrayKey recognizes element names of the form base[i]. Anything
// else, including non-integer indices, is a plain scalar name.
func splitArrayKey(name string) (string, int, bool) {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return "", 0, false
	}
	idx, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil {
		return "", 0, false
	}
	return name[:open], idx, true
}

func countKey(name string) string {
	return "num_" + name + "s"
}
