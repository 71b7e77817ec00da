package protocol

// Property is one entry of a PropertyMap: either a scalar value or a
// reassembled array.
type Property struct {
	IsArray bool
	Value   Value
	Array   []Value
}

// PropertyMap holds the decoded fields of one structured response in
// arrival order. Later duplicates overwrite earlier ones in place.
type PropertyMap struct {
	names   []string
	entries map[string]Property
}

func NewPropertyMap() *PropertyMap {
	return &PropertyMap{entries: make(map[string]Property)}
}

func (m *PropertyMap) Len() int {
	return len(m.names)
}

// Names returns the field names in arrival order.
func (m *PropertyMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *PropertyMap) Get(name string) (Property, bool) {
	p, ok := m.entries[name]
	return p, ok
}

// Value returns the scalar entry for name, if one exists.
func (m *PropertyMap) Value(name string) (Value, bool) {
	p, ok := m.entries[name]
	if !ok || p.IsArray {
		return Value{}, false
	}
	return p.Value, true
}

// Array returns the reassembled array entry for name, if one exists.
func (m *PropertyMap) Array(name string) ([]Value, bool) {
	p, ok := m.entries[name]
	if !ok || !p.IsArray {
		return nil, false
	}
	return p.Array, true
}

// Set inserts or overwrites a scalar entry, keeping the original
// position on overwrite.
func (m *PropertyMap) Set(name string, v Value) {
	m.put(name, Property{Value: v})
}

func (m *PropertyMap) Delete(name string) {
	if _, ok := m.entries[name]; !ok {
		return
	}
	delete(m.entries, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
}

func (m *PropertyMap) put(name string, p Property) {
	if _, ok := m.entries[name]; !ok {
		m.names = append(m.names, name)
	}
	m.entries[name] = p
}

// ParamMap is the parameter-table counterpart of PropertyMap.
type ParamMap struct {
	names   []string
	entries map[string]ParamEntry
}

// ParamEntry is one entry of a ParamMap: a scalar parameter or a
// reassembled parameter array.
type ParamEntry struct {
	IsArray bool
	Param   Parameter
	Array   []Parameter
}

func NewParamMap() *ParamMap {
	return &ParamMap{entries: make(map[string]ParamEntry)}
}

func (m *ParamMap) Len() int {
	return len(m.names)
}

func (m *ParamMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *ParamMap) Get(name string) (ParamEntry, bool) {
	p, ok := m.entries[name]
	return p, ok
}

func (m *ParamMap) Param(name string) (Parameter, bool) {
	p, ok := m.entries[name]
	if !ok || p.IsArray {
		return Parameter{}, false
	}
	return p.Param, true
}

func (m *ParamMap) Array(name string) ([]Parameter, bool) {
	p, ok := m.entries[name]
	if !ok || !p.IsArray {
		return nil, false
	}
	return p.Array, true
}

func (m *ParamMap) Set(name string, p Parameter) {
	m.put(name, ParamEntry{Param: p})
}

func (m *ParamMap) Delete(name string) {
	if _, ok := m.entries[name]; !ok {
		return
	}
	delete(m.entries, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
}

func (m *ParamMap) put(name string, p ParamEntry) {
	if _, ok := m.entries[name]; !ok {
		m.names = append(m.names, name)
	}
	m.entries[name] = p
}
