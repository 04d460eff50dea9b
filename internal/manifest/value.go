package manifest

// Value is an optional string field.
type Value struct {
	Str string
	Set bool
}

// Some returns a present Value.
func Some(s string) Value {
	return Value{Str: s, Set: true}
}

// None is the absent Value.
var None = Value{}

// IsSet reports whether the field is present and non-empty.
func (v Value) IsSet() bool {
	return v.Set && v.Str != ""
}

// Fields is an insertion-ordered map of YAML keys to decoded values.
// The zero value is empty and ready to use.
type Fields struct {
	keys   []string
	values map[string]any
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (f *Fields) Set(key string, value any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Delete removes key.
func (f *Fields) Delete(key string) {
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i:i], f.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	return len(f.keys)
}

// setValue stores v under key when present and removes key otherwise.
func (f *Fields) setValue(key string, v Value) {
	if v.Set {
		f.Set(key, v.Str)
		return
	}
	f.Delete(key)
}
