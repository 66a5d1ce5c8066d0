package models

// Entry is one key/value pair of an Object.
type Entry struct {
	Key   string
	Value *Value
}

// Object is an insertion-ordered map from Name to Value.
//
// Setting a key that already exists replaces its value and keeps the key at
// its original position, so the last write wins.
type Object struct {
	keys   []string
	values map[string]*Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]*Value)}
}

// Set stores v under key.
func (o *Object) Set(key string, v *Value) {
	if v == nil {
		v = Null()
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Entries returns the entries in insertion order.
func (o *Object) Entries() []Entry {
	if o == nil {
		return nil
	}
	out := make([]Entry, len(o.keys))
	for i, k := range o.keys {
		out[i] = Entry{Key: k, Value: o.values[k]}
	}
	return out
}
