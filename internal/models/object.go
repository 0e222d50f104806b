package models

// Object is an insertion-ordered JSON object.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns a copy of the keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Index returns the position of key, or -1.
func (o *Object) Index(key string) int {
	if !o.Has(key) {
		return -1
	}
	for i, k := range o.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Set stores val under key. New keys go to the end; existing keys keep
// their position.
func (o *Object) Set(key string, val Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = val
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i := o.Index(key)
	if i < 0 {
		return false
	}
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	delete(o.values, key)
	return true
}

// Rename moves the value under oldKey to newKey, keeping its position.
// A member already stored under newKey is dropped.
func (o *Object) Rename(oldKey, newKey string) bool {
	i := o.Index(oldKey)
	if i < 0 {
		return false
	}
	if oldKey == newKey {
		return true
	}
	val := o.values[oldKey]
	if o.Has(newKey) {
		o.Delete(newKey)
		i = o.Index(oldKey)
	}
	delete(o.values, oldKey)
	o.keys[i] = newKey
	o.values[newKey] = val
	return true
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]Value, len(o.values)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.values {
		c.values[k] = v.Clone()
	}
	return c
}
