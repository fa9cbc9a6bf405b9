package csvexport

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is a flat row whose keys keep insertion order.
// That order is the "natural" column order used when no explicit columns
// are given.
type Record struct {
	fields []Field
}

// NewRecord builds a record from fields, in the given order.
func NewRecord(fields ...Field) Record {
	r := Record{}
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Set assigns value to key. A new key is appended; an existing key keeps its position.
func (r *Record) Set(key string, value any) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// Get returns the value of key and whether it is present.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in insertion order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}
