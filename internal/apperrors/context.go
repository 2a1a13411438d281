package apperrors

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context is a string keyed map that remembers insertion order.
// It marshals to a JSON object with keys in the order they were first set.
type Context struct {
	keys   []string
	values map[string]interface{}
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{values: make(map[string]interface{})}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (c *Context) Set(key string, value interface{}) *Context {
	if c.values == nil {
		c.values = make(map[string]interface{})
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
	return c
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (c *Context) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of entries.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Merge copies every entry of other into c.
func (c *Context) Merge(other *Context) *Context {
	if other == nil {
		return c
	}
	for _, k := range other.keys {
		c.Set(k, other.values[k])
	}
	return c
}

// MarshalJSON implements json.Marshaler.
func (c *Context) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the key order of the
// top level object. Nested values decode as plain interface{} values.
func (c *Context) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = Context{values: make(map[string]interface{})}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("apperrors: context must be a JSON object, got %v", tok)
	}

	out := NewContext()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("apperrors: unexpected key token %v", keyTok)
		}
		var val interface{}
		if err := dec.Decode(&val); err != nil {
			return err
		}
		out.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = *out
	return nil
}

// AddFieldError appends msg to the message list of field.
// Used for validation error maps where every value is a []string.
func (c *Context) AddFieldError(field, msg string) *Context {
	existing, _ := c.Get(field)
	msgs, _ := existing.([]string)
	return c.Set(field, append(msgs, msg))
}

// FieldMessages returns the messages recorded for field.
func (c *Context) FieldMessages(field string) []string {
	v, _ := c.Get(field)
	msgs, _ := v.([]string)
	return msgs
}
