package http

import "strings"

type Field struct {
	Name, Value string
}

// Header is an ordered list of fields. lookups are case-insensitive,
// names are kept as given.
type Header []Field

func (h Header) Get(name string) string {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

func (h Header) Values(name string) (vs []string) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			vs = append(vs, f.Value)
		}
	}
	return
}

func (h Header) Has(name string) bool {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

func (h *Header) Add(name, value string) {
	*h = append(*h, Field{name, value})
}

// Set removes every field called name and appends a single one.
func (h *Header) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

func (h *Header) Del(name string) {
	kept := (*h)[:0]
	for _, f := range *h {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}
	*h = kept
}

func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	return append(Header(nil), h...)
}
