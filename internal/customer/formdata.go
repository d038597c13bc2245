// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Form field sections. A field name is a hyphenated path whose last segment
// is the input key, e.g. "customer-firstName" or "address-city".
const (
	SectionCustomer = "customer"
	SectionAddress  = "address"

	// ConfirmPasswordField never reaches the platform.
	ConfirmPasswordField = "customer-confirmPassword"
)

// FormEntry is one submitted form value.
type FormEntry struct {
	Name  string
	Value string
}

// EntriesFromValues flattens url.Values into entries sorted by field name.
// Repeated values keep their submission order.
func EntriesFromValues(values url.Values) []FormEntry {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]FormEntry, 0, len(values))
	for _, name := range names {
		for _, v := range values[name] {
			entries = append(entries, FormEntry{Name: name, Value: v})
		}
	}
	return entries
}

// WithoutField returns entries minus every entry called name.
func WithoutField(entries []FormEntry, name string) []FormEntry {
	out := make([]FormEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}

// RegisterInput is a folded form submission. Fields holds the customer
// section at the top level, Address the address section.
type RegisterInput struct {
	Fields  map[string]string
	Address map[string]string
}

// FoldForm folds hyphenated field names into a two level input. The last
// path segment is the key. A "customer" segment before it writes the key to
// the top level, an "address" segment writes it to Address. Both may apply.
// Fields naming neither section are dropped. Later entries win.
func FoldForm(entries []FormEntry) RegisterInput {
	in := RegisterInput{
		Fields:  map[string]string{},
		Address: map[string]string{},
	}
	for _, e := range entries {
		segments := strings.Split(e.Name, "-")
		key := segments[len(segments)-1]
		sections := segments[:len(segments)-1]
		value := norm.NFC.String(e.Value)

		if hasSection(sections, SectionCustomer) {
			in.Fields[key] = value
		}
		if hasSection(sections, SectionAddress) {
			in.Address[key] = value
		}
	}
	return in
}

func hasSection(sections []string, want string) bool {
	for _, s := range sections {
		if s == want {
			return true
		}
	}
	return false
}

// HasEmail reports whether the input carries an email key. The value may be empty.
func (in RegisterInput) HasEmail() bool {
	_, ok := in.Fields["email"]
	return ok
}

// Object returns the input as a JSON object. The nested address object is
// always present and shadows a top level field named "address".
func (in RegisterInput) Object() map[string]any {
	obj := make(map[string]any, len(in.Fields)+1)
	for k, v := range in.Fields {
		obj[k] = v
	}
	address := make(map[string]string, len(in.Address))
	for k, v := range in.Address {
		address[k] = v
	}
	obj[SectionAddress] = address
	return obj
}

// MarshalJSON encodes the input as a flat object with a nested address.
func (in RegisterInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.Object())
}
