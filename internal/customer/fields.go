// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"sort"
	"strconv"
	"strings"
)

// Built-in form field ids as assigned by the platform.
var builtInFieldNames = map[int]string{
	1:  "email",
	2:  "password",
	3:  "confirmPassword",
	4:  "firstName",
	5:  "lastName",
	6:  "company",
	7:  "phone",
	8:  "address1",
	9:  "address2",
	10: "city",
	11: "countryCode",
	12: "stateOrProvince",
	13: "postalCode",
}

// FieldOption is a picklist choice.
type FieldOption struct {
	EntityID int    `json:"entityId"`
	Label    string `json:"label"`
}

// FormField describes one input of a customer or address form.
type FormField struct {
	Type       string        `json:"__typename"`
	EntityID   int           `json:"entityId"`
	Label      string        `json:"label"`
	SortOrder  int           `json:"sortOrder"`
	IsBuiltIn  bool          `json:"isBuiltIn"`
	IsRequired bool          `json:"isRequired"`
	Options    []FieldOption `json:"options,omitempty"`
}

// Key returns the input key of a built-in field, or "" for custom fields.
func (f FormField) Key() string {
	if !f.IsBuiltIn {
		return ""
	}
	return builtInFieldNames[f.EntityID]
}

// InputType returns the HTML input type used to render the field.
func (f FormField) InputType() string {
	switch {
	case f.Type == "PicklistFormField":
		return "select"
	case f.Type == "PasswordFormField", f.Key() == "password", f.Key() == "confirmPassword":
		return "password"
	case f.Key() == "email":
		return "email"
	case f.Key() == "phone":
		return "tel"
	default:
		return "text"
	}
}

// FormFields holds the customer and address field definitions of the site.
type FormFields struct {
	Customer []FormField `json:"customer"`
	Address  []FormField `json:"address"`
}

// Renderable drops fields without a known input key and sorts the rest.
func Renderable(fields []FormField) []FormField {
	out := make([]FormField, 0, len(fields))
	for _, f := range fields {
		if f.Key() != "" {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// FieldFilters restricts form fields by entity id. Empty means all fields.
type FieldFilters struct {
	CustomerEntityIDs []int
	AddressEntityIDs  []int
}

func (f FieldFilters) variables() map[string]any {
	vars := map[string]any{}
	if len(f.CustomerEntityIDs) > 0 {
		vars["customerFilters"] = map[string]any{"entityIds": f.CustomerEntityIDs}
	}
	if len(f.AddressEntityIDs) > 0 {
		vars["addressFilters"] = map[string]any{"entityIds": f.AddressEntityIDs}
	}
	return vars
}

func (f FieldFilters) cacheKey() string {
	return "formfields:c=" + joinIDs(f.CustomerEntityIDs) + ";a=" + joinIDs(f.AddressEntityIDs)
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
