// Package countries holds the static country table offered by the search form.
package countries

import "sort"

// Country is a selectable option: an ISO 3166 alpha-2 code and a display name.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var all = []Country{
	{Code: "US", Name: "United States"},
	{Code: "MX", Name: "Mexico"},
	{Code: "AR", Name: "Argentina"},
	{Code: "CO", Name: "Colombia"},
	{Code: "CR", Name: "Costa Rica"},
	{Code: "ES", Name: "Spain"},
	{Code: "PE", Name: "Peru"},
	{Code: "CL", Name: "Chile"},
	{Code: "BR", Name: "Brazil"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "FR", Name: "France"},
	{Code: "DE", Name: "Germany"},
}

var byCode = func() map[string]Country {
	m := make(map[string]Country, len(all))
	for _, c := range all {
		m[c.Code] = c
	}
	return m
}()

// All returns the table sorted by name. The slice is a copy.
func All() []Country {
	out := append([]Country(nil), all...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the country with the given code.
func Lookup(code string) (Country, bool) {
	c, ok := byCode[code]
	return c, ok
}
