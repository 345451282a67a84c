package domain

import "sort"

// CompanyRevenue is one row of the arms-industry revenue ranking
type CompanyRevenue struct {
	Company string `json:"company"`
	// ArmsShare is arms sales as a percentage of total sales; nil when not reported
	ArmsShare *float64 `json:"arms_share,omitempty"`
}

// CompanySet is a membership set of company names
type CompanySet map[string]struct{}

// NewCompanySet builds a set from names
func NewCompanySet(names ...string) CompanySet {
	set := make(CompanySet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is in the set
func (s CompanySet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in sorted order
func (s CompanySet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
