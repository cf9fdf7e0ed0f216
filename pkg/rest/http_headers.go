package rest

import (
	"strings"
)

const (
	HeaderAccept         = "Accept"
	HeaderAcceptProfile  = "Accept-Profile"
	HeaderAuthorization  = "Authorization"
	HeaderContentProfile = "Content-Profile"
	HeaderContentType    = "Content-Type"
	HeaderPrefer         = "Prefer"
	HeaderRange          = "Range"
	HeaderRangeUnit      = "Range-Unit"

	MediaTypeJSON         = "application/json"
	MediaTypeCSV          = "text/csv"
	MediaTypeSingleObject = "application/vnd.pgrst.object+json"
)

// Return is the return preference of a mutation.
type Return string

const (
	ReturnMinimal        Return = "minimal"
	ReturnRepresentation Return = "representation"
	ReturnHeadersOnly    Return = "headers-only"
)

// Count is the count preference of a read.
type Count string

const (
	CountExact     Count = "exact"
	CountPlanned   Count = "planned"
	CountEstimated Count = "estimated"
)

// Resolution is the duplicate resolution preference of an upsert.
type Resolution string

const (
	ResolutionMergeDuplicates  Resolution = "merge-duplicates"
	ResolutionIgnoreDuplicates Resolution = "ignore-duplicates"
)

// Prefer holds preferences for the Prefer header (RFC 7240).
type Prefer struct {
	Return     Return
	Count      Count
	Resolution Resolution
}

// String renders the set preferences as comma-separated directives.
func (p *Prefer) String() string {
	if p == nil {
		return ""
	}
	directives := make([]string, 0, 3)
	if p.Return != "" {
		directives = append(directives, "return="+string(p.Return))
	}
	if p.Count != "" {
		directives = append(directives, "count="+string(p.Count))
	}
	if p.Resolution != "" {
		directives = append(directives, "resolution="+string(p.Resolution))
	}
	return strings.Join(directives, ",")
}

// IsZero reports whether no preference is set.
func (p *Prefer) IsZero() bool {
	return p == nil || (p.Return == "" && p.Count == "" && p.Resolution == "")
}

// ParsePrefer parses a Prefer header value. Unknown or invalid directives are
// ignored. It returns nil if header is empty.
func ParsePrefer(header string) *Prefer {
	if header == "" {
		return nil
	}

	p := &Prefer{}
	parseKeyValPairs(header, func(key, value string) {
		switch key {
		case "return":
			if isValidReturn(value) {
				p.Return = Return(strings.ToLower(value))
			}
		case "count":
			if isValidCount(value) {
				p.Count = Count(strings.ToLower(value))
			}
		case "resolution":
			if isValidResolution(value) {
				p.Resolution = Resolution(strings.ToLower(value))
			}
		}
	})

	return p
}

// parseKeyValPairs parses comma or semicolon separated preference directives.
// For each key=value pair found, it calls fn with the key and value.
func parseKeyValPairs(header string, fn func(key, value string)) {
	prefs := strings.FieldsFuncSeq(header, func(r rune) bool { return r == ',' || r == ';' })
	for pref := range prefs {
		pref = strings.TrimSpace(pref)
		if key, value, found := strings.Cut(pref, "="); found {
			key = strings.TrimSpace(strings.ToLower(key))
			value = strings.Trim(strings.TrimSpace(value), `"`)
			fn(key, value)
		}
	}
}

func isValidReturn(s string) bool {
	switch Return(strings.ToLower(s)) {
	case ReturnMinimal, ReturnRepresentation, ReturnHeadersOnly:
		return true
	}
	return false
}

func isValidCount(s string) bool {
	switch Count(strings.ToLower(s)) {
	case CountExact, CountPlanned, CountEstimated:
		return true
	}
	return false
}

func isValidResolution(s string) bool {
	switch Resolution(strings.ToLower(s)) {
	case ResolutionMergeDuplicates, ResolutionIgnoreDuplicates:
		return true
	}
	return false
}

// WantsRepresentation reports whether the full representation is requested.
func (p *Prefer) WantsRepresentation() bool {
	return p != nil && p.Return == ReturnRepresentation
}

// WantsCount reports whether any row count is requested.
func (p *Prefer) WantsCount() bool {
	return p != nil && p.Count != ""
}
