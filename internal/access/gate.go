// Package access decides whether an identity may see restricted admin
// surfaces, based on an allow-list of email domains.
package access

import "strings"

// Identity is the acting user as supplied by the calling environment.
type Identity struct {
	Email string
}

// Policy is the set of allowed email domains, stored without a leading "@".
type Policy struct {
	AllowedDomains []string
}

// ParseDomains builds a Policy from the comma separated allow-list as it is
// entered in the settings form. Entries are trimmed and a leading "@" is
// stripped. Case is preserved.
func ParseDomains(csv string) Policy {
	var p Policy
	for _, d := range strings.Split(csv, ",") {
		d = strings.TrimPrefix(strings.TrimSpace(d), "@")
		if d = strings.TrimSpace(d); d != "" {
			p.AllowedDomains = append(p.AllowedDomains, d)
		}
	}
	return p
}

// IsPermitted reports whether id's email ends in "@<domain>" for one of the
// policy's domains. An empty email or an empty policy is always denied. The
// match is case-sensitive.
func IsPermitted(id Identity, p Policy) bool {
	if id.Email == "" {
		return false
	}
	for _, d := range p.AllowedDomains {
		d = strings.TrimPrefix(strings.TrimSpace(d), "@")
		if d == "" {
			continue
		}
		if strings.HasSuffix(id.Email, "@"+d) {
			return true
		}
	}
	return false
}
