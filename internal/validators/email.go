package validators

import (
	"net"
	"strings"
)

// EmailDomainResolves reports whether the domain part of an email address
// resolves in DNS. MX is the authoritative signal; a bare A/AAAA record is
// accepted as a fallback since plenty of small domains receive mail without
// publishing MX.
func EmailDomainResolves(email string) bool {
	domain, ok := splitDomain(email)
	if !ok {
		return false
	}

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	ips, err := net.LookupIP(domain)
	return err == nil && len(ips) > 0
}

func splitDomain(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}

	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if domain == "" || strings.ContainsAny(domain, " \t") {
		return "", false
	}

	return domain, true
}
