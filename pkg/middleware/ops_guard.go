package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gorilla/mux"
)

// OpsGuardOptions restrict operational routes such as the metrics endpoint.
type OpsGuardOptions struct {
	// Paths are route prefixes treated as operational.
	Paths []string
	// CIDRs is a comma or whitespace separated allowlist of client networks.
	CIDRs        string
	Token        string
	RealIPHeader string
}

type opsGuard struct {
	paths        []string
	cidrs        []netip.Prefix
	token        string
	realIPHeader string
}

// OpsGuard hides operational routes behind an IP allowlist or a static token.
// Unauthorized callers get a plain 404 so the routes are not discoverable.
func OpsGuard(opts OpsGuardOptions) mux.MiddlewareFunc {
	g := &opsGuard{
		paths:        opts.Paths,
		cidrs:        parseCIDRs(opts.CIDRs),
		token:        strings.TrimSpace(opts.Token),
		realIPHeader: opts.RealIPHeader,
	}
	return g.middleware
}

func (g *opsGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.isOps(r.URL.Path) || g.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func (g *opsGuard) isOps(path string) bool {
	for _, p := range g.paths {
		if p != "" && (path == p || strings.HasPrefix(path, strings.TrimRight(p, "/")+"/")) {
			return true
		}
	}
	return false
}

func (g *opsGuard) authorized(r *http.Request) bool {
	if len(g.cidrs) > 0 {
		if ip, ok := realIP(r, g.realIPHeader); ok {
			if addr, err := netip.ParseAddr(ip); err == nil {
				for _, p := range g.cidrs {
					if p.Contains(addr) {
						return true
					}
				}
			}
		}
	}
	if g.token != "" {
		return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(r.Header.Get("X-Ops-Token"))), []byte(g.token)) == 1
	}
	return false
}

func parseCIDRs(raw string) []netip.Prefix {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' })
	out := make([]netip.Prefix, 0, len(parts))
	for _, part := range parts {
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func realIP(r *http.Request, header string) (string, bool) {
	v := r.RemoteAddr
	if header != "" {
		if h := strings.TrimSpace(r.Header.Get(header)); h != "" {
			// X-Forwarded-For style: take the first item
			if i := strings.IndexByte(h, ','); i >= 0 {
				h = h[:i]
			}
			v = h
		}
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(v); err == nil {
		return host, true
	}
	return v, true
}
