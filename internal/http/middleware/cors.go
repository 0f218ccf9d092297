package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsHeaders = "Authorization, Content-Type, X-Requested-With"
	corsMethods = "GET, POST, PATCH, OPTIONS"
)

// originPolicy casa origens exatas ou curingas "*.dominio".
type originPolicy struct {
	exact    map[string]bool
	wildcard []string
}

func newOriginPolicy(entries []string) originPolicy {
	p := originPolicy{exact: map[string]bool{}}
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		switch {
		case e == "":
		case strings.HasPrefix(e, "*."):
			p.wildcard = append(p.wildcard, e[1:])
		default:
			p.exact[e] = true
		}
	}
	return p
}

// allows exige subdomínio próprio; "*.gov.br" não libera "gov.br".
func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	origin = strings.ToLower(origin)
	if p.exact[origin] {
		return true
	}
	if len(p.wildcard) == 0 {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := u.Hostname()
	for _, suffix := range p.wildcard {
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// CORS libera as origens de ALLOW_ORIGINS com credenciais; preflight responde 204.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); policy.allows(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Allow-Methods", corsMethods)
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
