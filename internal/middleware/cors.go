package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type originSuffix struct {
	scheme string // empty matches any scheme
	suffix string
}

// OriginMatcher reports whether a browser origin is in the allow list.
// Entries are exact origins ("https://app.example.com"), "*" for any origin,
// or a host wildcard ("*.example.com", "https://*.example.com") that matches
// every subdomain but not the bare domain.
func OriginMatcher(allowed []string) func(origin string) bool {
	var exact []string
	var suffixes []originSuffix
	allowAll := false

	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimRight(strings.TrimSpace(entry), "/"))
		switch {
		case entry == "":
		case entry == "*":
			allowAll = true
		case strings.Contains(entry, "*."):
			scheme, host, found := strings.Cut(entry, "://")
			if !found {
				scheme, host = "", entry
			}
			suffixes = append(suffixes, originSuffix{
				scheme: scheme,
				suffix: strings.TrimPrefix(host, "*"),
			})
		default:
			exact = append(exact, entry)
		}
	}

	return func(origin string) bool {
		if allowAll {
			return true
		}
		origin = strings.ToLower(strings.TrimRight(origin, "/"))
		for _, e := range exact {
			if origin == e {
				return true
			}
		}
		u, err := url.Parse(origin)
		if err != nil || u.Hostname() == "" {
			return false
		}
		for _, s := range suffixes {
			if s.scheme != "" && s.scheme != u.Scheme {
				continue
			}
			if strings.HasSuffix(u.Hostname(), s.suffix) {
				return true
			}
		}
		return false
	}
}

// CORS builds the gin-contrib/cors middleware for the allow list.
func CORS(allowed []string) gin.HandlerFunc {
	match := OriginMatcher(allowed)
	return cors.New(cors.Config{
		AllowOriginFunc:  match,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// CheckOrigin adapts the allow list for the websocket upgrader. Requests
// without an Origin header come from non-browser clients and are allowed.
func CheckOrigin(allowed []string) func(r *http.Request) bool {
	match := OriginMatcher(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || match(origin)
	}
}
