// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/taibuivan/agentdesk/internal/platform/constants"
)

// # Navigation Pre-Filter

// RouteFilterConfig lists the paths the pre-filter treats specially.
type RouteFilterConfig struct {
	// PublicPrefixes are reachable without a session cookie.
	PublicPrefixes []string

	// AuthPages are the sign-in and sign-up pages, matched exactly. A visitor
	// who already holds a cookie is sent to LandingPath instead.
	AuthPages []string

	LoginPath   string
	LandingPath string
	CookieName  string
}

/*
RouteFilter redirects page navigations based only on whether the session
cookie is present.

It never validates the cookie. It only spares anonymous visitors a round trip
to a page that would reject them anyway. Every API route still runs the
[Guard], so a forged or stale cookie gains nothing here.
*/
type RouteFilter struct {
	config RouteFilterConfig
}

// NewRouteFilter constructs a [RouteFilter], filling unset paths with defaults.
func NewRouteFilter(config RouteFilterConfig) *RouteFilter {
	if config.LoginPath == "" {
		config.LoginPath = constants.DefaultLoginPath
	}
	if config.LandingPath == "" {
		config.LandingPath = constants.DefaultLandingPath
	}
	if config.CookieName == "" {
		config.CookieName = constants.DefaultSessionCookieName
	}
	return &RouteFilter{config: config}
}

/*
Decide maps a navigation to an optional redirect.

Parameters:
  - requestPath: string (the request path, without query)
  - hasCookie: bool

Returns:
  - string: The redirect target when ok is false
  - bool: True when the request may continue
*/
func (filter *RouteFilter) Decide(requestPath string, hasCookie bool) (string, bool) {
	if isStaticAsset(requestPath) {
		return "", true
	}

	if hasCookie {
		if isAuthPage(requestPath, filter.config.AuthPages) {
			return filter.config.LandingPath, false
		}
		return "", true
	}

	if requestPath == filter.config.LoginPath || matchesAny(requestPath, filter.config.PublicPrefixes) {
		return "", true
	}

	query := url.Values{}
	query.Set(constants.CallbackURLParam, requestPath)
	return filter.config.LoginPath + "?" + query.Encode(), false
}

// Middleware applies [RouteFilter.Decide] with a 307 Temporary Redirect.
func (filter *RouteFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		cookie, err := request.Cookie(filter.config.CookieName)
		hasCookie := err == nil && cookie.Value != ""

		if target, ok := filter.Decide(request.URL.Path, hasCookie); !ok {
			http.Redirect(writer, request, target, http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// staticAssetExtensions are served to anyone; they carry no tenant data.
var staticAssetExtensions = map[string]bool{
	".js": true, ".css": true, ".map": true, ".ico": true, ".svg": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".woff": true, ".woff2": true, ".txt": true,
}

func isStaticAsset(requestPath string) bool {
	return staticAssetExtensions[strings.ToLower(path.Ext(requestPath))]
}

// matchesAny reports whether requestPath equals a prefix or sits beneath it.
func matchesAny(requestPath string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix == "" {
			continue
		}
		if requestPath == prefix || strings.HasPrefix(requestPath, prefix+"/") {
			return true
		}
	}
	return false
}

// isAuthPage reports whether requestPath is exactly one of pages, ignoring a trailing slash.
func isAuthPage(requestPath string, pages []string) bool {
	if requestPath != "/" {
		requestPath = strings.TrimSuffix(requestPath, "/")
	}
	for _, page := range pages {
		if page != "/" {
			page = strings.TrimSuffix(page, "/")
		}
		if page != "" && requestPath == page {
			return true
		}
	}
	return false
}
