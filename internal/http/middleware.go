// Package http holds HTTP middleware shared by the RPC handlers.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey int

const (
	clientIPContextKey contextKey = iota
	userAgentContextKey
)

// maxUserAgentLength bounds what is copied into audit records.
const maxUserAgentLength = 512

// ExtractClientIP extracts the client IP address from the request.
// When trustProxyHeaders is set it checks X-Forwarded-For first, then X-Real-IP.
// Otherwise only the connection's RemoteAddr is used, since any client can set those headers.
func ExtractClientIP(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ExtractUserAgent returns the request's User-Agent truncated for storage.
func ExtractUserAgent(r *http.Request) string {
	ua := r.UserAgent()
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}
	return ua
}

// ClientIPFromContext extracts the client IP from the request context.
// This should be called from handlers wrapped by ClientMetadataMiddleware.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey).(string)
	return ip
}

// UserAgentFromContext extracts the client user agent from the request context.
func UserAgentFromContext(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentContextKey).(string)
	return ua
}

// WithClientMetadata stores the client IP and user agent in ctx.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPContextKey, ip)
	return context.WithValue(ctx, userAgentContextKey, userAgent)
}

// ClientMetadataMiddleware stores the client IP and user agent in the request context
// so audit records can include them. Enable trustProxyHeaders only behind a proxy that
// overwrites X-Forwarded-For and X-Real-IP.
func ClientMetadataMiddleware(trustProxyHeaders bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithClientMetadata(r.Context(), ExtractClientIP(r, trustProxyHeaders), ExtractUserAgent(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
