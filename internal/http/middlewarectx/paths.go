package middlewarectx

import "strings"

// PathClass категория пути для шлюза доступа.
type PathClass int

const (
	PathProtected PathClass = iota
	PathStatic
	PathPublic
)

var staticPrefixes = []string{"/static/", "/assets/", "/avatars/"}

var publicPages = map[string]struct{}{
	"/":                {},
	"/login":           {},
	"/register":        {},
	"/verify-email":    {},
	"/reset-password":  {},
	"/forgot-password": {},
	"/waiting":         {},
	"/pricing":         {},
	"/features":        {},
	"/blog":            {},
}

var publicAPIs = map[string]struct{}{
	"/api/auth/login":               {},
	"/api/auth/register":            {},
	"/api/auth/verify-email":        {},
	"/api/auth/resend-verification": {},
	"/api/auth/forgot-password":     {},
	"/api/auth/reset-password":      {},
	"/api/auth/logout":              {},
	"/api/stripe/webhook":           {},
	"/api/waiting-list-mode":        {},
	"/api/waiting-list":             {},
	"/health":                       {},
	"/metrics":                      {},
}

// Classify определяет категорию пути.
func Classify(path string) PathClass {
	if path == "/favicon.ico" {
		return PathStatic
	}
	for _, p := range staticPrefixes {
		if strings.HasPrefix(path, p) {
			return PathStatic
		}
	}
	if _, ok := publicPages[path]; ok {
		return PathPublic
	}
	if _, ok := publicAPIs[path]; ok {
		return PathPublic
	}
	if path == "/docs" || strings.HasPrefix(path, "/docs/") || strings.HasPrefix(path, "/blog/") {
		return PathPublic
	}
	return PathProtected
}

// IsAPI сообщает, обслуживает ли путь JSON API.
func IsAPI(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// exemptFromWaitingList пути, доступные в режиме листа ожидания.
func exemptFromWaitingList(path string) bool {
	switch {
	case path == "/login", path == "/waiting":
		return true
	case IsAPI(path):
		return true
	case path == "/admin", strings.HasPrefix(path, "/admin/"):
		return true
	case path == "/health", path == "/metrics", strings.HasPrefix(path, "/docs"):
		return true
	}
	return false
}
