package utils

import (
	"time"
)

type contextKey string

// Request scoped context keys set by the mock backend handlers
const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
)

// Mock backend constants
const (
	// RequestTimeout bounds every handler's storage calls
	RequestTimeout = 30 * time.Second

	// MockTokenTTL is the lifetime of the admin token logged by serve-mock (24 hours)
	MockTokenTTL = 24 * time.Hour

	// BodyLimit is the largest request body accepted (1MB)
	BodyLimit = 1 * 1024 * 1024
)
