// Package observability provides metrics, tracing, and logging utilities.
package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys
const (
	attrMethod  = "method"
	attrPath    = "path"
	attrStatus  = "status"
	attrTrigger = "trigger"
	attrResult  = "result"
	attrSuccess = "success"
)

func methodAttr(method string) attribute.KeyValue {
	return attribute.String(attrMethod, method)
}

func pathAttr(path string) attribute.KeyValue {
	return attribute.String(attrPath, normalizePath(path))
}

func statusAttr(code int) attribute.KeyValue {
	// 200-299 -> 2xx, 400-499 -> 4xx, 500-599 -> 5xx
	group := fmt.Sprintf("%dxx", code/100)
	return attribute.String(attrStatus, group)
}

func triggerAttr(trigger string) attribute.KeyValue {
	return attribute.String(attrTrigger, trigger)
}

func resultAttr(result string) attribute.KeyValue {
	return attribute.String(attrResult, result)
}

func successAttr(success bool) attribute.KeyValue {
	return attribute.Bool(attrSuccess, success)
}

// knownPaths are the routes the API serves; anything else is collapsed to
// keep label cardinality bounded.
var knownPaths = map[string]bool{
	"/livez":           true,
	"/readyz":          true,
	"/v1/backups":      true,
	"/v1/backups/last": true,
}

// normalizePath replaces unknown paths with a placeholder.
func normalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	return "other"
}
