// Package accesslog formats per-request log lines in one of the styles
// named by the Logging resource's access_log_format field, per spec.md
// §4.13.
package accesslog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry carries everything a formatter might reference.
type Entry struct {
	RemoteAddr    string
	TimeLocal     time.Time
	Method        string
	URI           string
	Proto         string
	Status        int
	BodyBytesSent int64
	Referer       string
	UserAgent     string
	RequestTime   time.Duration
	ConnectionID  string
}

// Format renders entry per templateName: "combined", "common", "json", or
// any other string treated as a pattern template (spec.md §4.13).
func Format(templateName string, e Entry) string {
	switch templateName {
	case "combined":
		return formatApache(e, true)
	case "common":
		return formatApache(e, false)
	case "json":
		return formatJSON(e)
	default:
		return formatPattern(templateName, e)
	}
}

func formatApache(e Entry, combined bool) string {
	line := fmt.Sprintf(`%s - - [%s] "%s %s HTTP/%s" %d %d`,
		e.RemoteAddr,
		e.TimeLocal.Format("02/Jan/2006:15:04:05 -0700"),
		e.Method, e.URI, e.Proto,
		e.Status, e.BodyBytesSent,
	)
	if combined {
		line += fmt.Sprintf(` %q %q`, e.Referer, e.UserAgent)
	}
	return line
}

func formatJSON(e Entry) string {
	data, _ := json.Marshal(map[string]any{
		"remote_addr":      e.RemoteAddr,
		"time_local":       e.TimeLocal.Format(time.RFC3339),
		"method":           e.Method,
		"uri":              e.URI,
		"proto":            e.Proto,
		"status":           e.Status,
		"body_bytes_sent":  e.BodyBytesSent,
		"referer":          e.Referer,
		"user_agent":       e.UserAgent,
		"request_time_us":  e.RequestTime.Microseconds(),
		"connection_id":    e.ConnectionID,
	})
	return string(data)
}

// patternVars lists substitution variables longest-name-first, so that
// e.g. "$request_method" is replaced before "$request" could partially
// consume it.
func patternVars(e Entry) []struct {
	name  string
	value string
} {
	vars := []struct {
		name  string
		value string
	}{
		{"$remote_addr", e.RemoteAddr},
		{"$time_local", e.TimeLocal.Format("02/Jan/2006:15:04:05 -0700")},
		{"$time_iso8601", e.TimeLocal.Format(time.RFC3339)},
		{"$request_method", e.Method},
		{"$request_uri", e.URI},
		{"$request", fmt.Sprintf("%s %s HTTP/%s", e.Method, e.URI, e.Proto)},
		{"$status", strconv.Itoa(e.Status)},
		{"$body_bytes_sent", strconv.FormatInt(e.BodyBytesSent, 10)},
		{"$http_referer", e.Referer},
		{"$http_user_agent", e.UserAgent},
		{"$request_time", strconv.FormatFloat(e.RequestTime.Seconds(), 'f', 3, 64)},
		{"$connection_id", e.ConnectionID},
	}
	// Longer variable names first avoids e.g. "$request" matching inside
	// "$request_method" before the latter's own replacement runs.
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			if len(vars[j].name) > len(vars[i].name) {
				vars[i], vars[j] = vars[j], vars[i]
			}
		}
	}
	return vars
}

func formatPattern(pattern string, e Entry) string {
	out := pattern
	for _, v := range patternVars(e) {
		out = strings.ReplaceAll(out, v.name, v.value)
	}
	return out
}
