package accesslog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleEntry() Entry {
	return Entry{
		RemoteAddr:    "203.0.113.5",
		TimeLocal:     time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC),
		Method:        "GET",
		URI:           "/index.html",
		Proto:         "1.1",
		Status:        200,
		BodyBytesSent: 512,
		Referer:       "https://example.com/",
		UserAgent:     "curl/8.0",
		RequestTime:   2500 * time.Microsecond,
	}
}

func TestFormatCombinedIncludesRefererAndUserAgent(t *testing.T) {
	line := Format("combined", sampleEntry())
	assert.Contains(t, line, `"GET /index.html HTTP/1.1"`)
	assert.Contains(t, line, "200 512")
	assert.Contains(t, line, `"https://example.com/"`)
	assert.Contains(t, line, `"curl/8.0"`)
}

func TestFormatCommonOmitsRefererAndUserAgent(t *testing.T) {
	line := Format("common", sampleEntry())
	assert.NotContains(t, line, "curl/8.0")
}

func TestFormatJSONIncludesRequestTimeUs(t *testing.T) {
	line := Format("json", sampleEntry())
	assert.Contains(t, line, `"request_time_us":2500`)
}

func TestFormatPatternSubstitutesLongestFirst(t *testing.T) {
	line := Format("$request_method $request_uri -> $status", sampleEntry())
	assert.Equal(t, "GET /index.html -> 200", line)
}
