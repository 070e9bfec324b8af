package httpcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRangeStandard(t *testing.T) {
	r := ParseRange("bytes=0-99", 1000)
	assert.Equal(t, RangeValid, r.Result)
	assert.Equal(t, int64(0), r.Start)
	assert.Equal(t, int64(99), r.End)
}

func TestParseRangeOpenEnded(t *testing.T) {
	r := ParseRange("bytes=500-", 1000)
	assert.Equal(t, RangeValid, r.Result)
	assert.Equal(t, int64(500), r.Start)
	assert.Equal(t, int64(999), r.End)
}

func TestParseRangeSuffix(t *testing.T) {
	r := ParseRange("bytes=-500", 1000)
	assert.Equal(t, RangeValid, r.Result)
	assert.Equal(t, int64(500), r.Start)
	assert.Equal(t, int64(999), r.End)
}

func TestParseRangeSuffixLargerThanFile(t *testing.T) {
	r := ParseRange("bytes=-5000", 1000)
	assert.Equal(t, RangeValid, r.Result)
	assert.Equal(t, int64(0), r.Start)
	assert.Equal(t, int64(999), r.End)
}

func TestParseRangeSuffixZero(t *testing.T) {
	r := ParseRange("bytes=-0", 1000)
	assert.Equal(t, RangeNotSatisfiable, r.Result)
}

func TestParseRangeStartBeyondFile(t *testing.T) {
	r := ParseRange("bytes=1000-1001", 1000)
	assert.Equal(t, RangeNotSatisfiable, r.Result)
}

func TestParseRangeEndClamped(t *testing.T) {
	r := ParseRange("bytes=0-9999", 1000)
	assert.Equal(t, RangeValid, r.Result)
	assert.Equal(t, int64(999), r.End)
}

func TestParseRangeMultiRangeIgnored(t *testing.T) {
	r := ParseRange("bytes=0-10,20-30", 1000)
	assert.Equal(t, RangeNone, r.Result)
}

func TestParseRangeAbsent(t *testing.T) {
	r := ParseRange("", 1000)
	assert.Equal(t, RangeNone, r.Result)
}

func TestParseRangeNonBytesUnit(t *testing.T) {
	r := ParseRange("items=0-5", 1000)
	assert.Equal(t, RangeNone, r.Result)
}
