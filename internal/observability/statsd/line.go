package statsd

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// encoder renders DogStatsD lines. Client and Recorder share it so the lines a
// test asserts are the lines sent over UDP.
type encoder struct {
	prefix string
	global map[string]string
}

func newEncoder(prefix string, global map[string]string) encoder {
	return encoder{prefix: sanitizePrefix(prefix), global: cleanTags(global, false)}
}

func (e encoder) count(name string, value int64, tags map[string]string) string {
	return e.line(name, strconv.FormatInt(value, 10)+"|c", tags)
}

func (e encoder) gauge(name string, value float64, tags map[string]string) string {
	return e.line(name, strconv.FormatFloat(value, 'f', -1, 64)+"|g", tags)
}

// timing truncates to whole milliseconds.
func (e encoder) timing(name string, value time.Duration, tags map[string]string) string {
	return e.line(name, strconv.FormatInt(value.Milliseconds(), 10)+"|ms", tags)
}

// line returns "" when name normalizes to nothing.
func (e encoder) line(name, payload string, tags map[string]string) string {
	metric := normalizeMetricName(name)
	if metric == "" {
		return ""
	}
	if e.prefix != "" {
		metric = e.prefix + "." + metric
	}
	return metric + ":" + payload + e.formatTags(tags)
}

func (e encoder) formatTags(local map[string]string) string {
	merged := make(map[string]string, len(e.global)+len(local))
	for k, v := range e.global {
		merged[k] = v
	}
	for k, v := range cleanTags(local, true) {
		merged[k] = v
	}
	if len(merged) == 0 {
		return ""
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + ":" + merged[k]
	}
	return "|#" + strings.Join(pairs, ",")
}

func sanitizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), ".")
}

func normalizeMetricName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	n = strings.NewReplacer(" ", "_", "/", "_", ":", "_", "|", "_").Replace(n)
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	return strings.Trim(n, ".")
}
