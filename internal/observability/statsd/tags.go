package statsd

import "strings"

// Tag keys emitted by the web client.
const (
	TagOp         = "op"
	TagResult     = "result"
	TagErrorClass = "error_class"
	TagArea       = "area"
	TagDecision   = "decision"
	TagRole       = "role"
)

// Per-call tags outside this set are dropped. A user ID, email or request
// path must never become a tag.
var knownTags = map[string]struct{}{
	TagOp:         {},
	TagResult:     {},
	TagErrorClass: {},
	TagArea:       {},
	TagDecision:   {},
	TagRole:       {},
}

const maxTagValueLen = 32

// tagValue lower-cases v and replaces anything outside [a-z0-9_.-] so values
// such as "TEACHER" or "net/url.Error" cannot break the line protocol.
func tagValue(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxTagValueLen {
			break
		}
	}
	out := b.String()
	if len(out) > maxTagValueLen {
		out = out[:maxTagValueLen]
	}
	return out
}

// cleanTags keeps non-empty keys and values. With restrict set, only known
// keys survive; global tags come from configuration and are not restricted.
func cleanTags(tags map[string]string, restrict bool) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		if _, ok := knownTags[key]; restrict && !ok {
			continue
		}
		if val := tagValue(v); val != "" {
			out[key] = val
		}
	}
	return out
}
