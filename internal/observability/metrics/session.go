package metrics

import (
	"strings"
	"time"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	obserrors "github.com/acadify/acadify-web/internal/observability/errors"
	"github.com/acadify/acadify-web/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	// ResultAnonymous marks a session check that found no session.
	ResultAnonymous = "anonymous"
)

// SessionMetric captures one session client call for metric emission.
type SessionMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitSessionOp emits standardised session operation metrics.
func EmitSessionOp(sink statsd.Sink, in SessionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		statsd.TagOp:     in.Operation,
		statsd.TagResult: in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags[statsd.TagErrorClass] = class
		}
	}

	sink.Count("session.op", 1, tags)

	if in.Duration > 0 {
		sink.Timing("session.duration", in.Duration, CloneTags(tags))
	}
}

// GuardMetric captures one route guard decision.
type GuardMetric struct {
	Area     string
	Decision string
}

// EmitGuardDecision counts route guard outcomes per protected area.
func EmitGuardDecision(sink statsd.Sink, in GuardMetric) {
	if sink == nil {
		return
	}
	sink.Count("guard.decision", 1, map[string]string{
		statsd.TagArea:     in.Area,
		statsd.TagDecision: in.Decision,
	})
}

// roleUnknown buckets signed-in users whose role has no dashboard.
const roleUnknown = "unknown"

// EmitAuthState sets the auth.signed_in gauge for every role bucket: 1 for the
// signed-in user's role, 0 for the rest, so a logout or a user switch also
// zeroes the previous role's series. Snapshots taken while an operation is in
// flight are skipped.
func EmitAuthState(sink statsd.Sink, st domainauth.AuthState) {
	if sink == nil || st.Loading {
		return
	}
	current := ""
	if st.IsAuthenticated() {
		current = roleUnknown
		if st.User.Role.Known() {
			current = strings.ToLower(string(st.User.Role))
		}
	}
	for _, bucket := range roleBuckets() {
		var v float64
		if bucket == current {
			v = 1
		}
		sink.Gauge("auth.signed_in", v, map[string]string{statsd.TagRole: bucket})
	}
}

func roleBuckets() []string {
	roles := domainauth.Roles()
	out := make([]string, 0, len(roles)+1)
	for _, r := range roles {
		out = append(out, strings.ToLower(string(r)))
	}
	return append(out, roleUnknown)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
