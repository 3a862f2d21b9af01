package service

import (
	"context"
	"time"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/observability/metrics"
	"github.com/acadify/acadify-web/internal/observability/statsd"
	"github.com/acadify/acadify-web/internal/ports"
)

// instrumentedSessionClient emits a counter and a latency for every session call.
type instrumentedSessionClient struct {
	next ports.SessionClient
	sink statsd.Sink
	now  func() time.Time
}

// InstrumentSessionClient wraps next so each call is reported to sink.
// A nil sink returns next unchanged.
func InstrumentSessionClient(next ports.SessionClient, sink statsd.Sink) ports.SessionClient {
	if sink == nil {
		return next
	}
	return &instrumentedSessionClient{next: next, sink: sink, now: time.Now}
}

func (c *instrumentedSessionClient) emit(op string, start time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case op == "check_session" && apperrors.IsUnauthenticated(err):
		result = metrics.ResultAnonymous
	default:
		result = metrics.ResultError
	}
	metrics.EmitSessionOp(c.sink, metrics.SessionMetric{
		Operation: op,
		Result:    result,
		Duration:  c.now().Sub(start),
		Err:       err,
	})
}

func (c *instrumentedSessionClient) CheckSession(ctx context.Context) (domainauth.UserIdentity, error) {
	start := c.now()
	u, err := c.next.CheckSession(ctx)
	c.emit("check_session", start, err)
	return u, err
}

func (c *instrumentedSessionClient) Login(ctx context.Context, email, password string) (domainauth.UserIdentity, error) {
	start := c.now()
	u, err := c.next.Login(ctx, email, password)
	c.emit("login", start, err)
	return u, err
}

func (c *instrumentedSessionClient) Signup(ctx context.Context, profile domainauth.SignupProfile) (domainauth.UserIdentity, error) {
	start := c.now()
	u, err := c.next.Signup(ctx, profile)
	c.emit("signup", start, err)
	return u, err
}

func (c *instrumentedSessionClient) Logout(ctx context.Context) error {
	start := c.now()
	err := c.next.Logout(ctx)
	c.emit("logout", start, err)
	return err
}
