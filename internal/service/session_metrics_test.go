package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/mocks"
	"github.com/acadify/acadify-web/internal/observability/statsd"
	"github.com/acadify/acadify-web/internal/testutil"
)

func TestInstrumentSessionClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockSessionClient(ctrl)
	rec := &statsd.Recorder{}

	client := InstrumentSessionClient(next, rec)
	tick := time.Unix(0, 0)
	client.(*instrumentedSessionClient).now = func() time.Time {
		tick = tick.Add(5 * time.Millisecond)
		return tick
	}

	next.EXPECT().CheckSession(gomock.Any()).
		Return(domainauth.UserIdentity{}, apperrors.New(apperrors.KindUnauthenticated, apperrors.MsgNotSignedIn))
	next.EXPECT().Login(gomock.Any(), "a@b.com", "pw").Return(testutil.Student(), nil)
	next.EXPECT().Logout(gomock.Any()).Return(apperrors.FromStatus(500, "", apperrors.MsgRequestFailed))

	_, err := client.CheckSession(context.Background())
	require.Error(t, err)
	_, err = client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Error(t, client.Logout(context.Background()))

	assert.Equal(t, []string{
		"session.op:1|c|#op:check_session,result:anonymous",
		"session.duration:5|ms|#op:check_session,result:anonymous",
		"session.op:1|c|#op:login,result:success",
		"session.duration:5|ms|#op:login,result:success",
		"session.op:1|c|#error_class:server_error,op:logout,result:error",
		"session.duration:5|ms|#error_class:server_error,op:logout,result:error",
	}, rec.Lines())
}

func TestInstrumentSessionClientNilSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockSessionClient(ctrl)
	assert.Same(t, next, InstrumentSessionClient(next, nil))
}
