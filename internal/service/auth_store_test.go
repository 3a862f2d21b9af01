package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/mocks"
	"github.com/acadify/acadify-web/internal/testutil"
)

func newStore(t *testing.T) (*AuthStore, *mocks.MockSessionClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSessionClient(ctrl)
	return NewAuthStore(AuthStoreOptions{Client: client}), client
}

func TestAuthStore_InitialState(t *testing.T) {
	store, _ := newStore(t)
	st := store.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Error)
	assert.False(t, store.IsAuthenticated())
}

func TestAuthStore_CheckSession(t *testing.T) {
	t.Run("session found", func(t *testing.T) {
		store, client := newStore(t)
		client.EXPECT().CheckSession(gomock.Any()).Return(testutil.Teacher(), nil)

		store.CheckSession(context.Background())

		st := store.State()
		assert.False(t, st.Loading)
		require.NotNil(t, st.User)
		assert.Equal(t, domainauth.RoleTeacher, st.User.Role)
		assert.True(t, store.IsAuthenticated())
	})

	t.Run("no session is not an error", func(t *testing.T) {
		store, client := newStore(t)
		client.EXPECT().CheckSession(gomock.Any()).
			Return(domainauth.UserIdentity{}, apperrors.New(apperrors.KindUnauthenticated, apperrors.MsgNotSignedIn))

		store.CheckSession(context.Background())

		st := store.State()
		assert.False(t, st.Loading)
		assert.Nil(t, st.User)
		assert.Empty(t, st.Error)
	})

	t.Run("network failure clears user without error", func(t *testing.T) {
		store, client := newStore(t)
		client.EXPECT().CheckSession(gomock.Any()).Return(testutil.Student(), nil)
		client.EXPECT().CheckSession(gomock.Any()).
			Return(domainauth.UserIdentity{}, apperrors.Network(errors.New("dial tcp: refused")))

		store.CheckSession(context.Background())
		require.True(t, store.IsAuthenticated())
		store.CheckSession(context.Background())

		st := store.State()
		assert.Nil(t, st.User)
		assert.Empty(t, st.Error)
	})
}

func TestAuthStore_Login(t *testing.T) {
	for _, user := range []domainauth.UserIdentity{testutil.Student(), testutil.Teacher(), testutil.Admin()} {
		t.Run(string(user.Role), func(t *testing.T) {
			store, client := newStore(t)
			client.EXPECT().Login(gomock.Any(), user.Email, "secret1").Return(user, nil)

			got, err := store.Login(context.Background(), user.Email, "secret1")
			require.NoError(t, err)
			assert.Equal(t, user, got)

			st := store.State()
			require.NotNil(t, st.User)
			assert.Equal(t, user.Role, st.User.Role)
			assert.True(t, store.IsAuthenticated())
			assert.False(t, st.Loading)
		})
	}
}

func TestAuthStore_LoginFailure(t *testing.T) {
	t.Run("message from api", func(t *testing.T) {
		store, client := newStore(t)
		client.EXPECT().Login(gomock.Any(), "a@b.com", "wrong").
			Return(domainauth.UserIdentity{}, apperrors.New(apperrors.KindInvalidCredentials, "Invalid email or password"))

		_, err := store.Login(context.Background(), "a@b.com", "wrong")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCredentials))

		st := store.State()
		assert.Equal(t, "Invalid email or password", st.Error)
		assert.Nil(t, st.User)
		assert.False(t, st.Loading)
	})

	t.Run("raw error is normalized", func(t *testing.T) {
		store, client := newStore(t)
		client.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domainauth.UserIdentity{}, errors.New("boom"))

		_, err := store.Login(context.Background(), "a@b.com", "pw")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNetworkFailure))
		assert.Equal(t, apperrors.MsgNetworkFailure, store.State().Error)
	})

	t.Run("next attempt clears error", func(t *testing.T) {
		store, client := newStore(t)
		gomock.InOrder(
			client.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(domainauth.UserIdentity{}, apperrors.New(apperrors.KindInvalidCredentials, "nope")),
			client.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(context.Context, string, string) (domainauth.UserIdentity, error) {
					assert.Empty(t, store.State().Error, "error must be cleared when the attempt starts")
					return testutil.Student(), nil
				}),
		)

		_, _ = store.Login(context.Background(), "a@b.com", "x")
		assert.Equal(t, "nope", store.State().Error)
		_, err := store.Login(context.Background(), "a@b.com", "y")
		require.NoError(t, err)
		assert.Empty(t, store.State().Error)
	})
}

func TestAuthStore_Signup(t *testing.T) {
	profile := domainauth.SignupProfile{
		Name: "New Kid", Email: "kid@uni.edu", Password: "123456", ConfirmPassword: "123456",
		Role: domainauth.RoleStudent,
	}

	t.Run("success", func(t *testing.T) {
		store, client := newStore(t)
		want := testutil.NewUser().WithName("New Kid").WithEmail("kid@uni.edu").Build()
		client.EXPECT().Signup(gomock.Any(), profile).Return(want, nil)

		got, err := store.Signup(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.True(t, store.IsAuthenticated())
	})

	t.Run("failure without message falls back", func(t *testing.T) {
		store, client := newStore(t)
		client.EXPECT().Signup(gomock.Any(), profile).
			Return(domainauth.UserIdentity{}, &apperrors.AuthError{Kind: apperrors.KindSignupFailure})

		_, err := store.Signup(context.Background(), profile)
		require.Error(t, err)
		assert.Equal(t, apperrors.MsgSignupFailed, store.State().Error)
		assert.False(t, store.IsAuthenticated())
	})
}

func TestAuthStore_LogoutAlwaysClears(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "remote ok"},
		{name: "remote fails", err: apperrors.Network(errors.New("connection reset"))},
		{name: "remote 500", err: apperrors.FromStatus(500, "", apperrors.MsgRequestFailed)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, client := newStore(t)
			client.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(domainauth.UserIdentity{}, apperrors.New(apperrors.KindInvalidCredentials, "bad"))
			client.EXPECT().CheckSession(gomock.Any()).Return(testutil.Admin(), nil)
			client.EXPECT().Logout(gomock.Any()).Return(tt.err)

			store.CheckSession(context.Background())
			_, _ = store.Login(context.Background(), "x@y.z", "pw")
			require.True(t, store.IsAuthenticated())
			require.NotEmpty(t, store.State().Error)

			store.Logout(context.Background())

			st := store.State()
			assert.Nil(t, st.User)
			assert.Empty(t, st.Error)
			assert.False(t, st.Loading)
		})
	}
}

func TestAuthStore_LoadingSpansEveryOperation(t *testing.T) {
	fail := apperrors.New(apperrors.KindServerError, "down")
	ops := []struct {
		name   string
		expect func(c *mocks.MockSessionClient, check func())
		run    func(s *AuthStore)
	}{
		{
			name: "check session",
			expect: func(c *mocks.MockSessionClient, check func()) {
				c.EXPECT().CheckSession(gomock.Any()).DoAndReturn(func(context.Context) (domainauth.UserIdentity, error) {
					check()
					return domainauth.UserIdentity{}, fail
				})
			},
			run: func(s *AuthStore) { s.CheckSession(context.Background()) },
		},
		{
			name: "login",
			expect: func(c *mocks.MockSessionClient, check func()) {
				c.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(context.Context, string, string) (domainauth.UserIdentity, error) {
						check()
						return domainauth.UserIdentity{}, fail
					})
			},
			run: func(s *AuthStore) { _, _ = s.Login(context.Background(), "a@b.com", "pw") },
		},
		{
			name: "signup",
			expect: func(c *mocks.MockSessionClient, check func()) {
				c.EXPECT().Signup(gomock.Any(), gomock.Any()).
					DoAndReturn(func(context.Context, domainauth.SignupProfile) (domainauth.UserIdentity, error) {
						check()
						return domainauth.UserIdentity{}, fail
					})
			},
			run: func(s *AuthStore) { _, _ = s.Signup(context.Background(), domainauth.SignupProfile{}) },
		},
		{
			name: "logout",
			expect: func(c *mocks.MockSessionClient, check func()) {
				c.EXPECT().Logout(gomock.Any()).DoAndReturn(func(context.Context) error {
					check()
					return fail
				})
			},
			run: func(s *AuthStore) { s.Logout(context.Background()) },
		},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			store, client := newStore(t)
			called := false
			op.expect(client, func() {
				called = true
				assert.True(t, store.State().Loading)
			})

			op.run(store)

			assert.True(t, called)
			assert.False(t, store.State().Loading)
		})
	}
}

func TestAuthStore_PanicReleasesLoading(t *testing.T) {
	store, client := newStore(t)
	client.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string) (domainauth.UserIdentity, error) {
			panic("transport exploded")
		})

	assert.Panics(t, func() { _, _ = store.Login(context.Background(), "a@b.com", "pw") })
	assert.False(t, store.State().Loading)
}

func TestAuthStore_LoadingHeldWhileAnyOperationInFlight(t *testing.T) {
	store, client := newStore(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	client.EXPECT().CheckSession(gomock.Any()).DoAndReturn(func(context.Context) (domainauth.UserIdentity, error) {
		close(entered)
		<-release
		return testutil.Student(), nil
	})
	client.EXPECT().Logout(gomock.Any()).Return(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.CheckSession(context.Background())
	}()
	<-entered

	store.Logout(context.Background())
	assert.True(t, store.State().Loading, "check session still in flight")

	close(release)
	wg.Wait()
	st := store.State()
	assert.False(t, st.Loading)
	assert.NotNil(t, st.User, "last writer wins")
}

func TestAuthStore_Expire(t *testing.T) {
	store, client := newStore(t)
	assert.False(t, store.Expire())

	client.EXPECT().CheckSession(gomock.Any()).Return(testutil.Student(), nil)
	store.CheckSession(context.Background())

	assert.True(t, store.Expire())
	assert.False(t, store.IsAuthenticated())
	assert.False(t, store.Expire())
}

func TestAuthStore_Subscribe(t *testing.T) {
	store, client := newStore(t)
	client.EXPECT().CheckSession(gomock.Any()).Return(testutil.Teacher(), nil).Times(2)

	var seen []domainauth.AuthState
	unsubscribe := store.Subscribe(func(st domainauth.AuthState) { seen = append(seen, st) })

	store.CheckSession(context.Background())
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[1].Loading)
	require.NotNil(t, seen[1].User)
	assert.Equal(t, domainauth.RoleTeacher, seen[1].User.Role)

	unsubscribe()
	store.CheckSession(context.Background())
	assert.Len(t, seen, 2)
}
