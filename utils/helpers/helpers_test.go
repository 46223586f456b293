package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/stretchr/testify/assert"
)

func TestJoinSubject(t *testing.T) {
	assert.Equal(t, "_reply.orders.abc", JoinSubject("_reply", "orders", "abc"))
	assert.Equal(t, "v1.echo", JoinSubject("", "v1.", ".echo"))
	assert.Equal(t, "echo", JoinSubject("", "echo"))
	assert.Empty(t, JoinSubject())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty(0))
	assert.True(t, IsEmpty([]string{}))
	assert.True(t, IsEmpty(map[string]string(nil)))
	assert.True(t, IsEmpty(time.Time{}))
	assert.True(t, IsEmpty[*int](nil))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty([]int{1}))
	assert.False(t, IsEmpty(GetDefaultLanguageTag()))
}

func TestFetchStatusCode(t *testing.T) {
	assert.Equal(t, constant.StatusForbidden, FetchStatusCode(constant.Forbidden))
	assert.Equal(t, constant.StatusUnauthorized, FetchStatusCode(constant.Unauthorized))
	assert.Equal(t, constant.StatusRequestTimeout, FetchStatusCode(constant.RequestTimeout))
	assert.Equal(t, constant.StatusClientClosed, FetchStatusCode(constant.ClientClosed))
	assert.Equal(t, constant.StatusInternalError, FetchStatusCode("SomethingElse"))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv(constant.Environment, "production")
	assert.Equal(t, "production", GetEnvironment())
	assert.True(t, IsProdEnvironment())

	t.Setenv(constant.Environment, "")
	t.Setenv(constant.RunMode, "uat")
	assert.Equal(t, "uat", GetEnvironment())
	assert.False(t, IsProdEnvironment())

	assert.Equal(t, "prod", GetEnvironmentSlug("Production"))
	assert.Equal(t, "dev", GetEnvironmentSlug("local"))
}

func TestFetchErrorStack(t *testing.T) {
	assert.Equal(t, "a; b", FetchErrorStack([]error{errors.New("a"), nil, errors.New("b")}))
}

func TestRecoverException(t *testing.T) {
	assert.NoError(t, RecoverException(nil))

	err := RecoverException("boom")
	assert.EqualError(t, err, "panic: boom")

	cause := errors.New("nil map")
	err = RecoverException(cause)
	assert.ErrorIs(t, err, cause)
}
