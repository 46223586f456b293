package result_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/result"
)

func TestNewSuccess(t *testing.T) {
	value := "success value"
	successResult := result.NewSuccess(&value)

	assert.True(t, successResult.IsSuccess())
	assert.False(t, successResult.IsError())

	val, err := successResult.Value()
	assert.Nil(t, err)
	assert.Equal(t, value, *val)
	assert.Equal(t, &value, successResult.ToValue())
}

func TestNewFailure(t *testing.T) {
	testErr := blame.NewBasicBlame("test-error")
	errorResult := result.NewFailure[any](testErr)

	assert.False(t, errorResult.IsSuccess())
	assert.True(t, errorResult.IsError())

	val, err := errorResult.Value()
	assert.Nil(t, val)
	assert.Equal(t, testErr, err)
	assert.Equal(t, testErr, errorResult.Error())
	assert.Nil(t, errorResult.ToValue())
}

func TestToResult(t *testing.T) {
	value := "success value"
	successResult := result.ToResult(&value, nil)
	assert.IsType(t, &result.Success[string]{}, successResult)

	errorResult := result.ToResult[string](nil, blame.NewBasicBlame("test-error"))
	assert.IsType(t, &result.Failure[string]{}, errorResult)
}

func TestCastFailure(t *testing.T) {
	value := "success value"
	successResult := result.NewSuccess(&value)

	castResult := result.CastFailure[string, int](successResult)
	assert.IsType(t, &result.Failure[int]{}, castResult)
	assert.Equal(t, "success-cannot-produce-error", castResult.Error().FetchErrCode().String())

	testErr := blame.NewBasicBlame("test-error")
	castErrorResult := result.CastFailure[string, int](result.NewFailure[string](testErr))
	assert.Same(t, testErr, castErrorResult.Error())
}

func TestMapError(t *testing.T) {
	value := "success value"
	mapped := result.MapError[string, int](result.NewSuccess(&value), func(b blame.Blame) blame.Blame {
		return blame.NewBasicBlame("mapped-error")
	})
	assert.Equal(t, "success-cannot-map-with-error", mapped.Error().FetchErrCode().String())

	cause := errors.New("boom")
	failed := result.NewFailure[string](blame.InternalServerError(cause))
	mapped = result.MapError[string, int](failed, func(b blame.Blame) blame.Blame {
		return blame.SubjectHandlerError("svc.y", b)
	})
	require.True(t, mapped.IsError())
	assert.Equal(t, blame.ErrorSubjectHandlerFailed, mapped.Error().FetchErrCode())
	assert.ErrorIs(t, mapped.Error(), cause)
}

func TestMap(t *testing.T) {
	value := 21
	doubled := result.Map(result.NewSuccess(&value), func(v *int) (*int, blame.Blame) {
		out := *v * 2
		return &out, nil
	})
	require.True(t, doubled.IsSuccess())
	assert.Equal(t, 42, *doubled.ToValue())

	failed := result.Map(result.NewFailure[int](blame.TransportClosedError()), func(v *int) (*string, blame.Blame) {
		t.Fatal("must not be called")
		return nil, nil
	})
	assert.True(t, failed.IsError())
	assert.Equal(t, blame.ErrorTransportClosed, failed.Error().FetchErrCode())
}
