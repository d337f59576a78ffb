// Package errors_test exercises the AppError type, factory functions, and
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/urban-dds/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"region not found", errors.ErrCodeRegionNotFound, "No region found for address: x"},
		{"validation", errors.ErrCodeValidation, "metrics must be numbers between 0 and 100"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.ErrCodePublicDataAPIError, "public-data-api-error:22:LIMITED")
	assert.Equal(t, "[SRC_002] public-data-api-error:22:LIMITED", ae.Error())

	withDetail := ae.WithDetail("endpoint=getBrTitleInfo")
	assert.Equal(t, "[SRC_002] public-data-api-error:22:LIMITED: endpoint=getBrTitleInfo", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrCodeInternal, "ignored %d", 1))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := errors.New(errors.ErrCodeRegionNotFound, "missing")
	outer := errors.Wrap(inner, errors.ErrCodeUnknown, "resolving region")

	assert.Equal(t, errors.ErrCodeRegionNotFound, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestIsCode_TraversesChain(t *testing.T) {
	root := errors.New(errors.ErrCodeTimeout, "deadline")
	mid := errors.Wrap(root, errors.ErrCodePublicDataRequestFailed, "request failed")
	top := fmt.Errorf("collector: %w", mid)

	assert.True(t, errors.IsCode(top, errors.ErrCodePublicDataRequestFailed))
	assert.True(t, errors.IsCode(top, errors.ErrCodeTimeout))
	assert.False(t, errors.IsCode(top, errors.ErrCodeValidation))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrCodeTimeout))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeTimeout))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(errors.Validation("bad")))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(stderrors.New("plain")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeRegionNotFound, "x")))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, errors.IsValidation(errors.Validation("x")))
	assert.True(t, errors.IsValidation(errors.InvalidParam("x")))
	assert.False(t, errors.IsValidation(errors.Internal("x")))
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	ae := errors.Internal("boom").WithCause(cause)
	assert.ErrorIs(t, ae, cause)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithCause(cause))
	assert.Nil(t, nilErr.WithDetail("x"))
}

//Personal.AI order the ending
