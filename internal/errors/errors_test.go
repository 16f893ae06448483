package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"gtdash/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrap(core.NewInvalidDimensionError("bogus"), "aggregate failed")

	assert.True(t, stderrors.Is(err, core.ErrInvalidDimension))
	assert.Equal(t, CodeInvalidDimension, GetCode(err))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Contains(t, err.Error(), "aggregate failed")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
}

func TestWrapAppErrorKeepsCode(t *testing.T) {
	inner := ConfigInvalid("PORT is required")
	err := Wrapf(inner, "loading %s", "server")

	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "loading server: PORT is required", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{core.NewInvalidGroupKeyError("x"), http.StatusBadRequest},
		{core.NewUnknownChartError("pie"), http.StatusNotFound},
		{core.NewDataQualityError("nkill", "all values missing"), http.StatusServiceUnavailable},
		{InvalidInput("bad body"), http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, test := range tests {
		assert.Equal(t, test.status, HTTPStatus(test.err), "%v", test.err)
	}
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.Equal(t, "", GetCode(nil))
}
