package xerrors

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, "", Classify(nil))
	assert.Equal(t, CodeInvalidCredentials, Classify(ErrInvalidCredentials))
	assert.Equal(t, CodePermissionDenied, Classify(ErrPermissionDenied))
	assert.Equal(t, CodeNotFound, Classify(ErrNotFound))
	assert.Equal(t, CodeRateLimited, Classify(ErrRateLimited))
	assert.Equal(t, CodeNetwork, Classify(ErrNetwork))
	assert.Equal(t, CodeUnknown, Classify(errors.New("something else")))
}

func TestClassifySurvivesWrapping(t *testing.T) {
	wrapped := Wrap(Wrap(ErrInvalidCredentials, "login"), "handler")
	assert.Equal(t, CodeInvalidCredentials, Classify(wrapped))
}

func TestIsNetwork(t *testing.T) {
	assert.True(t, IsNetwork(ErrNetwork))
	assert.True(t, IsNetwork(context.DeadlineExceeded))
	assert.True(t, IsNetwork(&net.OpError{Op: "dial", Err: os.ErrDeadlineExceeded}))
	assert.False(t, IsNetwork(ErrNotFound))
	assert.False(t, IsNetwork(errors.New("plain")))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
}

func TestMessageOrDefault(t *testing.T) {
	assert.Equal(t, "boom", MessageOrDefault(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", MessageOrDefault(nil, "fallback"))
}
