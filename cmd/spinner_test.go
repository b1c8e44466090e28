package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSpinnerShowsLabelWhileWaiting(t *testing.T) {
	output := &bytes.Buffer{}

	err := runRequestSpinner(context.Background(), output, "Reading member1...", func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Reading member1...")
}

func TestRequestSpinnerReturnsRequestError(t *testing.T) {
	requestErr := errors.New("failed to read from vault with status code 500")

	err := runRequestSpinner(context.Background(), &bytes.Buffer{}, "Reading member1...", func(context.Context) error {
		return requestErr
	})

	require.ErrorIs(t, err, requestErr)
}

func TestRunWithSpinnerSkipsNonTerminalOutput(t *testing.T) {
	output := &bytes.Buffer{}
	called := false

	err := runWithSpinner(context.Background(), output, "Writing member1...", func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, output.String())
}
