package capture

import (
	"context"
	"errors"
	"testing"

	"market-assistant/src/helpers"
	"market-assistant/src/models"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledReturnsNil(t *testing.T) {
	assert.Nil(t, New(models.MCaptureConfig{Enabled: false}, nil))
}

func TestCaptureFailureIsPermissionDenied(t *testing.T) {
	c := New(models.MCaptureConfig{Enabled: true, PageURL: "http://127.0.0.1:8000/", TimeoutSeconds: 1}, nil)
	require.NotNil(t, c)

	var actions int
	c.run = func(ctx context.Context, a ...chromedp.Action) error {
		actions = len(a)
		return errors.New("no browser")
	}

	img, err := c.Capture(context.Background())
	assert.Nil(t, img)
	assert.True(t, helpers.IsKind(err, helpers.KindPermissionDenied))
	assert.Equal(t, 4, actions)
}

func TestCaptureReturnsScreenshot(t *testing.T) {
	c := New(models.MCaptureConfig{Enabled: true, RemoteURL: "ws://127.0.0.1:9222", PageURL: "http://127.0.0.1:8000/"}, nil)
	c.run = func(ctx context.Context, a ...chromedp.Action) error { return nil }

	img, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.Empty(t, img)
}
