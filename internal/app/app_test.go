package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usersvc/internal/config"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := New(config.WithDisableFlagsParsing(true))
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestServeAndShutdown(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")

	theApp, err := New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	defer theApp.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- theApp.Serve(ctx, listener)
	}()

	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())
	client := resty.New()

	resp, err := client.R().Post(baseURL + "/user/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "0", resp.String())

	resp, err = client.R().Get(baseURL + "/users")
	require.NoError(t, err)
	assert.Equal(t, "0", resp.String())

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
