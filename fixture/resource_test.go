package fixture

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceScopesHandleLifetime(t *testing.T) {
	opened, closed := 0, 0
	res := NewResource(
		func() (int, error) { opened++; return 42, nil },
		func(int) error { closed++; return nil },
	)

	_, err := res.Handle()
	assert.ErrorIs(t, err, ErrResourceNotOpen)

	require.NoError(t, res.SetUp())
	h, err := res.Handle()
	require.NoError(t, err)
	assert.Equal(t, 42, h)

	require.NoError(t, res.TearDown())
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)

	_, err = res.Handle()
	assert.ErrorIs(t, err, ErrResourceNotOpen)
}

func TestResourceOpenFaultLeavesHandleClosed(t *testing.T) {
	errOpen := errors.New("no connection")
	res := NewResource(
		func() (string, error) { return "", errOpen },
		func(string) error { return nil },
	)
	assert.ErrorIs(t, res.SetUp(), errOpen)
	assert.ErrorIs(t, res.TearDown(), ErrResourceNotOpen)
}

// An HTTP server is the canonical external collaborator: opened in setUp,
// used by the body, released in tearDown, with the scope guaranteeing the
// release even when the body fails.
func TestHTTPServerResourceFixture(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	server := NewResource(
		func() (*httptest.Server, error) { return httptest.NewServer(handler), nil },
		func(s *httptest.Server) error { s.Close(); return nil },
	)

	out := Run(server.SetUp, server.TearDown, func() {
		resp, err := http.Get(server.MustHandle().URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 204, resp.StatusCode)
	})
	require.Nil(t, out.SetupFault)
	require.Nil(t, out.TeardownFault)
	assert.Equal(t, 1, len(requestsCh))

	// body fault: the server must still be closed afterward
	out = Run(server.SetUp, server.TearDown, func() {
		panic("body exploded mid-request")
	})
	assert.NotNil(t, out.BodyPanic)
	_, err := server.Handle()
	assert.ErrorIs(t, err, ErrResourceNotOpen, "teardown must have released the server")
}
