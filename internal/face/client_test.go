package face

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/face/verify", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "stored", req["stored_face"])
		assert.Equal(t, "provided", req["provided_face"])

		json.NewEncoder(w).Encode(VerifyResult{Match: true, Confidence: 0.93, Distance: 0.31})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	result, err := c.Verify(context.Background(), "stored", "provided")
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.InDelta(t, 0.93, result.Confidence, 1e-9)
}

func TestQuality(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/face/quality", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "selfie", req["face_data"])

		json.NewEncoder(w).Encode(QualityResult{Valid: false, QualityScore: 0.2, Issues: []string{"too dark"}})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	result, err := c.Quality(context.Background(), "selfie")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"too dark"}, result.Issues)
}

func TestErrorStatusIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	_, err := c.Verify(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestUnreachableServiceIsAnError(t *testing.T) {
	// Grab a port that nothing listens on.
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c := NewHTTPClient(base, 200*time.Millisecond)
	_, err := c.Verify(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestMissingBaseURL(t *testing.T) {
	c := NewHTTPClient("", time.Second)
	_, err := c.Quality(context.Background(), "selfie")
	assert.Error(t, err)
}

func TestContextCancellation(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewHTTPClient(ts.URL, 10*time.Second)
	_, err := c.Verify(ctx, "a", "b")
	assert.Error(t, err)
}
