// Package face wraps the HTTP face-analysis service. The client only reports
// what the service said or that it could not be reached; the fail-closed /
// fail-open policy for those outcomes belongs to the auth service.
package face

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client abstracts face-analysis interaction.
type Client interface {
	Verify(ctx context.Context, storedFace, providedFace string) (VerifyResult, error)
	Quality(ctx context.Context, faceData string) (QualityResult, error)
}

// VerifyResult is the match decision for a stored/provided embedding pair.
type VerifyResult struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
}

// QualityResult scores a newly captured face image for enrollment.
type QualityResult struct {
	Valid        bool     `json:"valid"`
	QualityScore float64  `json:"quality_score"`
	Issues       []string `json:"issues"`
}

type verifyRequest struct {
	StoredFace   string `json:"stored_face"`
	ProvidedFace string `json:"provided_face"`
}

type qualityRequest struct {
	FaceData string `json:"face_data"`
}

// HTTPClient calls the face service's HTTP endpoints.
type HTTPClient struct {
	client *http.Client
	base   string
}

// NewHTTPClient builds a client for the given base URL with an explicit
// request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		base:   baseURL,
	}
}

// Verify submits a stored and a presented embedding for match scoring.
func (c *HTTPClient) Verify(ctx context.Context, storedFace, providedFace string) (VerifyResult, error) {
	var out VerifyResult
	err := c.post(ctx, "/api/face/verify", verifyRequest{StoredFace: storedFace, ProvidedFace: providedFace}, &out)
	return out, err
}

// Quality submits captured face data for enrollment quality scoring.
func (c *HTTPClient) Quality(ctx context.Context, faceData string) (QualityResult, error) {
	var out QualityResult
	err := c.post(ctx, "/api/face/quality", qualityRequest{FaceData: faceData}, &out)
	return out, err
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	if c.base == "" {
		return errors.New("face service url not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
