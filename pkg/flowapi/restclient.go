package flowapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flowwatch/internal/model"

	"github.com/pkg/errors"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 1 << 20

// RESTClient fetches fund-flow samples over HTTP.
type RESTClient struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

func NewRESTClient(baseURL, path string, timeout time.Duration) *RESTClient {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       path,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchSample fetches the current sample for one instrument.
// Connection problems and non-200 statuses wrap model.ErrTransport; bodies
// that fail validation wrap model.ErrMalformedPayload.
func (c *RESTClient) FetchSample(ctx context.Context, instrumentID string) (model.Sample, error) {
	endpoint := c.baseURL + c.path + "?symbol=" + url.QueryEscape(instrumentID)

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Sample{}, errors.Wrapf(model.ErrTransport, "creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Sample{}, errors.Wrapf(model.ErrTransport, "making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.Sample{}, errors.Wrapf(model.ErrTransport, "reading body: %v", err)
	}

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		return model.Sample{}, errors.Wrapf(model.ErrTransport, "status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	sample, err := ParseSample(body)
	if err != nil {
		return model.Sample{}, errors.WithMessagef(err, "symbol %s", instrumentID)
	}
	return sample, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
