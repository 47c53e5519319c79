package httpdelegate

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DirectClient is a Client that issues requests with net/http directly,
// for hosts that don't need to proxy control-plane calls through a
// platform-specific delegate.
type DirectClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewDirectClient builds a DirectClient with the given request timeout.
func NewDirectClient(timeout time.Duration, logger *logrus.Logger) *DirectClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &DirectClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SendRequest performs req synchronously and invokes callback with the
// result before returning. A nil response indicates the request failed
// before a status code was available.
func (c *DirectClient) SendRequest(req Request, callback func(resp *Response)) {
	c.logger.Debugf("httpdelegate: direct request url=%s method=%s", req.URL, req.Method)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequest(req.Method.String(), req.URL, body)
	if err != nil {
		c.logger.Errorf("httpdelegate: building request failed: %v", err)
		callback(nil)
		return
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Errorf("httpdelegate: request failed: %v", err)
		callback(nil)
		return
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.logger.Errorf("httpdelegate: reading response body failed: %v", err)
		callback(&Response{Status: StatusRequestFailed})
		return
	}

	callback(&Response{
		Status: Status{Code: uint16(httpResp.StatusCode)},
		Body:   respBody,
	})
}
