package httpdelegate

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Delegate is implemented by the host application to actually perform an
// HTTP request out of process; DelegatingClient only tracks the
// request-id -> callback mapping.
type Delegate interface {
	SendRequest(requestID uint32, req Request)
}

// DelegatingClient is a Client that hands requests off to a Delegate and
// matches responses back to callbacks by a monotonically allocated request
// id, since the delegate may answer out of order or asynchronously.
type DelegatingClient struct {
	delegate Delegate
	logger   *logrus.Logger

	mu            sync.Mutex
	nextRequestID uint32
	callbacks     map[uint32]func(resp *Response)
}

// NewDelegatingClient wraps delegate in a Client.
func NewDelegatingClient(delegate Delegate, logger *logrus.Logger) *DelegatingClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &DelegatingClient{
		delegate:  delegate,
		logger:    logger,
		callbacks: make(map[uint32]func(resp *Response)),
	}
}

// SendRequest registers callback under a fresh request id and asks the
// delegate to perform req. callback is invoked exactly once, from whatever
// goroutine later calls ReceivedResponse or RequestFailed with that id.
func (c *DelegatingClient) SendRequest(req Request, callback func(resp *Response)) {
	c.logger.Debugf("httpdelegate: send_request url=%s method=%s", req.URL, req.Method)

	c.mu.Lock()
	requestID := c.nextRequestID
	c.nextRequestID++
	c.callbacks[requestID] = callback
	c.mu.Unlock()

	c.delegate.SendRequest(requestID, req)
}

// ReceivedResponse delivers a response for requestID to its registered
// callback. An unknown request id is logged and otherwise ignored: it can
// only mean the delegate answered twice or after this client was replaced.
func (c *DelegatingClient) ReceivedResponse(requestID uint32, resp *Response) {
	callback := c.popCallback(requestID)
	if callback == nil {
		c.logger.Errorf("httpdelegate: received_response: unknown request id %d", requestID)
		return
	}
	if resp != nil {
		c.logger.Debugf("httpdelegate: received_response id=%d status=%d", requestID, resp.Status.Code)
	} else {
		c.logger.Debugf("httpdelegate: received_response id=%d: request failed", requestID)
	}
	callback(resp)
}

// RequestFailed is shorthand for ReceivedResponse(requestID, nil).
func (c *DelegatingClient) RequestFailed(requestID uint32) {
	c.ReceivedResponse(requestID, nil)
}

func (c *DelegatingClient) popCallback(requestID uint32) func(resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	callback, ok := c.callbacks[requestID]
	if !ok {
		return nil
	}
	delete(c.callbacks, requestID)
	return callback
}
