package httpdelegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDelegate struct {
	sent []struct {
		id  uint32
		req Request
	}
}

func (d *fakeDelegate) SendRequest(requestID uint32, req Request) {
	d.sent = append(d.sent, struct {
		id  uint32
		req Request
	}{requestID, req})
}

func TestDelegatingClientMatchesResponseToCallback(t *testing.T) {
	delegate := &fakeDelegate{}
	client := NewDelegatingClient(delegate, nil)

	var got *Response
	client.SendRequest(Request{Method: MethodGet, URL: "https://example.invalid/call/1"}, func(resp *Response) {
		got = resp
	})

	require.Len(t, delegate.sent, 1)
	requestID := delegate.sent[0].id

	client.ReceivedResponse(requestID, &Response{Status: Status{Code: 200}, Body: []byte("ok")})
	require.NotNil(t, got)
	assert.True(t, got.Status.IsSuccess())
	assert.Equal(t, []byte("ok"), got.Body)
}

func TestDelegatingClientRequestFailedYieldsNilResponse(t *testing.T) {
	delegate := &fakeDelegate{}
	client := NewDelegatingClient(delegate, nil)

	called := false
	var got *Response
	client.SendRequest(Request{Method: MethodPost, URL: "https://example.invalid/call/1/join"}, func(resp *Response) {
		called = true
		got = resp
	})

	requestID := delegate.sent[0].id
	client.RequestFailed(requestID)

	assert.True(t, called)
	assert.Nil(t, got)
}

func TestDelegatingClientAllocatesMonotonicRequestIDs(t *testing.T) {
	delegate := &fakeDelegate{}
	client := NewDelegatingClient(delegate, nil)

	for i := 0; i < 3; i++ {
		client.SendRequest(Request{Method: MethodGet, URL: "https://example.invalid"}, func(*Response) {})
	}

	require.Len(t, delegate.sent, 3)
	assert.Equal(t, uint32(0), delegate.sent[0].id)
	assert.Equal(t, uint32(1), delegate.sent[1].id)
	assert.Equal(t, uint32(2), delegate.sent[2].id)
}

func TestDelegatingClientUnknownRequestIDIsIgnored(t *testing.T) {
	delegate := &fakeDelegate{}
	client := NewDelegatingClient(delegate, nil)
	assert.NotPanics(t, func() {
		client.ReceivedResponse(999, &Response{Status: Status{Code: 200}})
	})
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, (Status{Code: 200}).IsSuccess())
	assert.True(t, (Status{Code: 404}).IsError())
	assert.True(t, StatusGroupCallNotStarted.IsError())
	assert.Equal(t, TypeRequestError, StatusRequestFailed.Type())
	assert.Equal(t, TypeResponseError, StatusInvalidResponseJSON.Type())
}
