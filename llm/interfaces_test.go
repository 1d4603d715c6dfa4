package llm

import (
	"context"
	"errors"
	"testing"
)

// fakeClient is a scripted Client for decorator tests.
type fakeClient struct {
	responses []*Response
	errs      []error
	calls     int
}

func (f *fakeClient) Synchronous(ctx context.Context, req *Request) (*Response, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return &Response{Message: NewAssistantMessage("ok")}, nil
}

func (f *fakeClient) Stream(ctx context.Context, req *Request) (Stream, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return &fakeStream{}, nil
}

type fakeStream struct {
	events  []*StreamEvent
	current int
}

func (s *fakeStream) Next() bool {
	if s.current >= len(s.events) {
		return false
	}
	s.current++
	return true
}

func (s *fakeStream) Event() *StreamEvent {
	if s.current == 0 || s.current > len(s.events) {
		return nil
	}
	return s.events[s.current-1]
}

func (s *fakeStream) Err() error   { return nil }
func (s *fakeStream) Close() error { return nil }

func TestWrapWithMiddlewareNoMiddleware(t *testing.T) {
	client := &fakeClient{}
	wrapped := WrapWithMiddleware(client)
	if wrapped != client {
		t.Error("Expected no-middleware wrap to return the client unchanged")
	}
}

func TestMiddlewareBeforeRequestModifiesRequest(t *testing.T) {
	client := &fakeClient{}
	var seenModel string

	wrapped := WrapWithMiddleware(client,
		MiddlewareFunc{
			BeforeRequestFunc: func(ctx context.Context, req *Request) (*Request, error) {
				modified := *req
				modified.Model = "overridden"
				return &modified, nil
			},
		},
		MiddlewareFunc{
			BeforeRequestFunc: func(ctx context.Context, req *Request) (*Request, error) {
				seenModel = req.Model
				return req, nil
			},
		},
	)

	_, err := wrapped.Synchronous(context.Background(), &Request{Model: "original"})
	if err != nil {
		t.Fatalf("Synchronous failed: %v", err)
	}
	if seenModel != "overridden" {
		t.Errorf("Expected second middleware to see modified request, got %q", seenModel)
	}
}

func TestMiddlewareBeforeRequestAborts(t *testing.T) {
	client := &fakeClient{}
	abort := errors.New("aborted")

	wrapped := WrapWithMiddleware(client, MiddlewareFunc{
		BeforeRequestFunc: func(ctx context.Context, req *Request) (*Request, error) {
			return nil, abort
		},
	})

	_, err := wrapped.Synchronous(context.Background(), &Request{})
	if !errors.Is(err, abort) {
		t.Errorf("Expected abort error, got %v", err)
	}
	if client.calls != 0 {
		t.Errorf("Expected underlying client not to be called, got %d calls", client.calls)
	}
}

func TestMiddlewareAfterResponseReverseOrder(t *testing.T) {
	client := &fakeClient{}
	var order []string

	after := func(name string) MiddlewareFunc {
		return MiddlewareFunc{
			AfterResponseFunc: func(ctx context.Context, req *Request, resp *Response) (*Response, error) {
				order = append(order, name)
				return resp, nil
			},
		}
	}

	wrapped := WrapWithMiddleware(client, after("first"), after("second"))
	if _, err := wrapped.Synchronous(context.Background(), &Request{}); err != nil {
		t.Fatalf("Synchronous failed: %v", err)
	}

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("Expected AfterResponse in reverse order, got %v", order)
	}
}

func TestMiddlewareOnErrorCanSwallow(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("boom")}}

	wrapped := WrapWithMiddleware(client, MiddlewareFunc{
		OnErrorFunc: func(ctx context.Context, req *Request, err error) error {
			return nil // handled
		},
	})

	resp, err := wrapped.Synchronous(context.Background(), &Request{})
	if err != nil {
		t.Errorf("Expected swallowed error, got %v", err)
	}
	if resp != nil {
		t.Error("Expected nil response when error was swallowed")
	}
}
