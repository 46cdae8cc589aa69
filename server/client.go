package server

import (
	"context"
	"iter"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/stockagent/kernel"
	"github.com/tailored-agentic-units/stockagent/outcome"
)

// Client calls a remote Server over the Connect JSON protocol.
type Client struct {
	invoke *connect.Client[structpb.Struct, structpb.Struct]
	stream *connect.Client[structpb.Struct, structpb.Struct]
	reset  *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient creates a Client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		invoke: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+InvokeProcedure, connect.WithProtoJSON()),
		stream: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+StreamProcedure, connect.WithProtoJSON()),
		reset:  connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+ResetProcedure, connect.WithProtoJSON()),
	}
}

// Invoke runs a remote invocation to completion.
func (c *Client) Invoke(ctx context.Context, sessionID, query string) (outcome.Outcome, error) {
	msg, err := NewRequest(sessionID, query)
	if err != nil {
		return outcome.Outcome{}, err
	}

	resp, err := c.invoke.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return outcome.Outcome{}, err
	}
	return ParseOutcome(resp.Msg)
}

// Stream runs a remote invocation and yields its progress events. Breaking
// out of the range closes the stream.
func (c *Client) Stream(ctx context.Context, sessionID, query string) iter.Seq2[kernel.ProgressEvent, error] {
	return func(yield func(kernel.ProgressEvent, error) bool) {
		msg, err := NewRequest(sessionID, query)
		if err != nil {
			yield(kernel.ProgressEvent{}, err)
			return
		}

		stream, err := c.stream.CallServerStream(ctx, connect.NewRequest(msg))
		if err != nil {
			yield(kernel.ProgressEvent{}, err)
			return
		}
		defer stream.Close()

		for stream.Receive() {
			if !yield(ParseEvent(stream.Msg()), nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(kernel.ProgressEvent{}, err)
		}
	}
}

// Reset clears a remote session.
func (c *Client) Reset(ctx context.Context, sessionID string) error {
	msg, err := NewResetRequest(sessionID)
	if err != nil {
		return err
	}
	_, err = c.reset.CallUnary(ctx, connect.NewRequest(msg))
	return err
}
