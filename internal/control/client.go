package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipgrid/internal/ipc"
)

// Client talks to a running daemon over the IPC socket.
type Client struct {
	cc     *grpc.ClientConn
	source string
}

// Dial returns a Client for the socket at path. source names the caller in
// daemon logs. The connection is lazy; the first call dials.
func Dial(path, source string) (*Client, error) {
	// No auth: the socket is local and owner-restricted by the OS.
	cc, err := grpc.NewClient("passthrough:///clipgrid",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return ipc.Dial(ctx, path)
		}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("control client: %w", err)
	}
	return &Client{cc: cc, source: source}, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.cc.Close() }

func (c *Client) ctx(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, sourceKey, c.source)
}

func (c *Client) unary(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(c.ctx(ctx), fullMethod(method), in, out)
}

// Grid returns the current grid.
func (c *Client) Grid(ctx context.Context) (*GridReply, error) {
	out := new(GridReply)
	if err := c.unary(ctx, "Grid", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Select restores slot i to the clipboard and returns the updated grid.
func (c *Client) Select(ctx context.Context, i int) (*GridReply, error) {
	out := new(GridReply)
	if err := c.unary(ctx, "Select", &SlotRequest{Index: i}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Evict frees slot i and returns the updated grid.
func (c *Client) Evict(ctx context.Context, i int) (*GridReply, error) {
	out := new(GridReply)
	if err := c.unary(ctx, "Evict", &SlotRequest{Index: i}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetTracking flips tracking and returns the updated grid.
func (c *Client) SetTracking(ctx context.Context, on bool) (*GridReply, error) {
	out := new(GridReply)
	if err := c.unary(ctx, "SetTracking", &TrackingRequest{On: on}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Copy puts text on the daemon's clipboard. It fills a slot the way an
// outside copy would, once the daemon has seen the change.
func (c *Client) Copy(ctx context.Context, text string) error {
	return c.unary(ctx, "Copy", &CopyRequest{Text: text}, &Empty{})
}

// Quit asks the daemon to exit.
func (c *Client) Quit(ctx context.Context) error {
	return c.unary(ctx, "Quit", &Empty{}, &Empty{})
}

// Watch streams the grid to fn: once immediately, then after every change.
// It returns nil when ctx ends or the daemon closes the stream, and the
// first error from fn otherwise.
func (c *Client) Watch(ctx context.Context, fn func(*GridReply) error) error {
	desc := &ServiceDesc.Streams[0]
	stream, err := c.cc.NewStream(c.ctx(ctx), desc, fullMethod(desc.StreamName))
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		g := new(GridReply)
		if err := stream.RecvMsg(g); err != nil {
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				return nil
			}
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
	}
}

// Describe strips the gRPC framing from a control error.
func Describe(err error) string {
	if st, ok := status.FromError(err); ok {
		return st.Message()
	}
	return err.Error()
}
