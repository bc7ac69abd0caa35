// Package control implements the clipgrid control service: a small gRPC API
// served on the local IPC socket that lets the CLI and the terminal UI read
// the grid, copy text in, select and evict slots, flip tracking and stop the
// daemon.
//
// There is no protobuf schema. Messages are plain Go structs carried by a
// JSON codec, and the service descriptor below is registered by hand.
package control

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipgrid/internal/slots"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "clipgrid.v1.Control"

// sourceKey carries the caller name ("cli", "ui") for logging.
const sourceKey = "x-clipgrid-source"

// Grid is the slot manager as seen by the service.
type Grid interface {
	View(ctx context.Context) (slots.View, error)
	Select(ctx context.Context, i int) error
	Evict(ctx context.Context, i int) error
	SetTracking(ctx context.Context, on bool) error
	Copy(ctx context.Context, text string) error
}

// ControlServer is the server API for the control service.
type ControlServer interface {
	Grid(context.Context, *Empty) (*GridReply, error)
	Select(context.Context, *SlotRequest) (*GridReply, error)
	Evict(context.Context, *SlotRequest) (*GridReply, error)
	SetTracking(context.Context, *TrackingRequest) (*GridReply, error)
	Copy(context.Context, *CopyRequest) (*Empty, error)
	Quit(context.Context, *Empty) (*Empty, error)
	Watch(*Empty, grpc.ServerStream) error
}

// Server implements ControlServer over a Grid.
type Server struct {
	grid Grid
	quit func()

	mu       sync.Mutex
	watchers map[chan struct{}]struct{}
}

// NewServer returns a Server backed by g. quit is called once per Quit RPC
// after the reply has been queued; it should stop the daemon.
func NewServer(g Grid, quit func()) *Server {
	return &Server{grid: g, quit: quit, watchers: make(map[chan struct{}]struct{})}
}

// Register attaches s to gs.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&ServiceDesc, s)
}

// Grid implements ControlServer.Grid.
func (s *Server) Grid(ctx context.Context, _ *Empty) (*GridReply, error) {
	return s.reply(ctx)
}

// Select implements ControlServer.Select.
func (s *Server) Select(ctx context.Context, req *SlotRequest) (*GridReply, error) {
	slog.Debug("select requested", "slot", req.Index, "source", sourceFromCtx(ctx))
	if err := s.grid.Select(ctx, req.Index); err != nil {
		return nil, toStatus(err)
	}
	return s.reply(ctx)
}

// Evict implements ControlServer.Evict.
func (s *Server) Evict(ctx context.Context, req *SlotRequest) (*GridReply, error) {
	slog.Debug("evict requested", "slot", req.Index, "source", sourceFromCtx(ctx))
	if err := s.grid.Evict(ctx, req.Index); err != nil {
		return nil, toStatus(err)
	}
	return s.reply(ctx)
}

// SetTracking implements ControlServer.SetTracking.
func (s *Server) SetTracking(ctx context.Context, req *TrackingRequest) (*GridReply, error) {
	if err := s.grid.SetTracking(ctx, req.On); err != nil {
		return nil, toStatus(err)
	}
	return s.reply(ctx)
}

// Copy implements ControlServer.Copy.
func (s *Server) Copy(ctx context.Context, req *CopyRequest) (*Empty, error) {
	if req.Text == "" {
		return nil, status.Error(codes.InvalidArgument, "nothing to copy")
	}
	slog.Debug("copy requested", "bytes", len(req.Text), "source", sourceFromCtx(ctx))
	if err := s.grid.Copy(ctx, req.Text); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// Quit implements ControlServer.Quit.
func (s *Server) Quit(ctx context.Context, _ *Empty) (*Empty, error) {
	slog.Info("quit requested", "source", sourceFromCtx(ctx))
	if s.quit != nil {
		go s.quit()
	}
	return &Empty{}, nil
}

// Watch implements ControlServer.Watch. It sends the grid once, then again
// after every change reported through Notify.
func (s *Server) Watch(_ *Empty, stream grpc.ServerStream) error {
	ctx := stream.Context()
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.watchers, ch)
		s.mu.Unlock()
	}()

	slog.Debug("watch started", "source", sourceFromCtx(ctx))
	for {
		g, err := s.reply(ctx)
		if err != nil {
			return err
		}
		if err := stream.SendMsg(g); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
		}
	}
}

// Notify wakes every Watch stream. It never blocks, so it is safe to call
// from the slot manager's observer.
func (s *Server) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Server) reply(ctx context.Context) (*GridReply, error) {
	v, err := s.grid.View(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return NewGridReply(v), nil
}

// toStatus maps slot manager errors to gRPC status codes.
func toStatus(err error) error {
	var access *slots.ClipboardAccessError
	switch {
	case errors.Is(err, slots.ErrSlotRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, slots.ErrEmptySlot):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &access):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, slots.ErrStopped), errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func sourceFromCtx(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(sourceKey); len(vals) > 0 {
			return vals[0]
		}
	}
	return "unknown"
}

// ── service descriptor ─────────────────────────────────────────────────────

// ServiceDesc is the grpc.ServiceDesc for the control service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Grid", func(s ControlServer, ctx context.Context, in *Empty) (any, error) {
			return s.Grid(ctx, in)
		}),
		unary("Select", func(s ControlServer, ctx context.Context, in *SlotRequest) (any, error) {
			return s.Select(ctx, in)
		}),
		unary("Evict", func(s ControlServer, ctx context.Context, in *SlotRequest) (any, error) {
			return s.Evict(ctx, in)
		}),
		unary("SetTracking", func(s ControlServer, ctx context.Context, in *TrackingRequest) (any, error) {
			return s.SetTracking(ctx, in)
		}),
		unary("Copy", func(s ControlServer, ctx context.Context, in *CopyRequest) (any, error) {
			return s.Copy(ctx, in)
		}),
		unary("Quit", func(s ControlServer, ctx context.Context, in *Empty) (any, error) {
			return s.Quit(ctx, in)
		}),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(ControlServer).Watch(in, stream)
			},
		},
	},
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

func unary[Req any](name string, call func(ControlServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(ControlServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}
