package grpc_control

import (
	"context"
	"errors"
	"fmt"

	"market-assistant/src/dashboard"
	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "dashboard.Control"

// ControlServer is the server API for the dashboard.Control service.
type ControlServer interface {
	GetStatus(context.Context, *Empty) (*StatusResponse, error)
	SetSelection(context.Context, *SetSelectionRequest) (*ControlResponse, error)
	Refresh(context.Context, *Empty) (*ControlResponse, error)
	SetCredential(context.Context, *SetCredentialRequest) (*ControlResponse, error)
}

// ControlService drives the running dashboard from outside the process.
type ControlService struct {
	Dashboard   interfaces.IDashboard
	Credentials interfaces.ICredentialStore
	Logger      *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(d interfaces.IDashboard, creds interfaces.ICredentialStore, log *logger.Logger) *ControlService {
	if log == nil {
		log = logger.NewLogger(nil, "ControlService")
	}
	return &ControlService{Dashboard: d, Credentials: creds, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *Empty) (*StatusResponse, error) {
	return s.status(s.Dashboard.Snapshot()), nil
}

func (s *ControlService) status(snap models.MDashboardSnapshot) *StatusResponse {
	resp := &StatusResponse{
		Selection:     snap.Selection,
		Generation:    snap.Generation,
		Loading:       snap.Loading,
		Error:         snap.Error,
		PointCount:    int32(len(snap.Series.Points)),
		CandleCount:   int32(len(snap.Series.Candles)),
		HasCredential: s.Credentials != nil && s.Credentials.APIKey() != "",
	}
	if !snap.LastUpdated.IsZero() {
		resp.LastUpdated = snap.LastUpdated.UnixMilli()
	}
	return resp
}

// -----------------------------------------------------------------------------

func (s *ControlService) SetSelection(ctx context.Context, req *SetSelectionRequest) (*ControlResponse, error) {
	snap, err := s.Dashboard.Select(ctx, models.MChartSelection{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		ChartType: req.ChartType,
	})
	if rpcErr := grpcError(err); rpcErr != nil {
		return nil, rpcErr
	}

	s.Logger.Info("gRPC: selection set to %s/%s/%s", snap.Selection.Symbol, snap.Selection.Timeframe, snap.Selection.ChartType)
	return s.response(snap, err, "Selection updated"), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Refresh(ctx context.Context, req *Empty) (*ControlResponse, error) {
	snap, err := s.Dashboard.Refresh(ctx)
	if rpcErr := grpcError(err); rpcErr != nil {
		return nil, rpcErr
	}
	return s.response(snap, err, "Refreshed"), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) SetCredential(ctx context.Context, req *SetCredentialRequest) (*ControlResponse, error) {
	if s.Credentials == nil {
		return nil, status.Error(codes.Unavailable, "credential store not configured")
	}
	if err := s.Credentials.SetAPIKey(ctx, req.APIKey); err != nil {
		if helpers.IsKind(err, helpers.KindValidation) {
			return nil, status.Error(codes.InvalidArgument, helpers.UserMessage(err))
		}
		s.Logger.Error("gRPC: failed to save credential: %v", err)
		return nil, status.Errorf(codes.Internal, "failed to save credential: %v", err)
	}
	return &ControlResponse{Success: true, Message: "API key updated successfully!"}, nil
}

// -----------------------------------------------------------------------------

// response reports a failed load as an unsuccessful call carrying the
// banner, not as an RPC error.
func (s *ControlService) response(snap models.MDashboardSnapshot, err error, okMessage string) *ControlResponse {
	if err != nil {
		return &ControlResponse{Success: false, Message: snap.Error, Status: s.status(snap)}
	}
	return &ControlResponse{Success: true, Message: okMessage, Status: s.status(snap)}
}

// grpcError maps rejections to status codes. Load failures return nil.
func grpcError(err error) error {
	switch {
	case err == nil:
		return nil
	case helpers.IsKind(err, helpers.KindValidation):
		return status.Error(codes.InvalidArgument, helpers.UserMessage(err))
	case errors.Is(err, dashboard.ErrSuperseded):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return nil
	}
}

// -----------------------------------------------------------------------------
// Service descriptor
// -----------------------------------------------------------------------------

func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&ControlServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(ControlServer, context.Context, *Req) (interface{}, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fmt.Sprintf("/%s/%s", serviceName, method),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ControlServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ControlServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("GetStatus", func(s ControlServer, ctx context.Context, in *Empty) (interface{}, error) {
			return s.GetStatus(ctx, in)
		}),
		unaryHandler("SetSelection", func(s ControlServer, ctx context.Context, in *SetSelectionRequest) (interface{}, error) {
			return s.SetSelection(ctx, in)
		}),
		unaryHandler("Refresh", func(s ControlServer, ctx context.Context, in *Empty) (interface{}, error) {
			return s.Refresh(ctx, in)
		}),
		unaryHandler("SetCredential", func(s ControlServer, ctx context.Context, in *SetCredentialRequest) (interface{}, error) {
			return s.SetCredential(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dashboard/control",
}
