// Package rpc exposes the scheduling operations over gRPC for internal
// tools. Messages are google.protobuf.Struct values carrying the same JSON
// shapes as the REST API, so no generated code is needed.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"exam-scheduler/internal/scheduling"
)

const ServiceName = "scheduling.v1.SchedulingService"

// SchedulingServer is the handler type of the service descriptor.
type SchedulingServer interface {
	ListExams(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAppointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateAppointmentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FullMethod returns the wire name of method.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// MutatingMethods lists the methods that write; auth guards these.
func MutatingMethods() []string {
	return []string{
		FullMethod("CreateAppointment"),
		FullMethod("UpdateAppointmentStatus"),
		FullMethod("DeleteAppointment"),
	}
}

func unary(name string, call func(SchedulingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(SchedulingServer)
			if ic == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListExams", SchedulingServer.ListExams),
		unary("ListAppointments", SchedulingServer.ListAppointments),
		unary("GetAppointment", SchedulingServer.GetAppointment),
		unary("CreateAppointment", SchedulingServer.CreateAppointment),
		unary("UpdateAppointmentStatus", SchedulingServer.UpdateAppointmentStatus),
		unary("DeleteAppointment", SchedulingServer.DeleteAppointment),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scheduling/v1/scheduling.proto",
}

type Server struct {
	svc *scheduling.Service
	log zerolog.Logger
}

func NewServer(svc *scheduling.Service, log zerolog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// Register attaches the scheduling and health services to gs.
func Register(gs *grpc.Server, s *Server) *health.Server {
	gs.RegisterService(&serviceDesc, s)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// toStruct round-trips v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, dst any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	return nil
}

func (s *Server) reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, s.toStatus(err)
	}
	out, err := toStruct(v)
	if err != nil {
		return nil, s.toStatus(fmt.Errorf("encode response: %w", err))
	}
	return out, nil
}

func (s *Server) toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch scheduling.Classify(err) {
	case scheduling.ErrMissingField, scheduling.ErrInvalidField,
		scheduling.ErrPastOrPresentDate, scheduling.ErrInvalidStatus:
		return status.Error(codes.InvalidArgument, err.Error())
	case scheduling.ErrExamNotFound, scheduling.ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case scheduling.ErrSlotConflict:
		return status.Error(codes.AlreadyExists, err.Error())
	case scheduling.ErrIllegalTransition, scheduling.ErrExamInUse:
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	s.log.Error().Err(err).Msg("rpc failed")
	return status.Error(codes.Internal, "internal error")
}
