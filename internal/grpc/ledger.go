package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/auth"
	"aiContentStudio/models"
)

const (
	LedgerServiceName = "contentstudio.v1.LedgerService"
	GetBalanceMethod  = "/" + LedgerServiceName + "/GetBalance"
)

// UserReader reads the authoritative user row.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// LedgerServiceServer is the server API for LedgerService. Messages are
// well-known types so no generated stubs are needed.
type LedgerServiceServer interface {
	GetBalance(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: LedgerServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBalance", Handler: getBalanceHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contentstudio/v1/ledger.proto",
}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

func getBalanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetBalance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetBalanceMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).GetBalance(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// GetBalance calls LedgerService.GetBalance on cc.
func GetBalance(ctx context.Context, cc grpc.ClientConnInterface, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, GetBalanceMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LedgerServer reports the caller's live balance.
type LedgerServer struct {
	Users UserReader
}

// GetBalance returns user_id, name, role and credits of the caller, read
// from the store on this call.
func (s *LedgerServer) GetBalance(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	u, err := s.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	if u == nil {
		return nil, toStatus(apperr.NotFound("User not found"))
	}
	return structpb.NewStruct(map[string]any{
		"user_id": u.ID,
		"name":    u.Name,
		"role":    u.Role,
		"credits": u.Credits,
	})
}

func toStatus(err error) error {
	return status.Error(apperr.GRPCCode(err), apperr.PublicMessage(err))
}
