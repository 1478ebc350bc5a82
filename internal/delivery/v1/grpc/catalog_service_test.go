package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type mockProductUC struct {
	usecase.ProductUC
	mock.Mock
}

func (m *mockProductUC) GetProductsInfo(ctx context.Context, req *usecase.GetProductsReq) (*usecase.GetProductsRes, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*usecase.GetProductsRes)
	return res, args.Error(1)
}

func startServer(t *testing.T, uc usecase.ProductUC) (*GRPCServer, *grpc.ClientConn) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(&cfg.GRPCConfig{}, logger.NewNopLogger())
	srv.RegisterServices(uc)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		_ = srv.Stop(context.Background())
	})
	return srv, conn
}

func idsReq(t *testing.T, ids ...any) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(map[string]any{"ids": ids})
	require.NoError(t, err)
	return req
}

func TestCatalogService_GetProductsInfo(t *testing.T) {
	uc := &mockProductUC{}
	uc.On("GetProductsInfo", mock.Anything, usecase.NewGetProductsReq([]int64{2, 99})).Return(
		usecase.NewGetProductsRes(
			[]domain.ProductInfo{domain.NewProductInfo(2, "Coffee", "Drinks", decimal.RequireFromString("4000"))},
			[]int64{99},
		), nil)
	_, conn := startServer(t, uc)

	out := new(structpb.Struct)
	err := conn.Invoke(context.Background(), GetProductsInfoMethod, idsReq(t, 2, 99), out)
	require.NoError(t, err)

	got := out.AsMap()
	assert.Equal(t, []any{float64(99)}, got["not_found"])
	assert.Equal(t, []any{map[string]any{
		"id":            float64(2),
		"name":          "Coffee",
		"category_name": "Drinks",
		"price":         "4000.00",
	}}, got["products"])
	uc.AssertExpectations(t)
}

func TestCatalogService_Errors(t *testing.T) {
	uc := &mockProductUC{}
	uc.On("GetProductsInfo", mock.Anything, usecase.NewGetProductsReq([]int64{})).
		Return(nil, e.NewFieldError(e.ErrValidation, "ids", "Products cannot be empty!"))
	uc.On("GetProductsInfo", mock.Anything, usecase.NewGetProductsReq([]int64{1})).
		Return(nil, assert.AnError)
	_, conn := startServer(t, uc)

	tests := []struct {
		name string
		req  *structpb.Struct
		code codes.Code
	}{
		{"missing ids", &structpb.Struct{}, codes.InvalidArgument},
		{"fractional id", idsReq(t, 1.5), codes.InvalidArgument},
		{"string id", idsReq(t, "1"), codes.InvalidArgument},
		{"empty ids", idsReq(t), codes.InvalidArgument},
		{"storage failure", idsReq(t, 1), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := conn.Invoke(context.Background(), GetProductsInfoMethod, tt.req, new(structpb.Struct))
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestHealth(t *testing.T) {
	srv, conn := startServer(t, &mockProductUC{})
	client := healthpb.NewHealthClient(conn)

	res, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, res.GetStatus())

	srv.SetServing(true)
	res, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "pos.v1.CatalogService"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())
}
