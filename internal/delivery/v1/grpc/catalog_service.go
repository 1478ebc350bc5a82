package grpc

import (
	"context"
	"fmt"
	"math"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const GetProductsInfoMethod = "/pos.v1.CatalogService/GetProductsInfo"

// CatalogServiceServer: сервис pos.v1.CatalogService. Сообщения передаются как
// google.protobuf.Struct: запрос {ids: [..]}, ответ {products: [..], not_found: [..]}.
type CatalogServiceServer interface {
	GetProductsInfo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: "pos.v1.CatalogService",
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProductsInfo", Handler: getProductsInfoHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/v1/catalog.proto",
}

func getProductsInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetProductsInfo(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetProductsInfoMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetProductsInfo(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type CatalogService struct {
	prUC   usecase.ProductUC
	logger logger.Logger
}

func NewCatalogService(prUC usecase.ProductUC, logger logger.Logger) *CatalogService {
	return &CatalogService{prUC: prUC, logger: logger}
}

func (g *CatalogService) GetProductsInfo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.GetProductsInfo"

	ids, err := parseIDs(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := g.prUC.GetProductsInfo(ctx, usecase.NewGetProductsReq(ids))
	if err != nil {
		err = e.Wrap(op, err)
		if status.Code(GRPCErrorResponse(err)) == codes.Internal {
			g.logger.Errorf(err, "%s", op)
		}
		return nil, GRPCErrorResponse(err)
	}

	return toGRPCResponse(res)
}

func parseIDs(req *structpb.Struct) ([]int64, error) {
	field, ok := req.GetFields()["ids"]
	if !ok {
		return nil, fmt.Errorf("ids is required")
	}

	list := field.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("ids must be a list")
	}

	ids := make([]int64, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue <= 0 || n.NumberValue > math.MaxInt64 {
			return nil, fmt.Errorf("ids must be positive integers")
		}
		ids = append(ids, int64(n.NumberValue))
	}

	return ids, nil
}

func toGRPCProduct(p *domain.ProductInfo) any {
	return map[string]any{
		"id":            float64(p.ID),
		"name":          p.Name,
		"category_name": p.CategoryName,
		"price":         p.Price.StringFixed(2),
	}
}

func toGRPCResponse(res *usecase.GetProductsRes) (*structpb.Struct, error) {
	products := make([]any, len(res.Products))
	for i := range res.Products {
		products[i] = toGRPCProduct(&res.Products[i])
	}

	notFound := make([]any, len(res.NotFoundProducts))
	for i, id := range res.NotFoundProducts {
		notFound[i] = float64(id)
	}

	out, err := structpb.NewStruct(map[string]any{
		"products":  products,
		"not_found": notFound,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}

	return out, nil
}
