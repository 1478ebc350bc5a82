package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger) *GRPCServer {
	s := &GRPCServer{
		health: health.NewServer(),
		cfg:    cfg,
		logger: logger,
	}
	s.server = grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.logInterceptor))

	// до первого успешного пинга БД сервис не принимает трафик
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s.server, s.health)

	return s
}

func (s *GRPCServer) RegisterServices(prUC usecase.ProductUC) {
	s.server.RegisterService(&CatalogServiceDesc, NewCatalogService(prUC, s.logger))
	s.health.SetServingStatus(CatalogServiceDesc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}

// SetServing переключает статус health-сервиса для всех зарегистрированных сервисов.
func (s *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(CatalogServiceDesc.ServiceName, st)
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}

func (s *GRPCServer) logInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debugf("grpc %s code=%s duration=%v", info.FullMethod, status.Code(err), time.Since(start))
	return resp, err
}

func (s *GRPCServer) recoverInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf(fmt.Errorf("panic: %v", r), "grpc %s", info.FullMethod)
			err = status.Error(codes.Internal, "Internal Server Error!")
		}
	}()
	return handler(ctx, req)
}
