package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	if err != nil {
		s.logger.Warn(ctx, "grpc call failed", "method", info.FullMethod, "code", status.Code(err).String(), "latency", time.Since(start))
	} else {
		s.logger.Debug(ctx, "grpc call", "method", info.FullMethod, "latency", time.Since(start))
	}
	return resp, err
}
