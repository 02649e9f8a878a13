// Package grpc serves the operational gRPC endpoint: the standard health
// service reporting the reachability of the database and the mail queue.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultProbeInterval = 15 * time.Second
	probeTimeout         = 2 * time.Second
)

// Probe checks one dependency. Name is the service name reported by the
// health service.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	health   *health.Server
	probes   []Probe
	interval time.Duration
	listen   func(network, address string) (net.Listener, error)
}

func NewGRPCServer(a string, l logging.Logger, probes ...Probe) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
		probes:   probes,
		interval: defaultProbeInterval,
		listen:   net.Listen,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := s.listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.refresh(ctx)
		}
	}
}

// refresh runs every probe and publishes the result. The overall ("")
// status is SERVING only when every probe passes.
func (s *GRPCServer) refresh(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, p := range s.probes {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(pctx)
		cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
			s.logger.Warn(ctx, "health probe failed", "probe", p.Name, "error", err)
		}
		s.health.SetServingStatus(p.Name, st)
	}
	s.health.SetServingStatus("", overall)
}
