package main

import (
	"fmt"
	"net"

	"market-assistant/src/app"
	"market-assistant/src/config"
	pb "market-assistant/src/grpc_control"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers starts the HTTP API and the gRPC control server.
func startServers(srv interfaces.IDataExchanger, a *app.App, conf *config.Config, appLogger *logger.Logger) *grpc.Server {
	// 1. HTTP + websocket
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	grpcServer := grpc.NewServer()
	controlService := pb.NewControlService(a.Dashboard, a.Credentials, logger.NewLogger(conf, "ControlService"))
	pb.RegisterControlServer(grpcServer, controlService)

	go func() {
		port := conf.GrpcPort
		if port == 0 {
			port = 50051
		}
		addr := fmt.Sprintf("%s:%d", conf.GrpcHost, port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			appLogger.Error("failed to listen for gRPC: %v", err)
			return
		}
		appLogger.Info("Starting gRPC Control Server on %s", addr)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("failed to serve gRPC: %v", err)
		}
	}()

	return grpcServer
}
