package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/frege/gateway"
	"github.com/msto63/frege/internal/frege/server"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/msto63/frege/pkg/core/metrics"
)

var (
	serveGRPCPort    int
	serveHTTPPort    int
	serveNoHTTP      bool
	serveMaintenance time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "gRPC-Server und HTTP-Gateway starten",
	Long: `Startet den Parser-Service.

Komponenten:
  gRPC     - ParserService (Parse, Evaluate, History) und Health (:9300)
  HTTP     - REST-API, WebSocket und /metrics (:8300)

Beispiele:
  frege serve
  frege serve --grpc-port 9400 --http-port 8400
  frege serve --no-http`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC-Port (überschreibt die Config)")
	serveCmd.Flags().IntVar(&serveHTTPPort, "http-port", 0, "HTTP-Port (überschreibt die Config)")
	serveCmd.Flags().BoolVar(&serveNoHTTP, "no-http", false, "HTTP-Gateway nicht starten")
	serveCmd.Flags().DurationVar(&serveMaintenance, "maintenance", time.Hour, "Intervall für das Bereinigen des Verlaufs")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if serveGRPCPort != 0 {
		appConfig.Server.Port = serveGRPCPort
	}
	if serveHTTPPort != 0 {
		appConfig.HTTP.Port = serveHTTPPort
	}
	if serveNoHTTP {
		appConfig.HTTP.Enabled = false
	}

	m := metrics.New("frege")
	svc, err := service.NewService(service.ConfigFrom(appConfig), service.WithMetrics(m))
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Println("frege")
	fmt.Println("=====")

	grpcSrv := server.New(serverConfig(), svc)
	if err := grpcSrv.StartAsync(); err != nil {
		return err
	}
	fmt.Printf("  [+] gRPC auf %s\n", appConfig.GetServiceAddress("grpc"))

	var gw *gateway.Server
	if appConfig.HTTP.Enabled {
		gw = gateway.New(gatewayConfig(), svc, grpcSrv.HealthRegistry())
		if err := gw.StartAsync(); err != nil {
			grpcSrv.Stop(context.Background())
			return err
		}
		fmt.Printf("  [+] HTTP-Gateway auf %s\n", gw.Address())
	}

	if appConfig.Store.Enabled {
		go svc.RunMaintenance(ctx, serveMaintenance)
		fmt.Printf("  [+] Verlauf in %s (Aufbewahrung %s)\n", appConfig.Store.Path, appConfig.Store.Retention.Duration)
	}

	fmt.Println()
	fmt.Println("Drücke Ctrl+C zum Beenden")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStoppe Services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if gw != nil {
		if err := gw.Stop(shutdownCtx); err != nil {
			printError("HTTP-Gateway nicht sauber beendet", err)
		}
	}
	grpcSrv.Stop(shutdownCtx)
	return nil
}

func serverConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Host = appConfig.Server.Host
	cfg.Port = appConfig.Server.Port
	cfg.MaxRecvMsgSize = appConfig.Server.MaxRecvMsgSize
	cfg.MaxSendMsgSize = appConfig.Server.MaxSendMsgSize
	cfg.ConnectionTimeout = appConfig.Server.ConnectionTimeout.Duration
	cfg.EnableReflection = appConfig.Server.EnableReflection
	cfg.Logger = logging.New("frege-grpc")
	return cfg
}

func gatewayConfig() gateway.Config {
	cfg := gateway.DefaultConfig()
	cfg.Host = appConfig.HTTP.Host
	cfg.Port = appConfig.HTTP.Port
	cfg.ReadTimeout = appConfig.HTTP.ReadTimeout.Duration
	cfg.WriteTimeout = appConfig.HTTP.WriteTimeout.Duration
	cfg.CORS = gateway.CORSConfig{
		Enabled:        appConfig.HTTP.CORS.Enabled,
		AllowedOrigins: appConfig.HTTP.CORS.AllowedOrigins,
		AllowedMethods: appConfig.HTTP.CORS.AllowedMethods,
	}
	return cfg
}
