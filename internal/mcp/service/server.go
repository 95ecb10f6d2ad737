package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/mcp/domain"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

const (
	serverName    = "Uno Card Game MCP"
	serverVersion = "0.1.0"
)

// NewServer builds an MCP server with every game tool registered.
func NewServer(deps domain.Deps) *mcp.Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerGameTools(mcpServer, deps)
	return mcpServer
}

func registerGameTools(mcpServer *mcp.Server, deps domain.Deps) {
	mcp.AddTool(mcpServer, domain.NewGameTool(), domain.NewGameHandler(deps))
	mcp.AddTool(mcpServer, domain.GetStateTool(), domain.GetStateHandler(deps))
	mcp.AddTool(mcpServer, domain.PlayCardTool(), domain.PlayCardHandler(deps))
	mcp.AddTool(mcpServer, domain.DrawCardTool(), domain.DrawCardHandler(deps))
	mcp.AddTool(mcpServer, domain.PassTurnTool(), domain.PassTurnHandler(deps))
	mcp.AddTool(mcpServer, domain.CheckWinnerTool(), domain.CheckWinnerHandler(deps))
}

// Serve runs mcpServer on the configured transport until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, mcpServer *mcp.Server, logger *logrus.Logger) error {
	switch cfg.Transport {
	case config.TransportStdio:
		logger.Info("Serving MCP over stdio")
		return serveWithTransport(ctx, mcpServer, &mcp.StdioTransport{})
	case config.TransportHTTP:
		return serveHTTP(ctx, cfg.HTTPAddr, mcpServer, logger)
	}
	return fmt.Errorf("unknown transport %q", cfg.Transport)
}

func serveWithTransport(ctx context.Context, mcpServer *mcp.Server, transport mcp.Transport) error {
	if mcpServer == nil {
		return errors.New("mcp server is not configured")
	}
	if err := mcpServer.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run mcp server: %w", err)
	}
	return nil
}

// HTTPHandler exposes mcpServer over the streamable HTTP transport with request logging.
func HTTPHandler(mcpServer *mcp.Server, logger *logrus.Logger) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpServer }, nil)
	mux := http.NewServeMux()
	mux.Handle("/mcp", middleware.LogMiddleware(logger)(handler))
	return mux
}

func serveHTTP(ctx context.Context, addr string, mcpServer *mcp.Server, logger *logrus.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           HTTPHandler(mcpServer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()
	logger.Infof("Serving MCP over HTTP on %s/mcp", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
