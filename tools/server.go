package tools

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aaearon/mcp-privilege-cloud-sub001/health"
	"github.com/aaearon/mcp-privilege-cloud-sub001/observe"
	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
)

// ServerName identifies this server to MCP clients.
const ServerName = "privilege-cloud"

// Server is the MCP adapter over the Privilege Cloud client.
type Server struct {
	client  *pcloud.Client
	checks  *health.Aggregator
	logger  observe.Logger
	metrics *observe.Metrics
	mcp     *server.MCPServer
}

// Options configure the Server. Zero values are usable: logging is
// discarded and metrics/health are disabled.
type Options struct {
	Version string
	Logger  observe.Logger
	Metrics *observe.Metrics
	Health  *health.Aggregator
}

// New builds the server and registers the full tool catalog.
func New(client *pcloud.Client, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = observe.NewNoopLogger()
	}

	s := &Server{
		client:  client,
		checks:  opts.Health,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		mcp: server.NewMCPServer(ServerName, opts.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}

	s.registerAccountTools()
	s.registerSafeTools()
	s.registerPlatformTools()
	s.registerApplicationTools()
	s.registerResources()

	return s
}

// handlerFunc is a tool implementation returning a JSON-shapeable result.
type handlerFunc func(ctx context.Context, req mcp.CallToolRequest) (any, error)

// handle wraps a tool implementation with correlation, logging, metrics,
// and result/error shaping.
func (s *Server) handle(name string, fn handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := s.logger.With(
			observe.F("tool", name),
			observe.F("invocation_id", uuid.NewString()),
		)
		log.Debug(ctx, "tool invocation started")

		result, err := fn(ctx, req)
		s.metrics.RecordToolInvocation(ctx, name, err)
		if err != nil {
			log.Warn(ctx, "tool invocation failed",
				observe.F("error_kind", pcloud.KindOf(err).String()))
			return errorResult(err), nil
		}

		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Error(ctx, "result encoding failed")
			return errorResult(&pcloud.APIError{Kind: pcloud.KindMalformed, Err: err}), nil
		}

		log.Debug(ctx, "tool invocation completed")
		return mcp.NewToolResultText(string(encoded)), nil
	}
}

// ServeStdio serves MCP over stdin/stdout until ctx is canceled or the
// stream closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer exposes the underlying protocol server. For tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}
