package mcp

import (
	"context"
	"sync"

	"safeloan/internal/config"
	"safeloan/internal/ledger"
	"safeloan/internal/simulation"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ServerName and ServerVersion identify the tool server to MCP clients.
const (
	ServerName    = "safeloan"
	ServerVersion = "0.1.0"
)

// Server exposes the loan engine as MCP tools.
type Server struct {
	settings  simulation.Settings
	ledger    *ledger.Store
	ledgerDir string
	charts    bool

	mu      sync.Mutex
	lastRun string
}

// NewServer creates a tool server using the engine settings and ledger
// location from cfg.
func NewServer(cfg *config.AppConfig) *Server {
	return &Server{
		settings:  cfg.Engine,
		ledger:    ledger.NewStore(),
		ledgerDir: cfg.LedgerDir,
		charts:    cfg.EnableMermaidCharts,
	}
}

// Build assembles the MCP server with every tool registered.
func (s *Server) Build() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	s.registerTools(server)
	return server
}

// Serve runs the tool server over stdio until the client disconnects or ctx
// is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", ServerVersion).Msg("Starting MCP server on stdio")
	if err := s.Build().Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info().Msg("MCP server stopped")
	return nil
}

// LastRun returns the ID of the most recent simulation run by this server.
func (s *Server) LastRun() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
