package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/docsyn/internal/plugin"
	"github.com/Aman-CERP/docsyn/internal/rewrite"
	"github.com/Aman-CERP/docsyn/internal/telemetry"
	"github.com/Aman-CERP/docsyn/pkg/query"
	"github.com/Aman-CERP/docsyn/pkg/version"
)

// List limits for list_terms.
const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Server is the MCP server for docsyn. It exposes the installed synonym
// plugin to AI clients.
type Server struct {
	mcp     *mcp.Server
	plugin  *plugin.Plugin
	metrics *telemetry.RewriteMetrics
	logger  *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes rewrite metrics through rewrite_stats and the stats
// resource.
func WithMetrics(m *telemetry.RewriteMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP server. p may be nil when no dictionary is
// configured, in which case the dictionary tools report ErrNoDictionary.
func NewServer(p *plugin.Plugin, opts ...Option) *Server {
	s := &Server{
		plugin: p,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "docsyn",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "docsyn", version.Version
}

var tools = []ToolInfo{
	{
		Name:        "expand_terms",
		Description: "Expand words with the active synonym dictionary. Returns every synonym a query for the word would match, or the word itself when the dictionary does not know it.",
	},
	{
		Name:        "rewrite_conditions",
		Description: "Rewrite a query condition object the way docsyn rewrites queries before they run: plain string fields become $in lists, $in lists and $text.$search strings are expanded with synonyms.",
	},
	{
		Name:        "list_terms",
		Description: "List the lookup keys of the active dictionary with their synonyms, optionally filtered by prefix.",
	},
	{
		Name:        "rewrite_stats",
		Description: "Report how many query fields were rewritten and which terms the dictionary did not know.",
	},
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), tools...)
}

// CallTool invokes a tool by name with JSON-like arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "expand_terms":
		var in ExpandTermsInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.expandTerms(ctx, in)
	case "rewrite_conditions":
		var in RewriteConditionsInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.rewriteConditions(ctx, in)
	case "list_terms":
		var in ListTermsInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.listTerms(ctx, in)
	case "rewrite_stats":
		return s.rewriteStats(ctx)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func decodeArgs(args map[string]any, into any) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return NewInvalidParamsError(err.Error())
	}
	if err := json.Unmarshal(data, into); err != nil {
		return NewInvalidParamsError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

func (s *Server) rewriter() (*rewrite.Rewriter, error) {
	if s.plugin == nil {
		return nil, ErrNoDictionary
	}
	return s.plugin.Rewriter(), nil
}

func (s *Server) expandTerms(_ context.Context, in ExpandTermsInput) (*ExpandTermsOutput, error) {
	if len(in.Terms) == 0 {
		return nil, NewInvalidParamsError("terms parameter is required")
	}
	rw, err := s.rewriter()
	if err != nil {
		return nil, err
	}
	requestID := generateRequestID()

	dict := rw.Dictionary()
	out := &ExpandTermsOutput{
		Dictionary: dict.Name(),
		Expansions: make([]TermExpansion, 0, len(in.Terms)),
	}
	for _, term := range in.Terms {
		if strings.TrimSpace(term) == "" {
			return nil, NewInvalidParamsError("terms cannot be empty or whitespace only")
		}
		words, matched := rw.Lookup(term)
		if !matched {
			words = []string{term}
		}
		out.Expansions = append(out.Expansions, TermExpansion{
			Term:    term,
			Words:   words,
			Matched: matched,
		})
	}

	s.logger.Debug("expand_terms completed",
		slog.String("request_id", requestID),
		slog.Int("terms", len(in.Terms)))
	return out, nil
}

func (s *Server) rewriteConditions(_ context.Context, in RewriteConditionsInput) (*RewriteConditionsOutput, error) {
	if in.Conditions == nil {
		return nil, NewInvalidParamsError("conditions parameter is required")
	}
	rw, err := s.rewriter()
	if err != nil {
		return nil, err
	}
	for _, f := range in.Fields {
		if strings.TrimSpace(f) == "" {
			return nil, NewInvalidParamsError("fields cannot contain empty paths")
		}
	}
	if len(in.Fields) > 0 {
		opts := []rewrite.Option{rewrite.WithLogger(s.logger)}
		if s.metrics != nil {
			opts = append(opts, rewrite.WithRecorder(s.metrics))
		}
		rw = rewrite.New(rw.Dictionary(), in.Fields, opts...)
	}

	conds := query.Conditions(in.Conditions)
	shapes := make([]FieldShape, 0, len(rw.Fields()))
	for _, f := range rw.Fields() {
		shapes = append(shapes, FieldShape{Field: f, Shape: rewrite.Classify(conds, f).String()})
	}
	rw.Apply(conds)

	s.logger.Debug("rewrite_conditions completed",
		slog.Int("fields", len(shapes)))
	return &RewriteConditionsOutput{Conditions: conds, Fields: shapes}, nil
}

func (s *Server) listTerms(_ context.Context, in ListTermsInput) (*ListTermsOutput, error) {
	if in.Limit < 0 {
		return nil, NewInvalidParamsError("limit cannot be negative")
	}
	rw, err := s.rewriter()
	if err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	dict := rw.Dictionary()
	keys := dict.WithPrefix(strings.ToLower(in.Prefix))
	out := &ListTermsOutput{
		Dictionary: dict.Name(),
		Total:      len(keys),
		Truncated:  len(keys) > limit,
		Terms:      make([]TermExpansion, 0, min(len(keys), limit)),
	}
	for _, key := range keys[:min(len(keys), limit)] {
		words, _ := dict.Lookup(key)
		out.Terms = append(out.Terms, TermExpansion{
			Term:    key,
			Words:   append([]string(nil), words...),
			Matched: true,
		})
	}
	return out, nil
}

func (s *Server) rewriteStats(_ context.Context) (*RewriteStatsOutput, error) {
	if s.metrics == nil {
		return &RewriteStatsOutput{Enabled: false}, nil
	}
	snap := s.metrics.Snapshot()
	out := &RewriteStatsOutput{
		Enabled:         true,
		ShapeCounts:     snap.ShapeCounts,
		FieldCounts:     snap.FieldCounts,
		RecentUnmatched: snap.RecentUnmatched,
		TotalFields:     snap.TotalFields,
		RewrittenFields: snap.RewrittenFields,
		RewriteRatePct:  snap.RewriteRate(),
		UnmatchedTerms:  snap.UnmatchedTerms,
		Since:           snap.Since.Format(time.RFC3339),
	}
	for _, tc := range snap.TopUnmatched {
		out.TopUnmatched = append(out.TopUnmatched, UnmatchedTerm{Term: tc.Term, Count: tc.Count})
	}
	return out, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.mcpExpandTermsHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.mcpRewriteConditionsHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.mcpListTermsHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[3].Name, Description: tools[3].Description}, s.mcpRewriteStatsHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func (s *Server) mcpExpandTermsHandler(ctx context.Context, _ *mcp.CallToolRequest, in ExpandTermsInput) (
	*mcp.CallToolResult,
	ExpandTermsOutput,
	error,
) {
	out, err := s.expandTerms(ctx, in)
	if err != nil {
		return nil, ExpandTermsOutput{}, MapError(err)
	}
	return textResult(FormatExpansions(out)), *out, nil
}

func (s *Server) mcpRewriteConditionsHandler(ctx context.Context, _ *mcp.CallToolRequest, in RewriteConditionsInput) (
	*mcp.CallToolResult,
	RewriteConditionsOutput,
	error,
) {
	out, err := s.rewriteConditions(ctx, in)
	if err != nil {
		return nil, RewriteConditionsOutput{}, MapError(err)
	}
	return textResult(FormatRewrite(out)), *out, nil
}

func (s *Server) mcpListTermsHandler(ctx context.Context, _ *mcp.CallToolRequest, in ListTermsInput) (
	*mcp.CallToolResult,
	ListTermsOutput,
	error,
) {
	out, err := s.listTerms(ctx, in)
	if err != nil {
		return nil, ListTermsOutput{}, MapError(err)
	}
	return textResult(FormatTermList(out)), *out, nil
}

func (s *Server) mcpRewriteStatsHandler(ctx context.Context, _ *mcp.CallToolRequest, _ RewriteStatsInput) (
	*mcp.CallToolResult,
	RewriteStatsOutput,
	error,
) {
	out, err := s.rewriteStats(ctx)
	if err != nil {
		return nil, RewriteStatsOutput{}, MapError(err)
	}
	return textResult(FormatStats(out)), *out, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
