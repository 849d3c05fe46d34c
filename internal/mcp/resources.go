package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs.
const (
	DictionaryURI = "docsyn://dictionary"
	StatsURI      = "docsyn://stats"
)

// registerResources registers the active dictionary and, when metrics are
// set, the rewrite statistics.
func (s *Server) registerResources() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "dictionary",
			URI:         DictionaryURI,
			Description: "The active synonym dictionary as a map of lookup key to synonyms",
			MIMEType:    "application/json",
		},
		s.handleDictionaryResource,
	)

	if s.metrics != nil {
		s.mcp.AddResource(
			&mcp.Resource{
				Name:        "rewrite_stats",
				URI:         StatsURI,
				Description: "Rewrite statistics since the server started",
				MIMEType:    "application/json",
			},
			s.handleStatsResource,
		)
	}
}

func (s *Server) handleDictionaryResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := s.DictionaryJSON(ctx)
	if err != nil {
		return nil, MapError(err)
	}
	return jsonResource(DictionaryURI, data), nil
}

func (s *Server) handleStatsResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	out, err := s.rewriteStats(ctx)
	if err != nil {
		return nil, MapError(err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}
	return jsonResource(StatsURI, data), nil
}

// DictionaryJSON returns the active dictionary encoded as a JSON object.
func (s *Server) DictionaryJSON(_ context.Context) ([]byte, error) {
	rw, err := s.rewriter()
	if err != nil {
		return nil, err
	}
	dict := rw.Dictionary()
	terms := make(map[string][]string, dict.Len())
	for _, key := range dict.Keys() {
		terms[key], _ = dict.Lookup(key)
	}
	return json.MarshalIndent(terms, "", "  ")
}

func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}
}
