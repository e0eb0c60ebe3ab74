package graph

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phylomap/phylomap/errors"
	grapherr "github.com/phylomap/phylomap/graph/error"
	"github.com/phylomap/phylomap/internal/httpclient"
)

// maxArtifactSize caps artifact reads at 256MB; full exports of the
// flight/lineage graph run tens of MB, sampled exports far less.
const maxArtifactSize = 256 * 1024 * 1024

// artifact mirrors the JSON document written by the export pipeline:
// {nodes, links, metadata}. Fields not listed here are ignored.
type artifact struct {
	Nodes    []Node            `json:"nodes"`
	Links    []Link            `json:"links"`
	Metadata artifactMetadata  `json:"metadata"`
}

type artifactMetadata struct {
	NumAirports int      `json:"num_airports"`
	NumLineages int      `json:"num_lineages"`
	NumEdges    int      `json:"num_edges"`
	EdgeTypes   []string `json:"edge_types"`
	Sampled     bool     `json:"sampled"`
}

// Loader retrieves and validates the graph artifact.
// The artifact source may be a local file path or an http(s) URL.
type Loader struct {
	client *httpclient.SaferClient
	logger *zap.SugaredLogger
}

// NewLoader creates a Loader. The HTTP client allows private/localhost
// addresses since the artifact is typically served by a local export pipeline.
func NewLoader(logger *zap.SugaredLogger) *Loader {
	allowPrivate := false
	return &Loader{
		client: httpclient.NewWithOptions(30*time.Second, httpclient.Options{
			BlockPrivateIP: &allowPrivate,
		}),
		logger: logger,
	}
}

// Load retrieves the artifact from a file path or URL and parses it.
// Failure is terminal: no retry policy, the caller decides when to reload.
func (l *Loader) Load(ctx context.Context, source string) (*Graph, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return nil, grapherr.New(
			grapherr.CategoryLoad,
			err,
			"Failed to load graph data - the visualization cannot start",
		).WithSubcategory(grapherr.SubcategoryLoadFetch).WithContext("source", source)
	}
	return l.Parse(data)
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := l.client.Get(ctx, source)
		if err != nil {
			return nil, errors.Wrap(err, "artifact request failed")
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			return nil, errors.Newf("artifact request returned status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize))
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read artifact file")
	}
	return data, nil
}

// Parse decodes and validates artifact bytes into a Graph.
//
// Validation policy (applied consistently):
//   - a node missing required fields for its type is dropped with a warning
//   - a duplicate node id is dropped with a warning (first occurrence wins)
//   - an edge referencing an unknown node id is dropped with a warning
//     and counted in Stats.DroppedEdges
//
// Drop-and-warn rather than fail-fast: the artifact comes from a sampling
// exporter that can sample a node out while keeping its edges, and a partial
// graph is more useful than none. Only an unparseable or empty artifact
// fails the whole load.
func (l *Loader) Parse(data []byte) (*Graph, error) {
	var doc artifact
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, grapherr.New(
			grapherr.CategoryLoad,
			err,
			"Graph data is malformed and could not be parsed",
		).WithSubcategory(grapherr.SubcategoryLoadParse)
	}

	nodes := make([]Node, 0, len(doc.Nodes))
	seen := make(map[string]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		if reason := validateNode(&node); reason != "" {
			l.logger.Warnw("Dropping invalid node",
				"node_id", node.ID,
				"node_type", node.Type,
				"reason", reason,
			)
			continue
		}
		if seen[node.ID] {
			l.logger.Warnw("Dropping duplicate node id", "node_id", node.ID)
			continue
		}
		seen[node.ID] = true

		sanitizeNode(&node)
		node.Visible = true
		nodes = append(nodes, node)
	}

	if len(nodes) == 0 {
		return nil, grapherr.New(
			grapherr.CategoryLoad,
			errors.New("artifact contains no valid nodes"),
			"Graph data is empty",
		).WithSubcategory(grapherr.SubcategoryLoadEmpty)
	}

	links := make([]Link, 0, len(doc.Links))
	dropped := 0
	for _, link := range doc.Links {
		if !seen[link.Source] || !seen[link.Target] {
			dropped++
			l.logger.Warnw("Dropping edge with unknown endpoint",
				"source", link.Source,
				"target", link.Target,
				"edge_type", link.Type,
			)
			continue
		}
		if link.Weight < 0 || math.IsNaN(link.Weight) || math.IsInf(link.Weight, 0) {
			link.Weight = 0
		}
		links = append(links, link)
	}

	stats := computeStats(nodes, links, dropped)
	g := &Graph{
		Nodes: nodes,
		Links: links,
		Meta: Meta{
			GeneratedAt: time.Now(),
			Stats:       stats,
			Config: map[string]string{
				"sampled": boolString(doc.Metadata.Sampled),
			},
			NodeTypes: collectNodeTypeInfo(nodes),
			EdgeTypes: collectEdgeTypeInfo(links),
		},
	}

	l.logger.Infow("Graph artifact loaded",
		"nodes", len(nodes),
		"links", len(links),
		"airports", stats.Airports,
		"lineages", stats.Lineages,
		"dropped_edges", dropped,
	)
	return g, nil
}

// validateNode returns a human-readable reason when a node is unusable,
// or "" when it is valid
func validateNode(n *Node) string {
	if n.ID == "" {
		return "missing id"
	}
	switch n.Type {
	case NodeAirport:
		// Airports with a code but no coordinates are kept: absent lat/lon
		// decodes to 0,0, which is indistinguishable from a real position at
		// the equator/meridian, so the geographic layout just projects them
		// there. Only a node with neither code nor coordinates is unusable.
		if n.Lat == 0 && n.Lon == 0 && n.Code == "" {
			return "airport missing code and coordinates"
		}
	case NodeLineage:
		if n.Name == "" {
			return "lineage missing name"
		}
	default:
		return "unknown node type"
	}
	return ""
}

// sanitizeNode clamps out-of-range coordinates so corrupt artifact rows
// cannot destabilize the geographic layout
func sanitizeNode(n *Node) {
	if math.IsNaN(n.Lat) || math.IsInf(n.Lat, 0) {
		n.Lat = 0
	}
	if math.IsNaN(n.Lon) || math.IsInf(n.Lon, 0) {
		n.Lon = 0
	}
	if n.Lat > 90 {
		n.Lat = 90
	} else if n.Lat < -90 {
		n.Lat = -90
	}
	if n.Lon > 180 {
		n.Lon = 180
	} else if n.Lon < -180 {
		n.Lon = -180
	}
}

func computeStats(nodes []Node, links []Link, dropped int) Stats {
	stats := Stats{
		TotalNodes:   len(nodes),
		TotalEdges:   len(links),
		DroppedEdges: dropped,
	}
	for _, node := range nodes {
		switch node.Type {
		case NodeAirport:
			stats.Airports++
		case NodeLineage:
			stats.Lineages++
		}
	}
	return stats
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
