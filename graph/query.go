package graph

// Neighborhood is a one-hop neighborhood: a focus node, every edge touching
// it, and the opposite endpoints of those edges. Used for click-to-highlight.
type Neighborhood struct {
	NodeIDs map[string]bool // focus node + direct neighbors
	Edges   []int           // indices into Graph.Links
}

// NodeByID returns a pointer to the node with the given id, or nil
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// OneHop computes the one-hop neighborhood of a node. A node with no
// connections yields a neighborhood containing only itself.
func (g *Graph) OneHop(nodeID string) Neighborhood {
	nbh := Neighborhood{NodeIDs: map[string]bool{nodeID: true}}

	for i, link := range g.Links {
		switch nodeID {
		case link.Source:
			nbh.NodeIDs[link.Target] = true
			nbh.Edges = append(nbh.Edges, i)
		case link.Target:
			nbh.NodeIDs[link.Source] = true
			nbh.Edges = append(nbh.Edges, i)
		}
	}
	return nbh
}

// Degree returns the number of edges touching each node, keyed by node id.
// Link springs are biased by endpoint degree so hubs move less.
func (g *Graph) Degree() map[string]int {
	degree := make(map[string]int, len(g.Nodes))
	for _, link := range g.Links {
		degree[link.Source]++
		degree[link.Target]++
	}
	return degree
}
