package orgnode

// Member is an opaque reference to a person attached to an organization node.
// The tree renderer never interprets it.
type Member struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// OrganizationNode is one entry in the organization hierarchy.
//
// Children is owned by the node for rendering purposes. Consumers must treat
// the tree as read-only; it must not contain a cycle back to an ancestor.
type OrganizationNode struct {
	ID           string
	Name         string
	ParentID     *string
	DisplayOrder int
	Members      []Member
	Leader       *Member
	Children     []*OrganizationNode
}

func (n *OrganizationNode) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Find returns the node with the given id in the subtree rooted at n.
func (n *OrganizationNode) Find(id string) *OrganizationNode {
	if n == nil {
		return nil
	}
	var found *OrganizationNode
	Walk(n, func(node *OrganizationNode, _ int) bool {
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Walk visits the subtree rooted at root in pre-order. Returning false from fn
// stops the walk. Nodes already visited are skipped, so a malformed tree with
// a cycle still terminates.
func Walk(root *OrganizationNode, fn func(node *OrganizationNode, depth int) bool) {
	if root == nil {
		return
	}
	visited := make(map[*OrganizationNode]struct{})
	var walk func(n *OrganizationNode, depth int) bool
	walk = func(n *OrganizationNode, depth int) bool {
		if _, ok := visited[n]; ok {
			return true
		}
		visited[n] = struct{}{}
		if !fn(n, depth) {
			return false
		}
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			if !walk(child, depth+1) {
				return false
			}
		}
		return true
	}
	walk(root, 0)
}

// FindInForest looks the id up across all roots.
func FindInForest(roots []*OrganizationNode, id string) *OrganizationNode {
	for _, r := range roots {
		if found := r.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// PathTo returns the chain of nodes from a root down to the node with the
// given id, inclusive. It returns nil when the id is not present.
func PathTo(roots []*OrganizationNode, id string) []*OrganizationNode {
	var path []*OrganizationNode
	var search func(n *OrganizationNode, seen map[*OrganizationNode]struct{}) bool
	search = func(n *OrganizationNode, seen map[*OrganizationNode]struct{}) bool {
		if _, ok := seen[n]; ok {
			return false
		}
		seen[n] = struct{}{}
		path = append(path, n)
		if n.ID == id {
			return true
		}
		for _, child := range n.Children {
			if child != nil && search(child, seen) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	for _, r := range roots {
		if r == nil {
			continue
		}
		if search(r, make(map[*OrganizationNode]struct{})) {
			return path
		}
		path = path[:0]
	}
	return nil
}
