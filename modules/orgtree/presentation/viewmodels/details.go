package viewmodels

type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OrgNodeDetails struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	ParentID   string       `json:"parent_id,omitempty"`
	ParentName string       `json:"parent_name,omitempty"`
	Leader     *Person      `json:"leader,omitempty"`
	Members    []Person     `json:"members"`
	ChildCount int          `json:"child_count"`
	Path       []Breadcrumb `json:"path"`
}

type SearchHit struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Path []Breadcrumb `json:"path"`
}

type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}
