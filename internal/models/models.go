// Package models defines the domain types shared across the colsync CLI:
// collection relations as served by the sync backend, and the merchant's
// current plan.
package models

// Collection is a parent collection as known to the backend.
type Collection struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ChildCollection is a child collection with its routing metadata.
type ChildCollection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Tag      string `json:"tag"`
	Redirect string `json:"redirect"`
}

// Relation links a parent collection to its children. The slice order is
// render order only; nothing depends on it.
type Relation struct {
	Parent   Collection        `json:"parent"`
	Children []ChildCollection `json:"children"`
}

// Plan describes the merchant's current subscription plan.
type Plan struct {
	Name string `json:"name"`
}

// BasicPlanName is the plan tier that still gets the upgrade prompt.
const BasicPlanName = "Basic"

// IsBasic reports whether the plan is the entry tier.
func (p Plan) IsBasic() bool {
	return p.Name == BasicPlanName
}

// AdminView is the combined payload of the relations endpoint.
type AdminView struct {
	Relations   []Relation `json:"relations"`
	CurrentPlan Plan       `json:"currentPlan"`
}
