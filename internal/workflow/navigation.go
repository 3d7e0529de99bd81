package workflow

import "strings"

// StagePage describes how the dashboard presents a stage.
type StagePage struct {
	Stage       Stage  `json:"stage"`
	Order       int    `json:"order"`
	Label       string `json:"label"`
	Path        string `json:"path"`
	Description string `json:"description"`

	// DocumentTypes lists the document kinds produced in this stage.
	DocumentTypes []string `json:"document_types"`
}

// NavItem is one sidebar entry, annotated against a project's current stage.
type NavItem struct {
	StagePage
	Current  bool `json:"current"`
	Unlocked bool `json:"unlocked"`
}

var pages = map[Stage]StagePage{
	StageDiscovery:    {Label: "Discovery", Description: "Capture the problem, users and requirements.", DocumentTypes: []string{"PRD"}},
	StageStrategy:     {Label: "Strategy", Description: "Shape scope, positioning and delivery plan.", DocumentTypes: []string{"STRATEGY"}},
	StageSubstructure: {Label: "Substructure", Description: "Model the data and system foundations.", DocumentTypes: []string{"SCHEMA"}},
	StageDesign:       {Label: "Design", Description: "Produce the versioned blueprint.", DocumentTypes: []string{"DESIGN"}},
	StageConstruction: {Label: "Construction", Description: "Build against the technical spec and backlog.", DocumentTypes: []string{"TECH_SPEC", "BACKLOG", "INSTRUCTIONS"}},
	StageAudit:        {Label: "Audit", Description: "Review quality and risk.", DocumentTypes: []string{}},
	StageHandover:     {Label: "Handover", Description: "Package guides for the people who run it.", DocumentTypes: []string{"USER_GUIDE"}},
	StageMaintenance:  {Label: "Maintenance", Description: "Keep the delivered system healthy.", DocumentTypes: []string{}},
}

// Page returns the presentation metadata for s.
func Page(s Stage) (StagePage, bool) {
	p, ok := pages[s]
	if !ok {
		return StagePage{}, false
	}
	p.Stage = s
	p.Order = s.Index() + 1
	p.Path = "/dashboard/" + strings.ToLower(string(s))
	return p, true
}

// Navigation builds the sidebar for a project sitting in current. Stages up to
// and including current are unlocked.
func Navigation(current Stage) []NavItem {
	items := make([]NavItem, 0, len(ordered))
	for _, s := range ordered {
		p, _ := Page(s)
		items = append(items, NavItem{
			StagePage: p,
			Current:   s == current,
			Unlocked:  current.Valid() && !current.Before(s),
		})
	}
	return items
}
