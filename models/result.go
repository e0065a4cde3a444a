package models

// IssueResult is what the game reports after an option was accepted
type IssueResult struct {
	EffectLine        string
	Reclassifications []string
	Headlines         []string
	Census            []CensusScaleChange
	Banners           []BannerKnowledge
	NewPolicies       []Policy
	RemovedPolicies   []Policy
}

// CensusScaleChange is the delta of one census scale caused by a decision
type CensusScaleChange struct {
	Title         string
	PercentChange float64
}

// BannerKnowledge describes a banner unlocked by a decision
type BannerKnowledge struct {
	Name     string
	Validity string
	URL      string
}

// Policy describes a national policy introduced or removed by a decision
type Policy struct {
	Name        string
	Description string
	Banner      string
}
