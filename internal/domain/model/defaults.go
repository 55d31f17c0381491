package model

// defaultContent is the fallback text for every editable key on the public
// site. It is rendered whenever no persisted value exists and is backfilled
// into the store by reconciliation.
var defaultContent = ContentMap{
	"nav-cta":                "Get in Touch",
	"hero-badge":             "Creative Studio",
	"hero-title":             "Build Brands That",
	"hero-subtitle":          "Move Culture",
	"hero-description":       "We help creators, esports teams, and modern brands build identity, community, and long-term relevance through strategic social media.",
	"hero-cta-primary":       "Start a Project",
	"hero-cta-secondary":     "View Our Work",
	"hero-stat-1-value":      "45K+",
	"hero-stat-1-label":      "Followers Grown",
	"hero-stat-2-value":      "Premium",
	"hero-stat-2-label":      "Brand Positioning",
	"hero-stat-3-value":      "Long-Term",
	"hero-stat-3-label":      "Partnership Focus",
	"home-tagline":           "We design brands that move culture.",
	"mobile-title":           "Brands That Move Culture",
	"mobile-description":     "We help creators, esports teams, and modern brands build identity, community, and long-term relevance.",
	"footer-tagline":         "Strategy, production, and partnerships for teams that want to lead culture.",
	"footer-signal-note":     "Drop a message and get a response within 24 hours.",
	"footer-contact-email":   "contact@dispulse.co",
	"footer-studio-name":     "Dispulse Studio",
	"footer-studio-location": "London, UK",
	"footer-year":            "2024",
}

// DefaultContent returns a fresh copy of the compiled-in default content.
func DefaultContent() ContentMap {
	return defaultContent.Clone()
}
