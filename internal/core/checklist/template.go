package checklist

import "time"

type templateItem struct {
	title            string
	description      string
	category         Category
	priority         Priority
	estimatedMinutes int
}

var baseTemplate = []templateItem{
	{
		title:            "Serve images in next-gen formats",
		description:      "Convert hero and gallery images to WebP/AVIF and set explicit dimensions.",
		category:         CategoryPerformance,
		priority:         PriorityHigh,
		estimatedMinutes: 45,
	},
	{
		title:            "Eliminate render-blocking resources",
		description:      "Defer non-critical scripts and inline critical CSS.",
		category:         CategoryPerformance,
		priority:         PriorityHigh,
		estimatedMinutes: 60,
	},
	{
		title:            "Add unique titles and meta descriptions",
		description:      "Every indexable page needs a distinct title under 60 chars and a description under 160.",
		category:         CategorySEO,
		priority:         PriorityCritical,
		estimatedMinutes: 90,
	},
	{
		title:            "Submit XML sitemap",
		description:      "Generate a sitemap and submit it in Search Console.",
		category:         CategorySEO,
		priority:         PriorityMedium,
		estimatedMinutes: 20,
	},
	{
		title:            "Verify keyboard navigation",
		description:      "All interactive elements reachable and operable without a mouse.",
		category:         CategoryUX,
		priority:         PriorityMedium,
		estimatedMinutes: 40,
	},
	{
		title:            "Enforce HTTPS everywhere",
		description:      "Redirect HTTP to HTTPS and enable HSTS.",
		category:         CategorySecurity,
		priority:         PriorityCritical,
		estimatedMinutes: 30,
	},
	{
		title:            "Set security headers",
		description:      "CSP, X-Content-Type-Options, X-Frame-Options, Referrer-Policy.",
		category:         CategorySecurity,
		priority:         PriorityHigh,
		estimatedMinutes: 45,
	},
	{
		title:            "Install analytics and verify events",
		description:      "Page views and key conversions firing in the analytics dashboard.",
		category:         CategoryAnalytics,
		priority:         PriorityHigh,
		estimatedMinutes: 60,
	},
	{
		title:            "Proofread all page copy",
		description:      "Check spelling, broken links, and placeholder text before launch.",
		category:         CategoryContent,
		priority:         PriorityMedium,
		estimatedMinutes: 90,
	},
	{
		title:            "Test on small viewports",
		description:      "No horizontal scroll, tap targets at least 44px, readable font sizes.",
		category:         CategoryMobile,
		priority:         PriorityHigh,
		estimatedMinutes: 60,
	},
	{
		title:            "Place a clear primary call to action",
		description:      "Above the fold on the landing page, one obvious next step.",
		category:         CategoryConversion,
		priority:         PriorityHigh,
		estimatedMinutes: 30,
	},
	{
		title:            "Set up uptime monitoring",
		description:      "Alert on downtime and certificate expiry.",
		category:         CategoryGeneral,
		priority:         PriorityMedium,
		estimatedMinutes: 20,
	},
}

var ecommerceTemplate = []templateItem{
	{
		title:            "Test checkout flow end to end",
		description:      "Cart, shipping, payment, and confirmation email on desktop and mobile.",
		category:         CategoryConversion,
		priority:         PriorityCritical,
		estimatedMinutes: 90,
	},
	{
		title:            "Add product structured data",
		description:      "Product, Offer, and AggregateRating markup for rich results.",
		category:         CategorySEO,
		priority:         PriorityHigh,
		estimatedMinutes: 60,
	},
}

var localBusinessTemplate = []templateItem{
	{
		title:            "Add LocalBusiness structured data",
		description:      "Name, address, phone, and opening hours markup.",
		category:         CategorySEO,
		priority:         PriorityHigh,
		estimatedMinutes: 30,
	},
	{
		title:            "Verify contact details on every page",
		description:      "Phone number and address consistent with the business listing.",
		category:         CategoryContent,
		priority:         PriorityHigh,
		estimatedMinutes: 20,
	},
}

// TemplateItems builds the starter audit items for a new checklist,
// tailored by the client's business type. IDs and timestamps are left
// zero; the store fills them on insert.
func TemplateItems(profile *ClientProfile) []Item {
	tmpl := baseTemplate
	if profile != nil {
		switch profile.BusinessType {
		case "ecommerce":
			tmpl = append(append([]templateItem{}, tmpl...), ecommerceTemplate...)
		case "local":
			tmpl = append(append([]templateItem{}, tmpl...), localBusinessTemplate...)
		}
	}

	items := make([]Item, 0, len(tmpl))
	for _, t := range tmpl {
		mins := t.estimatedMinutes
		items = append(items, Item{
			Title:            t.title,
			Description:      t.description,
			Category:         t.category,
			Priority:         t.priority,
			EstimatedMinutes: &mins,
		})
	}
	return items
}

// NewFromTemplate assembles a checklist from the starter template.
func NewFromTemplate(title string, profile *ClientProfile, now time.Time) Checklist {
	return Checklist{
		Title:         title,
		Items:         TemplateItems(profile),
		ClientProfile: profile,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
