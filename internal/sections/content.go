// Package sections builds the landing page: its translated content and the
// vdom views for each section and live widget.
package sections

import (
	"fmt"

	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/widget"
)

// Section anchor ids, in page order.
const (
	IDHero        = "hero"
	IDAbout       = "about"
	IDHowItWorks  = "how-it-works"
	IDPerformance = "performance"
	IDFAQ         = "faq"
	IDContact     = "contact"
)

// Widget names used in data-widget attributes and live events.
const (
	WidgetContact      = "contact"
	WidgetTestimonials = "testimonials"
	WidgetFAQ          = "faq"
)

// Query parameters read by the page and the live endpoint.
const (
	// SentParam set to 1 shows the contact confirmation.
	SentParam = "sent"
	// TestimonialParam picks the testimonial on display, counting from 0.
	TestimonialParam = "t"
)

// Contact details shown next to the form.
const (
	ContactEmail   = "info@safetrade.com"
	ContactPhone   = "+359 888 123 456"
	ContactAddress = "Sofia, Bulgaria"
)

// FAQCount is the number of question and answer pairs.
const FAQCount = 6

// Card is a titled block of text.
type Card struct {
	Title   string
	Content string
}

// NavLink is an in-page anchor.
type NavLink struct {
	Label  string
	Anchor string
}

// MonthlyProfit is one point of the performance series.
type MonthlyProfit struct {
	Month  string
	Profit int
}

// FAQItem is a question with its answer.
type FAQItem struct {
	Question string
	Answer   string
}

// Performance is the monthly profit series, in percent.
var Performance = []MonthlyProfit{
	{"Jan", 5}, {"Feb", 8}, {"Mar", 7}, {"Apr", 12},
	{"May", 10}, {"Jun", 15}, {"Jul", 18}, {"Aug", 14},
	{"Sep", 20}, {"Oct", 22}, {"Nov", 25}, {"Dec", 30},
}

// Testimonials returns the partner quotes shown in the carousel.
func Testimonials() []widget.Testimonial {
	return []widget.Testimonial{
		{
			Name:    "Alex Johnson",
			Role:    "Investor",
			Content: "I've been with Safe Trade for 6 months and the results have been consistently impressive. Their transparent approach gives me confidence in my investment.",
			Rating:  5,
		},
		{
			Name:    "Maria Garcia",
			Role:    "Business Owner",
			Content: "The 50/50 profit sharing model is fair and motivating. I appreciate how they only make money when I do. Their focus on XAUUSD has been particularly profitable.",
			Rating:  5,
		},
		{
			Name:    "David Chen",
			Role:    "Retired Professional",
			Content: "After trying several trading services, Safe Trade stands out for their expertise and communication. I can monitor my account anytime and the returns have been excellent.",
			Rating:  4,
		},
		{
			Name:    "Sarah Williams",
			Role:    "Financial Advisor",
			Content: "As someone in the financial industry, I appreciate their risk management approach. The specialized focus on specific markets shows their strategic thinking.",
			Rating:  5,
		},
	}
}

var aboutKeys = []string{"whoWeAre", "approach", "partnership", "profitSharing", "transparency"}

// NavLinks returns the header links in page order.
func NavLinks(tr i18n.Translator) []NavLink {
	return []NavLink{
		{tr.T("nav.home"), IDHero},
		{tr.T("nav.about"), IDAbout},
		{tr.T("nav.howItWorks"), IDHowItWorks},
		{tr.T("nav.performance"), IDPerformance},
		{tr.T("nav.faq"), IDFAQ},
		{tr.T("nav.contact"), IDContact},
	}
}

// AboutCards returns the five about cards.
func AboutCards(tr i18n.Translator) []Card {
	cards := make([]Card, len(aboutKeys))
	for i, k := range aboutKeys {
		cards[i] = Card{
			Title:   tr.T("about." + k + ".title"),
			Content: tr.T("about." + k + ".content"),
		}
	}
	return cards
}

// Steps returns the five how-it-works steps.
func Steps(tr i18n.Translator) []Card {
	steps := make([]Card, 5)
	for i := range steps {
		prefix := fmt.Sprintf("howItWorks.steps.step%d.", i+1)
		steps[i] = Card{Title: tr.T(prefix + "title"), Content: tr.T(prefix + "content")}
	}
	return steps
}

// FAQItems returns the question and answer pairs.
func FAQItems(tr i18n.Translator) []FAQItem {
	items := make([]FAQItem, FAQCount)
	for i := range items {
		items[i] = FAQItem{
			Question: tr.T(fmt.Sprintf("faq.questions.q%d", i+1)),
			Answer:   tr.T(fmt.Sprintf("faq.answers.a%d", i+1)),
		}
	}
	return items
}
