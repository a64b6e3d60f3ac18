package sections

import (
	"strconv"
	"strings"

	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/widget"
	. "github.com/safetrade/site/pkg/vdom"
)

// LocaleOption is an entry of the language switcher.
type LocaleOption struct {
	Code string
	Name string
}

// PageState is everything the page view needs besides the translator.
type PageState struct {
	Locale       string
	Locales      []LocaleOption
	Year         int
	Contact      widget.ContactSnapshot
	Testimonials *widget.Carousel
	FAQ          *widget.Accordion
}

// Page renders the body of the landing page.
func Page(tr i18n.Translator, s PageState) *VNode {
	return Fragment(
		siteHeader(tr, s),
		Main(
			hero(tr),
			about(tr),
			howItWorks(tr),
			performance(tr, s.Testimonials),
			faq(tr, s.FAQ),
			contact(tr, s.Contact),
		),
		siteFooter(tr, s.Year),
	)
}

func siteHeader(tr i18n.Translator, s PageState) *VNode {
	return Header(Class("site-header"),
		A(Href("#"+IDHero), Class("brand"), Strong(tr.T("common.brand"))),
		Nav(Class("site-nav"), AriaLabel(tr.T("nav.title")),
			Range(NavLinks(tr), func(_ int, l NavLink) *VNode {
				return A(Href("#"+l.Anchor), l.Label)
			}),
		),
		If(len(s.Locales) > 1, Nav(Class("site-lang"), AriaLabel(tr.T("nav.language")),
			Range(s.Locales, func(_ int, l LocaleOption) *VNode {
				return A(Href("?lang="+l.Code), Hreflang(l.Code), Lang(l.Code),
					IfAttr(l.Code == s.Locale, Attribute("aria-current", "true")),
					l.Name,
				)
			}),
		)),
	)
}

func hero(tr i18n.Translator) *VNode {
	return Section(ID(IDHero), Class("section", "hero"),
		H1(tr.T("home.hero.title")),
		P(Class("lead"), tr.T("home.hero.subtitle")),
		A(Href("#"+IDContact), Class("btn"), tr.T("common.getStarted")),
		A(Href("#"+IDAbout), Class("link"), tr.T("common.learnMore")),
	)
}

func about(tr i18n.Translator) *VNode {
	return Section(ID(IDAbout), Class("section"),
		H2(tr.T("about.title")),
		P(Class("subtitle"), tr.T("about.subtitle")),
		Div(Class("cards"),
			Range(AboutCards(tr), func(_ int, c Card) *VNode {
				return Article(Class("card"), H3(c.Title), P(c.Content))
			}),
		),
	)
}

func howItWorks(tr i18n.Translator) *VNode {
	return Section(ID(IDHowItWorks), Class("section"),
		H2(tr.T("howItWorks.title")),
		P(Class("subtitle"), tr.T("howItWorks.subtitle")),
		Ol(Class("steps"),
			Range(Steps(tr), func(_ int, c Card) *VNode {
				return Li(H3(c.Title), P(c.Content))
			}),
		),
	)
}

func performance(tr i18n.Translator, carousel *widget.Carousel) *VNode {
	return Section(ID(IDPerformance), Class("section"),
		H2(tr.T("performance.title")),
		Table(Class("performance-table"),
			Caption(tr.T("performance.historicalPerformance")),
			Thead(Tr(
				Th(Scope("col"), tr.T("performance.month")),
				Th(Scope("col"), tr.T("performance.profit")),
			)),
			Tbody(Range(Performance, func(_ int, m MonthlyProfit) *VNode {
				return Tr(Th(Scope("row"), m.Month), Td(strconv.Itoa(m.Profit)))
			})),
		),
		P(Class("disclaimer"), tr.T("performance.disclaimer")),
		H3(tr.T("performance.testimonials")),
		TestimonialsWidget(tr, carousel),
	)
}

// TestimonialsWidget renders the carousel fragment. The controls are links
// to ?t=N so the carousel also works as plain navigation.
func TestimonialsWidget(tr i18n.Translator, c *widget.Carousel) *VNode {
	if c == nil || c.Len() == 0 {
		return nil
	}
	t, _ := c.Current()
	n, cur := c.Len(), c.Index()
	return Div(LiveWidget(WidgetTestimonials), ID("testimonials"), Class("testimonials"), AriaLive("polite"),
		Blockquote(Class("testimonial"),
			P(Class("testimonial-rating"), AriaLabel(tr.T("performance.rating")+" "+strconv.Itoa(t.Rating)+"/5"),
				strings.Repeat("★", t.Rating),
			),
			P(Class("testimonial-content"), t.Content),
			P(Class("testimonial-author"), Strong(t.Name), Span(" · "+t.Role)),
		),
		Div(Class("testimonial-controls"),
			A(Href(testimonialHref((cur+n-1)%n)), LiveEvent("prev"), AriaLabel(tr.T("performance.previous")), "‹"),
			Span(Class("testimonial-position"), strconv.Itoa(cur+1)+" / "+strconv.Itoa(n)),
			A(Href(testimonialHref((cur+1)%n)), LiveEvent("next"), AriaLabel(tr.T("performance.next")), "›"),
		),
		Div(Class("testimonial-dots"),
			Range(make([]struct{}, n), func(i int, _ struct{}) *VNode {
				return A(Href(testimonialHref(i)), Class("testimonial-dot"),
					LiveEvent("select"), Data("index", strconv.Itoa(i)),
					AriaLabel(strconv.Itoa(i+1)+" / "+strconv.Itoa(n)),
					IfAttr(i == cur, Attribute("aria-current", "true")),
				)
			}),
		),
	)
}

func testimonialHref(i int) string {
	return "?" + TestimonialParam + "=" + strconv.Itoa(i) + "#testimonials"
}

func faq(tr i18n.Translator, acc *widget.Accordion) *VNode {
	return Section(ID(IDFAQ), Class("section"),
		H2(tr.T("faq.title")),
		P(Class("subtitle"), tr.T("faq.subtitle")),
		FAQWidget(tr, acc),
	)
}

// FAQWidget renders the accordion fragment as details elements, which
// open and close natively when the page has no live connection.
func FAQWidget(tr i18n.Translator, acc *widget.Accordion) *VNode {
	return Div(LiveWidget(WidgetFAQ), ID("faq-list"), Class("faq-list"),
		Range(FAQItems(tr), func(i int, item FAQItem) *VNode {
			open := acc != nil && acc.IsOpen(i)
			return Details(Class("faq-item"), IfAttr(open, Open()),
				Summary(LiveEvent("toggle"), Data("index", strconv.Itoa(i)), item.Question),
				P(ID("faq-answer-"+strconv.Itoa(i+1)), Class("faq-answer"), item.Answer),
			)
		}),
	)
}

func contact(tr i18n.Translator, snap widget.ContactSnapshot) *VNode {
	return Section(ID(IDContact), Class("section"),
		H2(tr.T("contact.title")),
		Div(Class("contact-grid"),
			Div(Class("contact-details"),
				H3(tr.T("contact.getInTouch")),
				P(tr.T("contact.description")),
				Ul(
					Li(Strong(tr.T("contact.email")+": "), A(Href("mailto:"+ContactEmail), ContactEmail)),
					Li(Strong(tr.T("contact.phone")+": "), A(Href("tel:"+strings.ReplaceAll(ContactPhone, " ", "")), ContactPhone)),
					Li(Strong(tr.T("contact.address")+": "), ContactAddress),
				),
			),
			ContactWidget(tr, snap),
		),
	)
}

// ContactWidget renders the contact form fragment for snap. While the
// submission is confirmed it renders the success message instead.
func ContactWidget(tr i18n.Translator, snap widget.ContactSnapshot) *VNode {
	root := []Attr{LiveWidget(WidgetContact), ID("contact-form"), Class("contact-form"), AriaLive("polite")}

	if snap.State == widget.Submitted {
		return Div(root,
			Div(Class("form-success"), Role("status"),
				H3(tr.T("contact.form.success.title")),
				P(tr.T("contact.form.success.message")),
			),
		)
	}

	sending := snap.State == widget.Submitting
	label := tr.T("contact.form.send")
	if sending {
		label = tr.T("contact.form.sending")
	}

	return Div(root,
		Form(Method("post"), Action("/contact#"+IDContact), NoValidate(), AriaBusy(sending),
			field(tr, snap, widget.FieldName, "text", "name"),
			field(tr, snap, widget.FieldEmail, "email", "email"),
			field(tr, snap, widget.FieldMessage, "", "off"),
			If(snap.Failure != "", P(Class("form-failure"), Role("alert"), snap.Failure)),
			Button(Type("submit"), Class("btn"), Disabled(snap.SubmitDisabled()), label),
		),
	)
}

// field renders one labelled input. An empty inputType renders a textarea.
func field(tr i18n.Translator, snap widget.ContactSnapshot, f widget.Field, inputType, autocomplete string) *VNode {
	id := "contact-" + string(f)
	errID := id + "-error"
	msg, invalid := snap.Errors[f]
	value := snap.Form.Get(f)

	attrs := []Attr{
		ID(id),
		Name(string(f)),
		Placeholder(tr.T("contact.form." + string(f) + "Placeholder")),
		Autocomplete(autocomplete),
		AriaInvalid(invalid),
		IfAttr(invalid, AriaDescribedBy(errID)),
	}

	var control *VNode
	if inputType == "" {
		control = Textarea(attrs, Rows(5), value)
	} else {
		control = Input(attrs, Type(inputType), Value(value))
	}

	return Div(Class("field"),
		Label(For(id), tr.T("contact.form."+string(f))),
		control,
		If(invalid, P(ID(errID), Class("field-error"), Role("alert"), msg)),
	)
}

func siteFooter(tr i18n.Translator, year int) *VNode {
	return Footer(Class("site-footer"),
		P(Strong(tr.T("common.brand"))),
		Nav(AriaLabel(i18n.Or(tr, "nav.title", "Quick Links")),
			H4(i18n.Or(tr, "nav.title", "Quick Links")),
			Ul(Range(NavLinks(tr), func(_ int, l NavLink) *VNode {
				return Li(A(Href("#"+l.Anchor), l.Label))
			})),
		),
		P(ContactEmail+" · "+ContactPhone+" · "+ContactAddress),
		P(Class("disclaimer"), tr.T("footer.disclaimer")),
		P(Textf("© %d %s. %s", year, tr.T("common.brand"), tr.T("footer.rights"))),
	)
}
