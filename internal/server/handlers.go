package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/sections"
	"github.com/safetrade/site/internal/widget"
	"github.com/safetrade/site/pkg/middleware"
	"github.com/safetrade/site/pkg/render"
)

// submitTimeout bounds a synchronous submission from the form fallback.
const submitTimeout = 30 * time.Second

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	locale, persist := s.negotiator.Resolve(r)
	if persist {
		i18n.SetCookie(w, locale)
	}

	var snap widget.ContactSnapshot
	if r.URL.Query().Get(sections.SentParam) == "1" {
		snap.State = widget.Submitted
	}
	s.renderPage(w, r, locale, snap, http.StatusOK)
}

// handleContact is the form fallback: it validates, delivers synchronously
// and redirects to the confirmation, or re-renders the page with errors.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	locale, _ := s.negotiator.Resolve(r)
	tr := s.catalog.Translator(locale)

	form := widget.Form{
		Name:    r.PostFormValue(string(widget.FieldName)),
		Email:   r.PostFormValue(string(widget.FieldEmail)),
		Message: r.PostFormValue(string(widget.FieldMessage)),
	}

	if errs := widget.Validate(form, tr); len(errs) > 0 {
		s.metrics.RecordSubmission(middleware.OutcomeInvalid)
		for field := range errs {
			s.metrics.RecordValidationFailure(string(field))
		}
		s.renderPage(w, r, locale, widget.ContactSnapshot{Form: form, Errors: errs}, http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()
	if err := s.inbox.Submit(ctx, form.Submission(locale, s.clock.Now())); err != nil {
		snap := widget.ContactSnapshot{Form: form, Errors: map[widget.Field]string{}, Failure: tr.T(widget.KeySendFailed)}
		s.renderPage(w, r, locale, snap, http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, "/?"+sections.SentParam+"=1#"+sections.IDContact, http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, locale string, snap widget.ContactSnapshot, status int) {
	tr := s.catalog.Translator(locale)
	carousel := widget.NewCarousel(sections.Testimonials())
	if i, err := strconv.Atoi(r.URL.Query().Get(sections.TestimonialParam)); err == nil {
		carousel.Select(i)
	}
	state := sections.PageState{
		Locale:       locale,
		Locales:      s.localeOptions(),
		Year:         s.clock.Now().Year(),
		Contact:      snap,
		Testimonials: carousel,
		FAQ:          widget.NewAccordion(sections.FAQCount, 0),
	}

	page := render.PageData{
		Body:        sections.Page(tr, state),
		Title:       tr.T("site.title"),
		Description: tr.T("site.description"),
		Lang:        locale,
		StyleSheets: []string{s.assets.Asset("site.css")},
		Scripts:     []string{s.assets.Asset("live.js")},
	}
	for _, l := range s.catalog.Locales() {
		if l != locale {
			page.Alternates = append(page.Alternates, render.Alternate{Lang: l, Href: "/?" + i18n.LangParam + "=" + l})
		}
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, page); err != nil {
		s.logger.Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", locale)
	w.Header().Set("Vary", "Accept-Language, Cookie")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) localeOptions() []sections.LocaleOption {
	locales := s.catalog.Locales()
	opts := make([]sections.LocaleOption, 0, len(locales))
	for _, l := range locales {
		opts = append(opts, sections.LocaleOption{Code: l, Name: s.catalog.Name(l)})
	}
	return opts
}
