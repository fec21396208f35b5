// Package web serves the browser frontend: the activity list and detail pages.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/VK-10/AI-fitness-App/internal/auth"
	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/observability"
	"github.com/VK-10/AI-fitness-App/internal/web/activityclient"
	"github.com/VK-10/AI-fitness-App/internal/web/activitylist"
	"github.com/VK-10/AI-fitness-App/internal/web/routepath"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	layoutTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html"))
	detailTemplate = template.Must(template.ParseFS(templateFS, "templates/detail.html"))
)

var (
	languages = []language.Tag{
		language.English,
		language.German,
		language.French,
		language.Spanish,
	}
	languageMatcher = language.NewMatcher(languages)
)

// Server renders the web frontend on top of the activity API client.
type Server struct {
	client *activityclient.Client
	logger *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger overrides the server logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer constructs a Server.
func NewServer(client *activityclient.Client, opts ...Option) *Server {
	s := &Server{
		client: client,
		logger: log.New(log.Writer(), "[web] ", log.LstdFlags|log.Lmsgprefix),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed, authenticated handler.
func (s *Server) Handler(authCfg auth.Config) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(routepath.Health, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc(routepath.Activities, s.listActivities).Methods(http.MethodGet)
	r.HandleFunc(routepath.ActivityOpenPattern, s.openActivity).Methods(http.MethodPost)
	r.HandleFunc(routepath.ActivityDetailPattern, s.activityDetail).Methods(http.MethodGet)

	return observability.RequestLogger("web", s.logger)(auth.NewBrowserMiddleware(authCfg).Wrap(r))
}

// session returns a client bound to the caller's token; the JWT subject is the user id.
func (s *Server) session(r *http.Request) (*activityclient.Client, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, false
	}
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.client.WithSession(token, claims.Subject), true
}

func (s *Server) newView(client *activityclient.Client, w http.ResponseWriter, r *http.Request, tag language.Tag) *activitylist.View {
	return activitylist.New(
		listFetcher(client),
		httpNavigator{w: w, r: r},
		activitylist.WithLogger(s.logger),
		activitylist.WithLanguage(tag),
	)
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	client, ok := s.session(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	tag := requestLanguage(r)

	view := s.newView(client, w, r, tag)
	view.Mount(r.Context())
	view.Wait()
	defer view.Unmount()

	var body bytes.Buffer
	if err := view.Render(&body); err != nil {
		s.logger.Printf("render activity list: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writePage(w, http.StatusOK, tag, "Activities", body.Bytes())
}

func (s *Server) openActivity(w http.ResponseWriter, r *http.Request) {
	client, ok := s.session(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	view := s.newView(client, w, r, requestLanguage(r))
	view.Select(mux.Vars(r)[routepath.ActivityIDParam])
}

type detailData struct {
	Activity       *activityclient.Activity
	Recommendation *activityclient.Recommendation
	Type           string
	Duration       string
	Calories       string
	Started        string
	Back           string
}

func (s *Server) activityDetail(w http.ResponseWriter, r *http.Request) {
	client, ok := s.session(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	activityID := mux.Vars(r)[routepath.ActivityIDParam]
	tag := requestLanguage(r)

	activity, err := client.GetActivity(r.Context(), activityID)
	if err != nil {
		if errors.Is(err, activityclient.ErrNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		s.logger.Printf("load activity %s: %v", activityID, err)
		http.Error(w, "activity unavailable", http.StatusBadGateway)
		return
	}

	rec, err := client.GetRecommendation(r.Context(), activityID)
	if err != nil {
		if !errors.Is(err, activityclient.ErrNotFound) {
			s.logger.Printf("load recommendation %s: %v", activityID, err)
		}
		rec = nil
	}

	printer := message.NewPrinter(tag)
	data := detailData{
		Activity:       activity,
		Recommendation: rec,
		Type:           displayType(activity.Type),
		Duration:       printer.Sprintf("%d", activity.DurationMin),
		Calories:       printer.Sprintf("%d", activity.CaloriesBurned),
		Started:        activity.StartedAt.Format(time.RFC1123),
		Back:           routepath.Activities,
	}

	var body bytes.Buffer
	if err := detailTemplate.Execute(&body, data); err != nil {
		s.logger.Printf("render activity %s: %v", activityID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writePage(w, http.StatusOK, tag, data.Type, body.Bytes())
}

func (s *Server) writePage(w http.ResponseWriter, status int, tag language.Tag, title string, body []byte) {
	var page bytes.Buffer
	err := layoutTemplate.Execute(&page, map[string]any{
		"Lang":  tag.String(),
		"Title": title,
		"Body":  template.HTML(body),
	})
	if err != nil {
		s.logger.Printf("render layout: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(page.Bytes())
}

// listFetcher adapts the API client to the list view's collaborator.
func listFetcher(client *activityclient.Client) activitylist.FetcherFunc {
	return func(ctx context.Context) ([]activitylist.Activity, error) {
		items, err := client.GetActivities(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]activitylist.Activity, 0, len(items))
		for _, item := range items {
			out = append(out, activitylist.Activity{
				ID:             item.ID,
				Type:           displayType(item.Type),
				Duration:       item.DurationMin,
				CaloriesBurned: item.CaloriesBurned,
			})
		}
		return out, nil
	}
}

func displayType(raw string) string {
	if t, err := domain.ParseActivityType(raw); err == nil {
		return t.Label()
	}
	return raw
}

func requestLanguage(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := languageMatcher.Match(tags...)
	return languages[idx]
}
