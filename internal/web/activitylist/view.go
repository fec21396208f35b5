// Package activitylist renders a user's activities as clickable cards.
//
// A View fetches once, when mounted, and keeps the last successful result.
// Fetch failures are logged and leave the displayed list unchanged.
package activitylist

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/VK-10/AI-fitness-App/internal/web/routepath"
)

//go:embed templates/*.html
var templateFS embed.FS

var listTemplate = template.Must(template.New("list.html").
	Funcs(template.FuncMap{"open": routepath.ActivityOpen}).
	ParseFS(templateFS, "templates/list.html"))

// Activity is the summary shown on one card.
type Activity struct {
	ID             string
	Type           string
	Duration       int
	CaloriesBurned int
}

// ActivityFetcher retrieves the current user's activities.
type ActivityFetcher interface {
	GetActivities(ctx context.Context) ([]Activity, error)
}

// FetcherFunc adapts a function to ActivityFetcher.
type FetcherFunc func(ctx context.Context) ([]Activity, error)

// GetActivities calls f.
func (f FetcherFunc) GetActivities(ctx context.Context) ([]Activity, error) {
	return f(ctx)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the diagnostic logger for fetch failures.
func WithLogger(logger *log.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithLanguage sets the locale used to format numbers on cards.
func WithLanguage(tag language.Tag) Option {
	return func(v *View) {
		v.printer = message.NewPrinter(tag)
	}
}

// View is the activity list. It is safe for concurrent use.
type View struct {
	fetcher   ActivityFetcher
	navigator Navigator
	logger    *log.Logger
	printer   *message.Printer

	mu         sync.Mutex
	activities []Activity
	loaded     bool
	mounted    bool
	unmounted  bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// New constructs an unmounted View with an empty list.
func New(fetcher ActivityFetcher, navigator Navigator, opts ...Option) *View {
	v := &View{
		fetcher:    fetcher,
		navigator:  navigator,
		logger:     log.New(log.Writer(), "[activitylist] ", log.LstdFlags|log.Lmsgprefix),
		printer:    message.NewPrinter(language.English),
		activities: []Activity{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount starts the activity fetch in the background, bound to ctx. Only the
// first call fetches; later calls are no-ops.
func (v *View) Mount(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted || v.unmounted {
		return
	}
	v.mounted = true

	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.done = make(chan struct{})
	go v.fetch(fetchCtx, v.done)
}

func (v *View) fetch(ctx context.Context, done chan struct{}) {
	defer close(done)
	if v.fetcher == nil {
		return
	}

	activities, err := v.fetcher.GetActivities(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return
	}
	if err != nil {
		v.logger.Printf("fetch activities: %v", err)
		return
	}
	v.activities = append(make([]Activity, 0, len(activities)), activities...)
	v.loaded = true
}

// Unmount cancels an in-flight fetch and waits for it to return. Results
// arriving after Unmount are discarded.
func (v *View) Unmount() {
	v.mu.Lock()
	v.unmounted = true
	cancel, done := v.cancel, v.done
	v.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Wait blocks until the mount fetch has finished. It returns immediately if
// the view was never mounted.
func (v *View) Wait() {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Activities returns a copy of the displayed activities.
func (v *View) Activities() []Activity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Activity(nil), v.activities...)
}

// Loaded reports whether a fetch has succeeded.
func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

type cardData struct {
	ID       string
	Type     string
	Duration string
	Calories string
}

// Render writes the card grid for the current state. It never fetches.
func (v *View) Render(w io.Writer) error {
	activities := v.Activities()
	cards := make([]cardData, 0, len(activities))
	for _, a := range activities {
		cards = append(cards, cardData{
			ID:       a.ID,
			Type:     a.Type,
			Duration: v.printer.Sprintf("%d", a.Duration),
			Calories: v.printer.Sprintf("%d", a.CaloriesBurned),
		})
	}
	return listTemplate.Execute(w, cards)
}

// Select navigates to the detail route of the activity.
func (v *View) Select(activityID string) {
	if v.navigator == nil {
		return
	}
	v.navigator.Navigate(routepath.ActivityDetail(activityID))
}
