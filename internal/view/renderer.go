// Package view renders the tracker page and its charts.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/rajvarma2599/fitnessapp/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	NoRecentPlaceholder  = "No recent workouts"
	NoHistoryPlaceholder = "No workouts logged yet"
)

// WorkoutTypes is the form's selection list. Submitted types are not checked against it.
var WorkoutTypes = []string{"Running", "Cycling", "Swimming", "Weightlifting", "Yoga", "HIIT", "Walking", "Other"}

// NoticeKind distinguishes success from failure acknowledgements.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-off acknowledgement shown above the dashboard.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Page is everything a render needs.
type Page struct {
	Dashboard domain.Dashboard
	Location  *time.Location
	Notice    *Notice
}

type pageData struct {
	TotalWorkouts int
	TotalTime     string
	TotalCalories int
	GoalsAchieved int
	Recent        []string
	History       []string
	WorkoutTypes  []string
	Notice        *Notice
	Charts        Charts
}

// Renderer renders the full page on every call.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the whole page.
func (r *Renderer) Render(w io.Writer, page Page) error {
	loc := page.Location
	if loc == nil {
		loc = time.Local
	}
	d := page.Dashboard

	data := pageData{
		TotalWorkouts: d.TotalWorkouts,
		TotalTime:     fmt.Sprintf("%d min", d.TotalMinutes),
		TotalCalories: d.TotalCalories,
		GoalsAchieved: d.GoalsAchieved,
		Recent:        RecentItems(d.Recent),
		History:       HistoryItems(d.History, loc),
		WorkoutTypes:  WorkoutTypes,
		Notice:        page.Notice,
		Charts:        BuildCharts(d),
	}
	return r.tmpl.ExecuteTemplate(w, "page.html", data)
}

// RecentItems formats the recent-activity list, or its single placeholder.
func RecentItems(records []domain.WorkoutRecord) []string {
	if len(records) == 0 {
		return []string{NoRecentPlaceholder}
	}
	items := make([]string, 0, len(records))
	for _, rec := range records {
		items = append(items, fmt.Sprintf("%s - %d min - %d cal", rec.Type, rec.DurationMinutes, rec.CaloriesBurned))
	}
	return items
}

// HistoryItems formats the history list with local dates, or its single placeholder.
func HistoryItems(records []domain.WorkoutRecord, loc *time.Location) []string {
	if len(records) == 0 {
		return []string{NoHistoryPlaceholder}
	}
	items := make([]string, 0, len(records))
	for _, rec := range records {
		date := rec.OccurredAt.In(loc).Format("1/2/2006")
		items = append(items, fmt.Sprintf("%s - %s - %d min - %d cal", date, rec.Type, rec.DurationMinutes, rec.CaloriesBurned))
	}
	return items
}
