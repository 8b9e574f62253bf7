package view

import "github.com/rajvarma2599/fitnessapp/internal/domain"

// WeekdayLabels are the page's fixed bar labels. The buckets they sit over are
// Sunday-first (time.Weekday order), so the Sunday count shows under "Mon".
var WeekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ChartConfig is the Chart.js constructor configuration.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	BorderWidth     int    `json:"borderWidth"`
	Fill            bool   `json:"fill,omitempty"`
}

type ChartOptions struct {
	Responsive bool   `json:"responsive"`
	Scales     Scales `json:"scales"`
}

type Scales struct {
	Y Axis `json:"y"`
}

type Axis struct {
	BeginAtZero bool `json:"beginAtZero"`
}

var defaultOptions = ChartOptions{Responsive: true, Scales: Scales{Y: Axis{BeginAtZero: true}}}

// WeeklyChart is the bar chart of this week's workouts per weekday.
func WeeklyChart(counts [7]int) ChartConfig {
	return ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels: append([]string(nil), WeekdayLabels...),
			Datasets: []Dataset{{
				Label:           "Workouts",
				Data:            counts[:],
				BackgroundColor: "#4CAF50",
				BorderColor:     "#4CAF50",
				BorderWidth:     1,
			}},
		},
		Options: defaultOptions,
	}
}

// MonthlyChart is the filled line chart of calories per day of month.
func MonthlyChart(labels []string, values []int) ChartConfig {
	return ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Calories Burned",
				Data:            values,
				BackgroundColor: "rgba(33, 150, 243, 0.2)",
				BorderColor:     "#2196F3",
				BorderWidth:     2,
				Fill:            true,
			}},
		},
		Options: defaultOptions,
	}
}

// Charts holds both chart configurations for one render.
type Charts struct {
	Weekly  ChartConfig `json:"weekly"`
	Monthly ChartConfig `json:"monthly"`
}

// BuildCharts derives both chart configurations from a dashboard.
func BuildCharts(d domain.Dashboard) Charts {
	return Charts{
		Weekly:  WeeklyChart(d.WeeklyCounts),
		Monthly: MonthlyChart(d.MonthlyLabels, d.MonthlyValues),
	}
}
