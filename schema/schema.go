// Package schema has configs, models and global variables for all parts of flowcast.
package schema

import "time"

// Ticket is one status event of a ticket. A ticket that progressed through
// three statuses appears as three Ticket rows sharing the same Name.
type Ticket struct {
	PI          string    `json:"pi"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Project     string    `json:"project"`
	Team        string    `json:"team"`
	StatusDate  time.Time `json:"status_date"`
	CreatedDate time.Time `json:"created_date"`
	Feature     string    `json:"feature"`
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Scope       string    `json:"scope"`
	TeamMembers int       `json:"team_members"`
	StoryPoints int       `json:"story_points"`
}

// DailyPoint is a single calendar day of a daily series.
type DailyPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DailySeries is a gap-free, date-ordered count for one project.
type DailySeries struct {
	Key     string       `json:"key"`
	Project string       `json:"project"`
	Kind    SeriesKind   `json:"kind"`
	Points  []DailyPoint `json:"points"`
}

// Values returns the scalar values of the series in date order.
func (s DailySeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// PIFlow is the distinct flow ticket count of a single program increment.
type PIFlow struct {
	PI             string `json:"pi"`
	FlowCount      int    `json:"flow_count"`
	CumulativeFlow int    `json:"cumulative_flow"`
}

// ProjectSeries groups the daily series derived for one project.
type ProjectSeries struct {
	Project string        `json:"project"`
	Series  []DailySeries `json:"series"`
	PIFlows []PIFlow      `json:"pi_flows,omitempty"`
}

// SeriesKey returns the identifier used for a project series, e.g. "ADA_Project_1_Done".
func SeriesKey(project string, kind SeriesKind) string {
	return project + "_" + string(kind)
}
