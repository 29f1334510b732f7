// Package synth generates synthetic ticket status histories for agile projects.
package synth

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/huangsam/flowcast/schema"
)

// Profile describes how the tickets of one project move through the workflow.
type Profile struct {
	Teams        []string
	ProgressRate float64 // chance of reaching each next status
	ReviewDays   []int   // day choices after the In Review status
	DefaultDays  []int   // day choices after every other status
	Capacity     int     // story points available per PI
}

// Generator produces ticket tables from a fixed set of project profiles.
type Generator struct {
	Projects    []string
	Profiles    map[string]Profile
	TeamMembers map[string]int
	Features    []string
}

// Options controls a single generation run.
type Options struct {
	Tickets int
	Seed    uint64
	Start   time.Time
	End     time.Time
}

// Output is a generated ticket table plus its PI planning window.
type Output struct {
	Tickets []schema.Ticket
	PIs     []string
}

var (
	createdOffsets = []int{1, 3, 5, 7, 9, 11}
	priorities     = []string{"Blocker", "Major", "Minor", "Not Blocking"}
	storyPoints    = []int{1, 2, 3, 5}
	statusScopes   = map[string]string{
		schema.DoneStatus:       "Delivered",
		schema.InProgressStatus: "Committed",
		schema.InReviewStatus:   "Committed",
		schema.ToDoStatus:       "Planned",
		schema.RefinedStatus:    "Planned",
	}
)

// bugShare is the fraction of distinct tickets typed as Bug.
const bugShare = 0.4

// piWindow is how many planning increments follow the first one.
const piWindow = 8

// stepRange returns start, start+step, ... below end.
func stepRange(start, end, step int) []int {
	var out []int
	for v := start; v < end; v += step {
		out = append(out, v)
	}
	return out
}

// NewGenerator returns the generator with the three standard ADA projects.
func NewGenerator() *Generator {
	features := make([]string, 50)
	for i := range features {
		features[i] = fmt.Sprintf("ADA_Feature_%d", i+1)
	}
	return &Generator{
		Projects: []string{"ADA_Project_1", "ADA_Project_2", "ADA_Project_3"},
		Profiles: map[string]Profile{
			"ADA_Project_1": {
				Teams:        []string{"ADA_Team_1", "ADA_Team_2", "ADA_Team_3"},
				ProgressRate: 1.0,
				ReviewDays:   stepRange(1, 20, 1),
				DefaultDays:  stepRange(1, 3, 1),
				Capacity:     90 * 95 / 100,
			},
			"ADA_Project_2": {
				Teams:        []string{"ADA_Team_1", "ADA_Team_4"},
				ProgressRate: 0.8,
				ReviewDays:   stepRange(1, 10, 3),
				DefaultDays:  stepRange(1, 20, 4),
				Capacity:     90 * 80 / 100,
			},
			"ADA_Project_3": {
				Teams:        []string{"ADA_Team_5", "ADA_Team_6"},
				ProgressRate: 0.7,
				ReviewDays:   stepRange(1, 60, 10),
				DefaultDays:  stepRange(1, 35, 7),
				Capacity:     90 * 50 / 100,
			},
		},
		TeamMembers: map[string]int{
			"ADA_Team_1": 5, "ADA_Team_2": 9, "ADA_Team_3": 6,
			"ADA_Team_4": 10, "ADA_Team_5": 4, "ADA_Team_6": 11,
		},
		Features: features,
	}
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

// Generate builds the ticket table. The same options always yield the same table.
func (g *Generator) Generate(opts Options) (Output, error) {
	if opts.Tickets < 1 {
		return Output{}, fmt.Errorf("tickets must be at least 1 (received %d)", opts.Tickets)
	}
	start, end := schema.TruncateDay(opts.Start), schema.TruncateDay(opts.End)
	if end.Before(start) {
		return Output{}, fmt.Errorf("end date %s is before start date %s", end.Format(schema.DateFormat), start.Format(schema.DateFormat))
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	features := slices.Clone(g.Features)
	rng.Shuffle(len(features), func(i, j int) { features[i], features[j] = features[j], features[i] })

	span := int(end.Sub(start).Hours() / 24)
	var tickets []schema.Ticket
	for i := 1; i <= opts.Tickets; i++ {
		project := pick(rng, g.Projects)
		profile := g.Profiles[project]
		team := pick(rng, profile.Teams)
		statusDate := start.AddDate(0, 0, rng.IntN(span+1))
		created := statusDate.AddDate(0, 0, -pick(rng, createdOffsets))
		feature := pick(rng, features)

		for _, status := range schema.StatusOrder {
			if rng.Float64() >= profile.ProgressRate {
				break
			}
			tickets = append(tickets, schema.Ticket{
				PI:          schema.PILabel(statusDate),
				Name:        fmt.Sprintf("ADA_Ticket_%d", i),
				Status:      status,
				Project:     project,
				Team:        team,
				StatusDate:  statusDate,
				CreatedDate: created,
				Feature:     feature,
				Scope:       statusScopes[status],
				TeamMembers: g.TeamMembers[team],
			})
			days := profile.DefaultDays
			if status == schema.InReviewStatus {
				days = profile.ReviewDays
			}
			statusDate = statusDate.AddDate(0, 0, pick(rng, days))
		}
	}

	g.assignTypes(rng, tickets)
	g.assignPriorities(rng, tickets)
	g.assignStoryPoints(rng, tickets)
	return Output{Tickets: tickets, PIs: PlanningWindow(tickets)}, nil
}

// distinctNames returns ticket names in order of first appearance.
func distinctNames(tickets []schema.Ticket) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, t := range tickets {
		if _, ok := seen[t.Name]; !ok {
			seen[t.Name] = struct{}{}
			names = append(names, t.Name)
		}
	}
	return names
}

func (g *Generator) assignTypes(rng *rand.Rand, tickets []schema.Ticket) {
	names := distinctNames(tickets)
	bugs := int(bugShare * float64(len(names)))
	types := make([]string, len(names))
	for i := range types {
		types[i] = "Story"
		if i < bugs {
			types[i] = "Bug"
		}
	}
	rng.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })

	byName := make(map[string]string, len(names))
	for i, name := range names {
		byName[name] = types[i]
	}
	for i := range tickets {
		tickets[i].Type = byName[tickets[i].Name]
	}
}

func (g *Generator) assignPriorities(rng *rand.Rand, tickets []schema.Ticket) {
	byName := map[string]string{}
	for _, name := range distinctNames(tickets) {
		byName[name] = pick(rng, priorities)
	}
	for i := range tickets {
		tickets[i].Priority = byName[tickets[i].Name]
	}
}

type groupKey struct{ pi, project string }

// assignStoryPoints spreads each project's PI capacity over the distinct
// tickets it holds in that PI. Tickets left without points get 1.
func (g *Generator) assignStoryPoints(rng *rand.Rand, tickets []schema.Ticket) {
	groups := map[groupKey][]schema.Ticket{}
	for _, t := range tickets {
		k := groupKey{t.PI, t.Project}
		groups[k] = append(groups[k], t)
	}
	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b groupKey) int {
		return cmp.Or(cmp.Compare(a.pi, b.pi), cmp.Compare(a.project, b.project))
	})

	points := map[groupKey]map[string]int{}
	for _, k := range keys {
		names := distinctNames(groups[k])
		dist := DistributeStoryPoints(rng, g.Profiles[k.project].Capacity, len(names))
		points[k] = map[string]int{}
		for i, p := range dist {
			points[k][names[i]] = p
		}
	}
	for i := range tickets {
		p := points[groupKey{tickets[i].PI, tickets[i].Project}][tickets[i].Name]
		if p == 0 {
			p = 1
		}
		tickets[i].StoryPoints = p
	}
}

// DistributeStoryPoints draws points from {1, 2, 3, 5} for up to n tickets
// without exceeding capacity. It stops early once no value fits.
func DistributeStoryPoints(rng *rand.Rand, capacity, n int) []int {
	if n == 0 || capacity == 0 {
		out := make([]int, n)
		for i := range out {
			out[i] = 1
		}
		return out
	}
	out := make([]int, 0, n)
	remaining := capacity
	for range n {
		var fits []int
		for _, p := range storyPoints {
			if p <= remaining {
				fits = append(fits, p)
			}
		}
		if len(fits) == 0 {
			break
		}
		p := pick(rng, fits)
		out = append(out, p)
		remaining -= p
	}
	return out
}

// PlanningWindow returns the sorted distinct PIs of a table, skipping the
// first and keeping at most the next eight.
func PlanningWindow(tickets []schema.Ticket) []string {
	labels := make([]string, len(tickets))
	for i, t := range tickets {
		labels[i] = t.PI
	}
	sorted := schema.SortPIs(labels)
	if len(sorted) <= 1 {
		return []string{}
	}
	return sorted[1:min(len(sorted), piWindow+1)]
}
