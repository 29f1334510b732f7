package synth

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/flowcast/schema"
)

func testOptions() Options {
	return Options{
		Tickets: 200,
		Seed:    123,
		Start:   schema.PIEpoch,
		End:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator()
	a, err := g.Generate(testOptions())
	require.NoError(t, err)
	b, err := g.Generate(testOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	opts := testOptions()
	opts.Seed = 7
	c, err := g.Generate(opts)
	require.NoError(t, err)
	assert.NotEqual(t, a.Tickets, c.Tickets)
}

func TestGenerateTicketShape(t *testing.T) {
	g := NewGenerator()
	out, err := g.Generate(testOptions())
	require.NoError(t, err)
	require.NotEmpty(t, out.Tickets)

	statusIndex := map[string]int{}
	for i, s := range schema.StatusOrder {
		statusIndex[s] = i
	}
	lastStatus := map[string]int{}
	for _, tk := range out.Tickets {
		assert.Contains(t, g.Projects, tk.Project)
		assert.Contains(t, g.Profiles[tk.Project].Teams, tk.Team)
		assert.Equal(t, g.TeamMembers[tk.Team], tk.TeamMembers)
		assert.Equal(t, schema.PILabel(tk.StatusDate), tk.PI)
		assert.True(t, tk.CreatedDate.Before(tk.StatusDate))
		assert.Contains(t, []string{"Bug", "Story"}, tk.Type)
		assert.Contains(t, priorities, tk.Priority)
		assert.Equal(t, statusScopes[tk.Status], tk.Scope)
		assert.Contains(t, storyPoints, tk.StoryPoints)

		// statuses of a ticket are a prefix of the workflow, in order
		prev, seen := lastStatus[tk.Name]
		if seen {
			assert.Equal(t, prev+1, statusIndex[tk.Status])
		} else {
			assert.Equal(t, schema.RefinedStatus, tk.Status)
		}
		lastStatus[tk.Name] = statusIndex[tk.Status]
	}

	// project 1 always progresses to Done
	for _, tk := range out.Tickets {
		if tk.Project == "ADA_Project_1" {
			assert.Equal(t, len(schema.StatusOrder)-1, lastStatus[tk.Name])
		}
	}
}

func TestGenerateInvalidOptions(t *testing.T) {
	g := NewGenerator()
	opts := testOptions()
	opts.Tickets = 0
	_, err := g.Generate(opts)
	assert.Error(t, err)

	opts = testOptions()
	opts.End = opts.Start.AddDate(0, 0, -1)
	_, err = g.Generate(opts)
	assert.Error(t, err)
}

func TestDistributeStoryPoints(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	assert.Equal(t, []int{1, 1, 1}, DistributeStoryPoints(rng, 0, 3))
	assert.Empty(t, DistributeStoryPoints(rng, 10, 0))

	points := DistributeStoryPoints(rng, 10, 20)
	total := 0
	for _, p := range points {
		total += p
	}
	assert.LessOrEqual(t, total, 10)
	assert.Less(t, len(points), 20)
}

func TestPlanningWindow(t *testing.T) {
	var tickets []schema.Ticket
	for _, pi := range []string{"1.3", "1.10", "1.1", "1.2", "1.1", "2.1", "1.4", "1.5", "1.6", "1.7", "1.8", "1.9"} {
		tickets = append(tickets, schema.Ticket{PI: pi})
	}
	assert.Equal(t,
		[]string{"1.2", "1.3", "1.4", "1.5", "1.6", "1.7", "1.8", "1.9"},
		PlanningWindow(tickets))
	assert.Empty(t, PlanningWindow(tickets[:1]))

	window := PlanningWindow(tickets[:4])
	assert.True(t, slices.IsSortedFunc(window, schema.ComparePI))
	assert.Len(t, window, 3)
}

func TestProfileCapacities(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, 85, g.Profiles["ADA_Project_1"].Capacity)
	assert.Equal(t, 72, g.Profiles["ADA_Project_2"].Capacity)
	assert.Equal(t, 45, g.Profiles["ADA_Project_3"].Capacity)
}
