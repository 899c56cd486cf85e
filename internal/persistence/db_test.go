package persistence

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/analysis"
	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testReport() analysis.Report {
	congestion := make([][]int, 4)
	for x := range congestion {
		congestion[x] = make([]int, 3)
	}
	congestion[1][2] = 5
	congestion[3][0] = 1

	return analysis.Report{
		Config: analysis.ConfigRecord{
			GridSize:       [2]int{4, 3},
			NumAgents:      2,
			SimulationTime: 12.5,
			Seed:           42,
			Ticks:          125,
		},
		Agents: []analysis.AgentStats{
			{
				ID:               "a",
				Status:           agents.StatusFinished,
				DistanceTraveled: 4.2,
				OptimalDistance:  3.6,
				PathEfficiency:   3.6 / 4.2,
				AverageSpeed:     1.1,
				Constraints:      agents.Constraints{MaxCost: 20, Priority: 3},
			},
			{
				ID:                "b",
				Status:            agents.StatusActive,
				RemainingDistance: 2,
				OptimalDistance:   2,
				Constraints:       agents.Constraints{Priority: 1},
			},
		},
		Congestion: congestion,
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	db := openTestDB(t)
	r := testReport()
	now := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)

	id, err := db.SaveRun("unit", r, now)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != id || got.Scenario != "unit" || got.Seed != 42 {
		t.Errorf("run = %+v", got)
	}
	if got.Width != 4 || got.Height != 3 || got.Ticks != 125 || got.NumAgents != 2 {
		t.Errorf("run dims/ticks = %+v", got)
	}
	if got.Finished != 1 {
		t.Errorf("Finished = %d, want 1", got.Finished)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	stats, err := db.AgentStats(id)
	if err != nil {
		t.Fatalf("AgentStats: %v", err)
	}
	if !reflect.DeepEqual(stats, r.Agents) {
		t.Errorf("stats = %+v, want %+v", stats, r.Agents)
	}

	cong, err := db.Congestion(id)
	if err != nil {
		t.Fatalf("Congestion: %v", err)
	}
	want := map[grid.Coord]int{{X: 1, Y: 2}: 5, {X: 3, Y: 0}: 1}
	if !reflect.DeepEqual(cong, want) {
		t.Errorf("congestion = %v, want %v", cong, want)
	}
}

func TestRecentRunsOrder(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := db.SaveRun("order", testReport(), base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := db.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("order = %s, %s; want %s, %s", runs[0].ID, runs[1].ID, ids[2], ids[1])
	}
}

func TestWeatherRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := db.LoadWeather(); err != nil || ok {
		t.Fatalf("LoadWeather on empty db = ok %v, err %v", ok, err)
	}

	storm, _ := weather.Preset(weather.KindStorm)
	fog, _ := weather.Preset(weather.KindFog)
	f := weather.NewField(10, 10, nil)
	f.SetGlobal(storm)
	if err := f.SetLocal(grid.Coord{X: 2, Y: 3}, fog); err != nil {
		t.Fatalf("SetLocal: %v", err)
	}
	want := f.State()

	if err := db.SaveWeather(want); err != nil {
		t.Fatalf("SaveWeather: %v", err)
	}
	got, ok, err := db.LoadWeather()
	if err != nil || !ok {
		t.Fatalf("LoadWeather = ok %v, err %v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("weather = %+v, want %+v", got, want)
	}

	restored := weather.NewField(want.Width, want.Height, nil)
	if err := restored.Restore(got); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if c, _ := restored.At(grid.Coord{X: 2, Y: 3}); c != fog {
		t.Errorf("restored local = %+v, want %+v", c, fog)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("seed", "7"); err != nil {
		t.Fatalf("SaveMeta: %v", err)
	}
	if err := db.SaveMeta("seed", "8"); err != nil {
		t.Fatalf("SaveMeta: %v", err)
	}
	v, err := db.GetMeta("seed")
	if err != nil || v != "8" {
		t.Errorf("GetMeta = %q, %v; want 8", v, err)
	}
}
