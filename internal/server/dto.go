package server

import (
	"TimetableSim/internal/campus"
	"TimetableSim/internal/sim"
	"TimetableSim/internal/store"
)

type entryDTO struct {
	Seq   int     `json:"seq"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Start float64 `json:"start"`
	Hour  float64 `json:"hour"`
	Room  string  `json:"room"`
	Type  string  `json:"type"`
}

type scheduleDTO struct {
	ID      int64      `json:"id"`
	Entries []entryDTO `json:"entries"`
}

type roomDTO struct {
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Capacity int     `json:"capacity"`
}

type occupancyDTO struct {
	Bucket   float64 `json:"bucket"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Capacity int     `json:"capacity"`
	Used     int     `json:"used"`
	Room     string  `json:"room"`
	Type     string  `json:"type"`
}

type runDTO struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Seed      int64  `json:"seed"`
	Hosts     int    `json:"hosts"`
	CreatedAt string `json:"created_at"`
}

func schedulesFromReport(rep campus.Report) []scheduleDTO {
	out := make([]scheduleDTO, 0)
	index := map[campus.EntityID]int{}
	for _, e := range rep.Entries {
		i, ok := index[e.Entity]
		if !ok {
			i = len(out)
			index[e.Entity] = i
			out = append(out, scheduleDTO{ID: int64(e.Entity)})
		}
		out[i].Entries = append(out[i].Entries, entryDTO{
			Seq:   e.Seq,
			X:     e.Location.X,
			Y:     e.Location.Y,
			Start: e.Start,
			Hour:  e.Hour,
			Room:  e.Room,
			Type:  e.Type,
		})
	}
	return out
}

func occupancyFromReport(rep campus.Report) []occupancyDTO {
	out := make([]occupancyDTO, 0, len(rep.Occupancy))
	for _, o := range rep.Occupancy {
		out = append(out, occupancyDTO{
			Bucket:   o.Bucket,
			X:        o.Location.X,
			Y:        o.Location.Y,
			Capacity: o.Capacity,
			Used:     o.Used,
			Room:     o.Room,
			Type:     o.Type,
		})
	}
	return out
}

func roomsFromMap(rooms *campus.RoomMap) []roomDTO {
	out := make([]roomDTO, 0, rooms.Len())
	for _, t := range rooms.Types() {
		for _, rec := range rooms.Records(t) {
			out = append(out, roomDTO{
				Label:    rec.Label,
				Type:     rec.Type.String(),
				X:        rec.Location.X,
				Y:        rec.Location.Y,
				Capacity: rec.Capacity,
			})
		}
	}
	return out
}

func runsToDTO(runs []store.Run) []runDTO {
	out := make([]runDTO, 0, len(runs))
	for _, r := range runs {
		out = append(out, runDTO{
			ID:        r.ID,
			Label:     r.Label,
			Seed:      r.Seed,
			Hosts:     r.Hosts,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}

// frameToMap shapes a frame for structpb, which only takes plain values.
func frameToMap(f sim.Frame) map[string]any {
	hosts := make([]any, 0, len(f.Hosts))
	for _, h := range f.Hosts {
		hosts = append(hosts, map[string]any{
			"id":     int64(h.ID),
			"x":      h.Pos.X,
			"y":      h.Pos.Y,
			"active": h.Active,
			"moving": h.Moving,
		})
	}
	return map[string]any{
		"now":    f.Now,
		"hour":   f.Hour,
		"active": int64(f.Active),
		"hosts":  hosts,
	}
}

func scheduleToMap(id campus.EntityID, plan campus.Schedule, timing campus.Timing) map[string]any {
	entries := make([]any, 0, len(plan))
	for i, e := range plan {
		loc := e.Node.Location()
		entries = append(entries, map[string]any{
			"seq":   int64(i),
			"x":     loc.X,
			"y":     loc.Y,
			"start": e.Start,
			"hour":  timing.HourOfDay(e.Start),
		})
	}
	return map[string]any{"id": int64(id), "entries": entries}
}
