package campus

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// ReportEntry is a schedule entry resolved against the room map.
type ReportEntry struct {
	Entity   EntityID
	Seq      int
	Location Coord
	Start    float64
	Hour     float64
	Room     string
	Type     string
}

// ReportRoom is one row of room occupation.
type ReportRoom struct {
	Occupancy
	Room string
	Type string
}

// Report is the end-of-run view of the schedule table and the ledger.
type Report struct {
	Seed      int64
	Hosts     int
	Entries   []ReportEntry
	Occupancy []ReportRoom
}

// Report resolves the schedule table and occupation for printing or storage.
func (s *State) Report() (Report, error) {
	rooms, err := s.Rooms()
	if err != nil {
		return Report{}, err
	}
	opts := s.Options()
	timing := opts.Timing
	rep := Report{Seed: opts.Seed, Hosts: s.Spawned()}
	for _, es := range s.Schedules() {
		for seq, entry := range es.Schedule {
			row := ReportEntry{
				Entity:   es.ID,
				Seq:      seq,
				Location: entry.Node.Location(),
				Start:    entry.Start,
				Hour:     timing.HourOfDay(entry.Start),
				Room:     "-",
				Type:     "-",
			}
			if rec, ok := rooms.RecordAt(row.Location); ok {
				row.Room, row.Type = rec.Label, rec.Type.String()
			}
			rep.Entries = append(rep.Entries, row)
		}
	}
	for _, occ := range s.Occupation() {
		row := ReportRoom{Occupancy: occ, Room: "-", Type: "-"}
		if rec, ok := rooms.RecordAt(occ.Location); ok {
			row.Room, row.Type = rec.Label, rec.Type.String()
		}
		rep.Occupancy = append(rep.Occupancy, row)
	}
	return rep, nil
}

// WriteText prints the schedule table followed by room occupation.
func (r Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SCHEDULES (%d hosts, seed %d)\n", r.Hosts, r.Seed)
	fmt.Fprintln(tw, "entity\tseq\tstep\thour\troom\ttype\tlocation")
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%d\t%d\t%.1f\t%05.2f\t%s\t%s\t%v\n",
			e.Entity, e.Seq, e.Start, e.Hour, e.Room, e.Type, e.Location)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ROOM OCCUPATION")
	fmt.Fprintln(tw, "step\troom\ttype\tused\tcapacity\tlocation")
	for _, o := range r.Occupancy {
		fmt.Fprintf(tw, "%.1f\t%s\t%s\t%d\t%d\t%v\n",
			o.Bucket, o.Room, o.Type, o.Used, o.Capacity, o.Location)
	}
	return tw.Flush()
}
