package campus

import "sort"

type seatKey struct {
	Bucket   float64
	Location Coord
}

type seatCount struct {
	remaining int
	capacity  int
}

// CapacityLedger tracks remaining seats per (time bucket, location). Seats
// are never returned. It is not safe for concurrent use; State serialises
// every caller.
type CapacityLedger struct {
	seats map[seatKey]*seatCount
}

func NewCapacityLedger() *CapacityLedger {
	return &CapacityLedger{seats: make(map[seatKey]*seatCount)}
}

// TryAcquire takes one seat at loc during bucket. The first reference to a
// pair starts it at max seats.
func (l *CapacityLedger) TryAcquire(bucket float64, loc Coord, max int) bool {
	key := seatKey{Bucket: bucket, Location: loc}
	c, ok := l.seats[key]
	if !ok {
		if max < 0 {
			max = 0
		}
		c = &seatCount{remaining: max, capacity: max}
		l.seats[key] = c
	}
	if c.remaining <= 0 {
		return false
	}
	c.remaining--
	return true
}

// Remaining reports the free seats of a pair that has been touched.
func (l *CapacityLedger) Remaining(bucket float64, loc Coord) (int, bool) {
	c, ok := l.seats[seatKey{Bucket: bucket, Location: loc}]
	if !ok {
		return 0, false
	}
	return c.remaining, true
}

// Occupancy is the usage of one location during one bucket.
type Occupancy struct {
	Bucket   float64
	Location Coord
	Capacity int
	Used     int
}

// Occupation lists every touched pair ordered by bucket then location.
func (l *CapacityLedger) Occupation() []Occupancy {
	out := make([]Occupancy, 0, len(l.seats))
	for k, c := range l.seats {
		out = append(out, Occupancy{
			Bucket:   k.Bucket,
			Location: k.Location,
			Capacity: c.capacity,
			Used:     c.capacity - c.remaining,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Bucket != b.Bucket {
			return a.Bucket < b.Bucket
		}
		if a.Location.X != b.Location.X {
			return a.Location.X < b.Location.X
		}
		return a.Location.Y < b.Location.Y
	})
	return out
}
