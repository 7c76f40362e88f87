package campus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// RoomType classifies what a location is used for.
type RoomType int

const (
	LectureHall RoomType = iota
	SeminarRoom
	Table
	Mensa
	PCRoom
	Library
	Leisure
)

var roomTypeNames = [...]string{
	LectureHall: "LECTURE_HALL",
	SeminarRoom: "SEMINAR_ROOM",
	Table:       "TABLE",
	Mensa:       "MENSA",
	PCRoom:      "PC_ROOM",
	Library:     "LIBRARY",
	Leisure:     "LEISURE",
}

func (t RoomType) String() string {
	if t < 0 || int(t) >= len(roomTypeNames) {
		return fmt.Sprintf("RoomType(%d)", int(t))
	}
	return roomTypeNames[t]
}

// AllRoomTypes lists every room type in declaration order.
func AllRoomTypes() []RoomType {
	return []RoomType{LectureHall, SeminarRoom, Table, Mensa, PCRoom, Library, Leisure}
}

// roomKeywords is evaluated top to bottom; the first group with a matching
// keyword decides the type.
var roomKeywords = []struct {
	typ      RoomType
	keywords []string
}{
	{LectureHall, []string{"hs", "lecture", "hörsaal"}},
	{SeminarRoom, []string{"corridor", "seminar", "room", "chair"}},
	{Table, []string{"table"}},
	{Mensa, []string{"coffee", "cafe", "mensa"}},
	{PCRoom, []string{"pc", "computer", "rechner"}},
}

// ClassifyRoom derives a RoomType from a free-form label. Labels that match
// no keyword are Leisure. Library is never derived from a label.
func ClassifyRoom(label string) RoomType {
	name := strings.ToLower(label)
	for _, group := range roomKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(name, kw) {
				return group.typ
			}
		}
	}
	return Leisure
}

// RoomRecord is one seat-bearing location of a room.
type RoomRecord struct {
	Type     RoomType
	Label    string
	Location Coord
	Capacity int
}

// RoomMap groups room records by type. It is read-only once built.
type RoomMap struct {
	byType map[RoomType][]RoomRecord
}

func newRoomMap() *RoomMap {
	return &RoomMap{byType: make(map[RoomType][]RoomRecord)}
}

// Records returns the records of one type in file order.
func (m *RoomMap) Records(t RoomType) []RoomRecord {
	if m == nil {
		return nil
	}
	return m.byType[t]
}

// Types returns the room types present in the map, sorted.
func (m *RoomMap) Types() []RoomType {
	if m == nil {
		return nil
	}
	types := make([]RoomType, 0, len(m.byType))
	for t := range m.byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Len is the total number of records.
func (m *RoomMap) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, recs := range m.byType {
		n += len(recs)
	}
	return n
}

// Lookup indexes the records of the given types by location and sums their
// capacity. When two records share a location the first one wins.
func (m *RoomMap) Lookup(types []RoomType) (map[Coord]RoomRecord, int) {
	index := make(map[Coord]RoomRecord)
	total := 0
	if m == nil {
		return index, 0
	}
	for _, t := range types {
		for _, rec := range m.byType[t] {
			total += rec.Capacity
			if _, ok := index[rec.Location]; !ok {
				index[rec.Location] = rec
			}
		}
	}
	return index, total
}

// RecordAt finds the record at a location across all types.
func (m *RoomMap) RecordAt(loc Coord) (RoomRecord, bool) {
	if m == nil {
		return RoomRecord{}, false
	}
	for _, t := range m.Types() {
		for _, rec := range m.byType[t] {
			if rec.Location == loc {
				return rec, true
			}
		}
	}
	return RoomRecord{}, false
}

const geometryMarker = "POINT"

// ParseRoomDescription reads a room description:
//
//	# room: <label> ; capacity: <n>
//	POINT (<x> <y>)
//
// Every POINT becomes a record carrying the preceding room's type and
// capacity. Any malformed line aborts the whole parse.
func ParseRoomDescription(r io.Reader, origin Coord) (*RoomMap, error) {
	scanner := bufio.NewScanner(r)
	m := newRoomMap()
	var (
		current *RoomRecord
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			label, capacity, err := parseRoomMetadata(line[1:])
			if err != nil {
				return nil, &ParseError{Kind: MalformedMetadata, Line: lineNo, Text: line, Err: err}
			}
			current = &RoomRecord{Type: ClassifyRoom(label), Label: label, Capacity: capacity}
		case strings.HasPrefix(line, geometryMarker):
			if current == nil {
				return nil, &ParseError{Kind: MalformedGeometry, Line: lineNo, Text: line, Err: errors.New("point before any room")}
			}
			x, y, text, err := parsePoint(line[len(geometryMarker):])
			if err != nil {
				return nil, &ParseError{Kind: MalformedGeometry, Line: lineNo, Text: text, Err: err}
			}
			rec := *current
			rec.Location = ToSimFrame(x, y, origin)
			m.byType[rec.Type] = append(m.byType[rec.Type], rec)
		default:
			return nil, &ParseError{Kind: UnrecognizedLine, Line: lineNo, Text: raw}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read room description: %w", err)
	}
	return m, nil
}

func parseRoomMetadata(body string) (string, int, error) {
	fields := strings.Split(body, ";")
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("want 2 fields, got %d", len(fields))
	}
	var (
		label           string
		capacity        int
		hasRoom, hasCap bool
	)
	for _, field := range fields {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			return "", 0, fmt.Errorf("field %q has no ':'", strings.TrimSpace(field))
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "room":
			if value == "" || hasRoom {
				return "", 0, fmt.Errorf("bad room field %q", strings.TrimSpace(field))
			}
			label, hasRoom = value, true
		case "capacity":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || hasCap {
				return "", 0, fmt.Errorf("bad capacity %q", value)
			}
			capacity, hasCap = n, true
		default:
			return "", 0, fmt.Errorf("unknown field %q", strings.TrimSpace(key))
		}
	}
	if !hasRoom || !hasCap {
		return "", 0, errors.New("need room and capacity fields")
	}
	return label, capacity, nil
}

// parsePoint parses " (<x> <y>)". It returns the text between the
// parentheses so callers can name it in errors.
func parsePoint(rest string) (float64, float64, string, error) {
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return 0, 0, rest, errors.New("coordinates must be enclosed in parentheses")
	}
	inner := strings.TrimSpace(rest[1 : len(rest)-1])
	parts := strings.Fields(inner)
	if len(parts) != 2 {
		return 0, 0, inner, fmt.Errorf("bad coordinate values %q", inner)
	}
	x, errX := strconv.ParseFloat(parts[0], 64)
	y, errY := strconv.ParseFloat(parts[1], 64)
	if errX != nil || errY != nil {
		return 0, 0, inner, fmt.Errorf("bad coordinate values %q", inner)
	}
	return x, y, inner, nil
}

// RoomSource opens a room description.
type RoomSource func() (io.ReadCloser, error)

// FileRoomSource reads the description from path.
func FileRoomSource(path string) RoomSource {
	return func() (io.ReadCloser, error) {
		cleanPath := filepath.Clean(path)
		f, err := os.Open(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("open room description %q: %w", cleanPath, err)
		}
		return f, nil
	}
}

// LoadRoomMap opens src and parses it.
func LoadRoomMap(src RoomSource, origin Coord) (*RoomMap, error) {
	if src == nil {
		return nil, errors.New("campus: no room source")
	}
	rc, err := src()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseRoomDescription(rc, origin)
}
