package campus

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRoomPriority(t *testing.T) {
	tests := []struct {
		label string
		want  RoomType
	}{
		{"HS 1", LectureHall},
		{"Lecture Hall B", LectureHall},
		{"Seminar room 2", SeminarRoom},
		{"corridor east", SeminarRoom},
		{"Chair office", SeminarRoom},
		{"pc room", SeminarRoom}, // "room" is checked before the computer keywords
		{"Table 3", Table},
		{"Cafeteria table", Table},
		{"Coffee corner", Mensa},
		{"MENSA", Mensa},
		{"PC-Pool", PCRoom},
		{"Computer lab", PCRoom},
		{"Library", Leisure},
		{"Garden", Leisure},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyRoom(tc.label))
		})
	}
}

func TestParseRoomDescriptionRoundTrip(t *testing.T) {
	desc := strings.Join([]string{
		"# room: HS 1 ; capacity: 120",
		"POINT (10 20)",
		"POINT (11 21)",
		"",
		"#capacity:4;room:Table 7",
		"POINT (1.5 -2.5)",
		"#  Room :  Mensa  ;  Capacity : 0  ",
		"  POINT ( 3 4 )  ",
	}, "\n")

	m, err := ParseRoomDescription(strings.NewReader(desc), Coord{X: 1, Y: 2})
	require.NoError(t, err)

	assert.Equal(t, []RoomType{LectureHall, Table, Mensa}, m.Types())
	assert.Equal(t, []RoomRecord{
		{Type: LectureHall, Label: "HS 1", Location: Coord{X: 9, Y: -22}, Capacity: 120},
		{Type: LectureHall, Label: "HS 1", Location: Coord{X: 10, Y: -23}, Capacity: 120},
	}, m.Records(LectureHall))
	assert.Equal(t, []RoomRecord{
		{Type: Table, Label: "Table 7", Location: Coord{X: 0.5, Y: 0.5}, Capacity: 4},
	}, m.Records(Table))
	assert.Equal(t, []RoomRecord{
		{Type: Mensa, Label: "Mensa", Location: Coord{X: 2, Y: -6}, Capacity: 0},
	}, m.Records(Mensa))
	assert.Equal(t, 4, m.Len())

	index, total := m.Lookup([]RoomType{LectureHall, Table})
	assert.Len(t, index, 3)
	assert.Equal(t, 244, total)
}

func TestParseRoomDescriptionNamesBadCoordinates(t *testing.T) {
	desc := "# room: HS 1; capacity: 10\nPOINT (abc def)\n"
	m, err := ParseRoomDescription(strings.NewReader(desc), Coord{})
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "abc def")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, MalformedGeometry, perr.Kind)
	assert.Equal(t, "abc def", perr.Text)
	assert.Equal(t, 2, perr.Line)
}

func TestParseRoomDescriptionRejects(t *testing.T) {
	tests := []struct {
		name string
		desc string
		kind ParseErrorKind
		text string
	}{
		{"three fields", "# room: a; capacity: 1; floor: 2", MalformedMetadata, "# room: a; capacity: 1; floor: 2"},
		{"one field", "# room: a", MalformedMetadata, "# room: a"},
		{"capacity not a number", "# room: a; capacity: many", MalformedMetadata, "# room: a; capacity: many"},
		{"negative capacity", "# room: a; capacity: -1", MalformedMetadata, "# room: a; capacity: -1"},
		{"missing room", "# capacity: 1; capacity: 2", MalformedMetadata, "# capacity: 1; capacity: 2"},
		{"unknown key", "# name: a; capacity: 2", MalformedMetadata, "# name: a; capacity: 2"},
		{"one coordinate", "# room: a; capacity: 1\nPOINT (1)", MalformedGeometry, "1"},
		{"no parentheses", "# room: a; capacity: 1\nPOINT 1 2", MalformedGeometry, "1 2"},
		{"point before room", "POINT (1 2)", MalformedGeometry, "POINT (1 2)"},
		{"unknown line", "# room: a; capacity: 1\nLINESTRING (1 2, 3 4)", UnrecognizedLine, "LINESTRING (1 2, 3 4)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ParseRoomDescription(strings.NewReader(tc.desc), Coord{})
			require.Error(t, err)
			assert.Nil(t, m)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %T: %v", err, err)
			assert.Equal(t, tc.kind, perr.Kind)
			assert.Equal(t, tc.text, perr.Text)
			assert.Contains(t, err.Error(), tc.text)
		})
	}
}

func TestStateRoomsLoadedOncePerRun(t *testing.T) {
	src := &countingSource{text: "# room: HS 1; capacity: 3\nPOINT (0 0)\n"}
	s := NewState(testGraph{}, &directFinder{}, src.open, DefaultOptions(), nil)

	first, err := s.Rooms()
	require.NoError(t, err)
	second, err := s.Rooms()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, src.opens)

	s.Reset()
	third, err := s.Rooms()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, src.opens)
	assert.Equal(t, first.Records(LectureHall), third.Records(LectureHall))
}

func TestStateRoomsErrorIsNotCached(t *testing.T) {
	src := &countingSource{text: "garbage"}
	s := NewState(testGraph{}, &directFinder{}, src.open, DefaultOptions(), nil)

	_, err := s.Rooms()
	require.Error(t, err)
	_, err = s.Rooms()
	require.Error(t, err)
	assert.Equal(t, 2, src.opens)
}
