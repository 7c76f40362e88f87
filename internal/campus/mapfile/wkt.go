package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"TimetableSim/internal/campus"
)

// Read adds the geometry of one WKT file to m, one geometry per line.
// Consecutive points of a LINESTRING become connected nodes; every node
// read here carries tag. Blank lines and lines starting with # are skipped.
func Read(r io.Reader, tag int, origin campus.Coord, m *Map) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		geom, err := wkt.Unmarshal(line)
		if err == nil {
			err = addGeometry(geom, tag, origin, m)
		}
		if err != nil {
			return fmt.Errorf("map line %d %q: %w", lineNo, line, err)
		}
	}
	return scanner.Err()
}

func addGeometry(geom orb.Geometry, tag int, origin campus.Coord, m *Map) error {
	switch g := geom.(type) {
	case orb.Point:
		m.AddNode(toSim(g, origin), tag)
	case orb.LineString:
		return addLineString(g, tag, origin, m)
	case orb.MultiLineString:
		for _, ls := range g {
			if err := addLineString(ls, tag, origin, m); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported geometry %s", geom.GeoJSONType())
	}
	return nil
}

func addLineString(ls orb.LineString, tag int, origin campus.Coord, m *Map) error {
	if len(ls) < 2 {
		return fmt.Errorf("linestring needs 2 points, got %d", len(ls))
	}
	prev := m.AddNode(toSim(ls[0], origin), tag)
	for _, p := range ls[1:] {
		n := m.AddNode(toSim(p, origin), tag)
		m.Connect(prev, n)
		prev = n
	}
	return nil
}

func toSim(p orb.Point, origin campus.Coord) campus.Coord {
	return campus.ToSimFrame(p.X(), p.Y(), origin)
}

// ReadFiles builds one map from several files; the file at position i gets
// tag i+1.
func ReadFiles(paths []string, origin campus.Coord) (*Map, error) {
	m := NewMap()
	for i, p := range paths {
		cleanPath := filepath.Clean(p)
		f, err := os.Open(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("open map file %q: %w", cleanPath, err)
		}
		err = Read(f, i+1, origin, m)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read map file %q: %w", cleanPath, err)
		}
	}
	return m, nil
}
