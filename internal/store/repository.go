// Package store persists run reports in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"TimetableSim/internal/campus"
)

var ErrRunNotFound = errors.New("store: run not found")

// Run is the stored header of one simulation run.
type Run struct {
	ID        string
	Label     string
	Seed      int64
	Hosts     int
	CreatedAt time.Time
}

type RunRepository struct {
	db *gorm.DB
}

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// OpenMigrated opens path and brings the schema up to date.
func OpenMigrated(ctx context.Context, path string) (*RunRepository, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate %q: %w", path, err)
	}
	return NewRunRepository(db), nil
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun stores the report in one transaction and returns the new run.
func (r *RunRepository) SaveRun(ctx context.Context, label string, rep campus.Report) (Run, error) {
	m := RunModel{
		ID:        uuid.NewString(),
		Label:     label,
		Seed:      rep.Seed,
		Hosts:     rep.Hosts,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if len(rep.Entries) > 0 {
			rows := make([]ScheduleEntryModel, 0, len(rep.Entries))
			for _, e := range rep.Entries {
				rows = append(rows, ScheduleEntryModel{
					RunID:    m.ID,
					Entity:   int64(e.Entity),
					Seq:      e.Seq,
					X:        e.Location.X,
					Y:        e.Location.Y,
					Start:    e.Start,
					Hour:     e.Hour,
					Room:     e.Room,
					RoomType: e.Type,
				})
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		if len(rep.Occupancy) > 0 {
			rows := make([]OccupationModel, 0, len(rep.Occupancy))
			for _, o := range rep.Occupancy {
				rows = append(rows, OccupationModel{
					RunID:    m.ID,
					Bucket:   o.Bucket,
					X:        o.Location.X,
					Y:        o.Location.Y,
					Capacity: o.Capacity,
					Used:     o.Used,
					Room:     o.Room,
					RoomType: o.Type,
				})
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	return toRun(m), nil
}

// ListRuns returns the newest runs first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows := make([]RunModel, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]Run, 0, len(rows))
	for _, m := range rows {
		result = append(result, toRun(m))
	}
	return result, nil
}

// LoadReport rebuilds the report stored under id.
func (r *RunRepository) LoadReport(ctx context.Context, id string) (campus.Report, error) {
	var m RunModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return campus.Report{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return campus.Report{}, err
	}

	var entries []ScheduleEntryModel
	if err := r.db.WithContext(ctx).Where("run_id = ?", id).Order("entity ASC, seq ASC").Find(&entries).Error; err != nil {
		return campus.Report{}, err
	}
	var occ []OccupationModel
	if err := r.db.WithContext(ctx).Where("run_id = ?", id).Order("bucket ASC, x ASC, y ASC").Find(&occ).Error; err != nil {
		return campus.Report{}, err
	}

	rep := campus.Report{Seed: m.Seed, Hosts: m.Hosts}
	for _, e := range entries {
		rep.Entries = append(rep.Entries, campus.ReportEntry{
			Entity:   campus.EntityID(e.Entity),
			Seq:      e.Seq,
			Location: campus.Coord{X: e.X, Y: e.Y},
			Start:    e.Start,
			Hour:     e.Hour,
			Room:     e.Room,
			Type:     e.RoomType,
		})
	}
	for _, o := range occ {
		rep.Occupancy = append(rep.Occupancy, campus.ReportRoom{
			Occupancy: campus.Occupancy{
				Bucket:   o.Bucket,
				Location: campus.Coord{X: o.X, Y: o.Y},
				Capacity: o.Capacity,
				Used:     o.Used,
			},
			Room: o.Room,
			Type: o.RoomType,
		})
	}
	return rep, nil
}

func toRun(m RunModel) Run {
	return Run{ID: m.ID, Label: m.Label, Seed: m.Seed, Hosts: m.Hosts, CreatedAt: m.CreatedAt}
}
