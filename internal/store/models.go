package store

import "time"

type RunModel struct {
	ID        string `gorm:"primaryKey"`
	Label     string `gorm:"not null;default:''"`
	Seed      int64  `gorm:"not null"`
	Hosts     int    `gorm:"not null"`
	CreatedAt time.Time
}

func (RunModel) TableName() string { return "runs" }

type ScheduleEntryModel struct {
	ID       uint    `gorm:"primaryKey"`
	RunID    string  `gorm:"not null;index"`
	Entity   int64   `gorm:"not null"`
	Seq      int     `gorm:"not null"`
	X        float64 `gorm:"not null"`
	Y        float64 `gorm:"not null"`
	Start    float64 `gorm:"column:start_step;not null"`
	Hour     float64 `gorm:"not null"`
	Room     string  `gorm:"not null;default:'-'"`
	RoomType string  `gorm:"not null;default:'-'"`
}

func (ScheduleEntryModel) TableName() string { return "schedule_entries" }

type OccupationModel struct {
	ID       uint    `gorm:"primaryKey"`
	RunID    string  `gorm:"not null;index"`
	Bucket   float64 `gorm:"not null"`
	X        float64 `gorm:"not null"`
	Y        float64 `gorm:"not null"`
	Capacity int     `gorm:"not null"`
	Used     int     `gorm:"not null"`
	Room     string  `gorm:"not null;default:'-'"`
	RoomType string  `gorm:"not null;default:'-'"`
}

func (OccupationModel) TableName() string { return "room_occupations" }
