package campus

import "sort"

// EntityID is assigned sequentially from 0 within a run and never reused.
type EntityID int64

type ComponentKey string

const (
	compSchedule ComponentKey = "schedule"
	compMovement ComponentKey = "movement"
)

// World stores per-entity components keyed by id.
type World struct {
	nextEntity EntityID
	components map[ComponentKey]map[EntityID]any
}

func newWorld() *World {
	return &World{
		nextEntity: 0,
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

// NewEntity hands out the next id.
func (w *World) NewEntity() EntityID {
	id := w.nextEntity
	w.nextEntity++
	return id
}

// Issued is the number of ids handed out so far.
func (w *World) Issued() int { return int(w.nextEntity) }

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) HasComponent(id EntityID, key ComponentKey) bool {
	_, ok := w.GetComponent(id, key)
	return ok
}

// Entities lists the ids holding key in ascending order.
func (w *World) Entities(key ComponentKey) []EntityID {
	store := w.components[key]
	ids := make([]EntityID, 0, len(store))
	for id := range store {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) Schedule(id EntityID) (Schedule, bool) {
	if v, ok := w.GetComponent(id, compSchedule); ok {
		if s, ok := v.(Schedule); ok {
			return s, true
		}
	}
	return nil, false
}

func (w *World) Movement(id EntityID) *TimetableMovement {
	if v, ok := w.GetComponent(id, compMovement); ok {
		if m, ok := v.(*TimetableMovement); ok {
			return m
		}
	}
	return nil
}
