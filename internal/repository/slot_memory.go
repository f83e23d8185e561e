package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"healthfirst/internal/domain"
)

// SlotStore holds one provider's slots in memory, at most one per
// (date, time) key. Every mutation runs under the write lock and bumps
// Version, which grid caches use as part of their key.
type SlotStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.Slot
	byKey   map[domain.SlotKey]string
	version uint64
	now     func() time.Time
}

func NewSlotStore() *SlotStore {
	return &SlotStore{
		byID:  make(map[string]domain.Slot),
		byKey: make(map[domain.SlotKey]string),
		now:   time.Now,
	}
}

func (s *SlotStore) Insert(slot domain.Slot) (domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.insertLocked(slot)
	if err != nil {
		return domain.Slot{}, err
	}
	s.version++
	return slot, nil
}

// InsertMany inserts every slot whose key is free and returns the ids of
// the ones skipped because their key or id was taken. It fails without
// writing anything if any slot carries an unknown status.
func (s *SlotStore) InsertMany(slots []domain.Slot) ([]domain.Slot, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range slots {
		if !slot.Status.Valid() {
			return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, slot.Status)
		}
	}

	created := make([]domain.Slot, 0, len(slots))
	var skipped []string
	for _, slot := range slots {
		stored, err := s.insertLocked(slot)
		if err != nil {
			skipped = append(skipped, domain.SlotID(slot.Date, slot.Time))
			continue
		}
		created = append(created, stored)
	}
	if len(created) > 0 {
		s.version++
	}
	return created, skipped, nil
}

func (s *SlotStore) insertLocked(slot domain.Slot) (domain.Slot, error) {
	if !slot.Status.Valid() {
		return domain.Slot{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, slot.Status)
	}
	if slot.ID == "" {
		slot.ID = domain.SlotID(slot.Date, slot.Time)
	}
	if _, taken := s.byKey[slot.Key()]; taken {
		return domain.Slot{}, fmt.Errorf("%w: %s", domain.ErrSlotConflict, slot.Key())
	}
	if _, taken := s.byID[slot.ID]; taken {
		return domain.Slot{}, fmt.Errorf("%w: id %s", domain.ErrSlotConflict, slot.ID)
	}

	now := s.now()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	if slot.UpdatedAt.IsZero() {
		slot.UpdatedAt = now
	}
	s.byID[slot.ID] = slot
	s.byKey[slot.Key()] = slot.ID
	return slot, nil
}

func (s *SlotStore) FindByKey(date, timeMark string) (domain.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[domain.SlotKey{Date: date, Time: timeMark}]
	if !ok {
		return domain.Slot{}, false
	}
	return s.byID[id], true
}

func (s *SlotStore) FindByID(id string) (domain.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.byID[id]
	return slot, ok
}

func (s *SlotStore) FilterByDate(date string) []domain.Slot {
	return s.List(domain.SlotFilter{StartDate: date, EndDate: date})
}

// List returns matching slots ordered by date, then time.
func (s *SlotStore) List(filter domain.SlotFilter) []domain.Slot {
	s.mu.RLock()
	out := make([]domain.Slot, 0, len(s.byID))
	for _, slot := range s.byID {
		if filter.Match(slot) {
			out = append(out, slot)
		}
	}
	s.mu.RUnlock()

	sortSlots(out)
	return out
}

func (s *SlotStore) UpdateStatus(id string, status domain.SlotStatus) (domain.Slot, error) {
	return s.UpdateFields(id, domain.SlotPatch{Status: &status})
}

func (s *SlotStore) UpdateFields(id string, patch domain.SlotPatch) (domain.Slot, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Slot{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *patch.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.byID[id]
	if !ok {
		return domain.Slot{}, fmt.Errorf("%w: %s", domain.ErrSlotNotFound, id)
	}

	if patch.Status != nil {
		slot.Status = *patch.Status
	}
	if patch.Duration != nil {
		slot.Duration = *patch.Duration
		if end, err := domain.EndTimeFor(slot.Time, slot.Duration); err == nil {
			slot.EndTime = end
		}
	}
	if patch.AppointmentType != nil {
		slot.AppointmentType = *patch.AppointmentType
	}
	if patch.Notes != nil {
		slot.Notes = *patch.Notes
	}
	slot.UpdatedAt = s.now()

	s.byID[id] = slot
	s.version++
	return slot, nil
}

// Remove deletes the slot with id. A missing id is not an error; the
// returned count is zero.
func (s *SlotStore) Remove(id string) int {
	return s.BulkRemove([]string{id})
}

func (s *SlotStore) RemoveSeries(seriesID string) []string {
	if seriesID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, slot := range s.byID {
		if slot.SeriesID == seriesID {
			s.deleteLocked(id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		s.version++
	}
	sort.Strings(removed)
	return removed
}

// BulkUpdateStatus sets status on every listed slot that exists and returns
// the changed slots. Unknown ids are ignored.
func (s *SlotStore) BulkUpdateStatus(ids []string, status domain.SlotStatus) ([]domain.Slot, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var updated []domain.Slot
	for _, id := range dedupe(ids) {
		slot, ok := s.byID[id]
		if !ok {
			continue
		}
		slot.Status = status
		slot.UpdatedAt = now
		s.byID[id] = slot
		updated = append(updated, slot)
	}
	if len(updated) > 0 {
		s.version++
	}
	return updated, nil
}

func (s *SlotStore) BulkRemove(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, id := range dedupe(ids) {
		if s.deleteLocked(id) {
			removed++
		}
	}
	if removed > 0 {
		s.version++
	}
	return removed
}

// Snapshot returns copies of the listed slots that exist, in the order given.
func (s *SlotStore) Snapshot(ids ...string) []domain.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Slot, 0, len(ids))
	for _, id := range dedupe(ids) {
		if slot, ok := s.byID[id]; ok {
			out = append(out, slot)
		}
	}
	return out
}

func (s *SlotStore) Series(seriesID string) []domain.Slot {
	if seriesID == "" {
		return nil
	}
	s.mu.RLock()
	var out []domain.Slot
	for _, slot := range s.byID {
		if slot.SeriesID == seriesID {
			out = append(out, slot)
		}
	}
	s.mu.RUnlock()

	sortSlots(out)
	return out
}

// Restore puts slots back exactly as given, replacing whatever holds their
// id or key. It undoes an update or a removal whose write-through failed.
func (s *SlotStore) Restore(slots ...domain.Slot) {
	if len(slots) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range slots {
		s.deleteLocked(slot.ID)
		if id, taken := s.byKey[slot.Key()]; taken {
			s.deleteLocked(id)
		}
		s.byID[slot.ID] = slot
		s.byKey[slot.Key()] = slot.ID
	}
	s.version++
}

func (s *SlotStore) deleteLocked(id string) bool {
	slot, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	delete(s.byKey, slot.Key())
	return true
}

func (s *SlotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *SlotStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func sortSlots(slots []domain.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Time < slots[j].Time
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
