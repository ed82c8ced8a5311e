package split

import (
	"fmt"

	"github.com/mmynk/tablesplit/internal/calculator"
)

// AssignItem gives itemID to guest for ByItem mode. If another guest holds
// the item it moves, so an item never belongs to two guests.
func (s *Session) AssignItem(guest int, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAssignmentLocked(guest, itemID); err != nil {
		return err
	}
	s.assignments[itemID] = guest
	return nil
}

// UnassignItem removes itemID from guest. The item then counts toward
// nobody until it is assigned again. Unassigning an item guest does not
// hold is a no-op.
func (s *Session) UnassignItem(guest int, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAssignmentLocked(guest, itemID); err != nil {
		return err
	}
	if owner, ok := s.assignments[itemID]; ok && owner == guest {
		delete(s.assignments, itemID)
	}
	return nil
}

// AssignedItems returns the item IDs guest holds, in snapshot order.
func (s *Session) AssignedItems(guest int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkGuestLocked(guest); err != nil {
		return nil, err
	}
	return calculator.AssignedItems(s.snapshot.Items, s.assignments, guest), nil
}

// Owner returns the guest holding itemID, if any.
func (s *Session) Owner(itemID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.assignments[itemID]
	return g, ok
}

func (s *Session) checkAssignmentLocked(guest int, itemID string) error {
	if s.closedLocked() {
		return ErrSessionClosed
	}
	if err := s.checkGuestLocked(guest); err != nil {
		return err
	}
	if _, ok := s.snapshot.Item(itemID); !ok {
		return fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
	}
	return nil
}
