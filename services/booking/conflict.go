package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	bookingModel "asset-booking/models/booking"
)

// checkConflicts runs the conflict detector for the given asset subset and
// window. It is a pure read and safe to call speculatively; reserve and
// checkout pass the full asset set, extend only the still-held one.
func (s *Service) checkConflicts(ctx context.Context, b *bookingModel.Booking, assetIDs []string, from, to time.Time) error {
	others, err := s.Store.Overlapping(ctx, b.OrganizationID, assetIDs, from, to, b.ID)
	if err != nil {
		return fmt.Errorf("conflict detection for booking %d: %w", b.ID, err)
	}
	if len(others) == 0 {
		return nil
	}

	requested := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		requested[id] = struct{}{}
	}

	titles := make(map[string]struct{})
	names := make(map[string]struct{})
	for _, other := range others {
		for _, a := range other.Assets {
			if _, ok := requested[a.ID]; ok {
				titles[a.Title] = struct{}{}
				names[other.Name] = struct{}{}
			}
		}
	}

	return &ConflictError{
		BookingID:     b.ID,
		AssetTitles:   sortedKeys(titles),
		ClashingNames: sortedKeys(names),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
