package booking

import (
	assetModel "asset-booking/models/asset"
	bookingModel "asset-booking/models/booking"
)

// The partial check-in ledger is append-only; these helpers derive the
// returned / still-held views from it. For a booking's own assets the
// ledger is authoritative: an asset in the union set never blocks an
// extension and is never cascaded again, whatever its live status says.

// returnedSet computes the union of all ledger records' asset-ID sets.
func returnedSet(records []bookingModel.PartialCheckin) map[string]struct{} {
	out := make(map[string]struct{})
	for _, rec := range records {
		for _, id := range rec.AssetIDs {
			out[id] = struct{}{}
		}
	}
	return out
}

// dedupeIDs drops repeated IDs, keeping first-seen order.
func dedupeIDs(ids []string) []string {
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

// checkinComplete reports whether the returned set covers the booking's
// whole asset set.
func checkinComplete(b *bookingModel.Booking, returned map[string]struct{}) bool {
	for _, a := range b.Assets {
		if _, ok := returned[a.ID]; !ok {
			return false
		}
	}
	return true
}

// stillHeldAssets returns the booking's assets that are neither returned
// via the ledger nor simultaneously held active by another still-open
// booking. heldElsewhere maps asset ID to the other booking holding it.
func stillHeldAssets(b *bookingModel.Booking, returned map[string]struct{}, heldElsewhere map[string]uint) []assetModel.Asset {
	var out []assetModel.Asset
	for _, a := range b.Assets {
		if _, ok := returned[a.ID]; ok {
			continue
		}
		if _, ok := heldElsewhere[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

// unreturnedAssetIDs is the ledger-only view used by extend: returned
// assets must not block conflict detection, cross-booking holds are the
// conflict detector's business.
func unreturnedAssetIDs(b *bookingModel.Booking, returned map[string]struct{}) []string {
	var out []string
	for _, a := range b.Assets {
		if _, ok := returned[a.ID]; !ok {
			out = append(out, a.ID)
		}
	}
	return out
}

// fullyReturnedKits derives kit completion: a kit is done once every asset
// bearing its ID in the booking is in the returned set. Kit completion is
// never stored, only derived.
func fullyReturnedKits(assets []assetModel.Asset, returned map[string]struct{}) []string {
	members := make(map[string][]string)
	for _, a := range assets {
		if a.KitID != nil {
			members[*a.KitID] = append(members[*a.KitID], a.ID)
		}
	}

	var out []string
	for kitID, ids := range members {
		done := true
		for _, id := range ids {
			if _, ok := returned[id]; !ok {
				done = false
				break
			}
		}
		if done {
			out = append(out, kitID)
		}
	}
	return out
}

// kitIDsOf collects the distinct kit IDs tagged on the given assets.
func kitIDsOf(assets []assetModel.Asset) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range assets {
		if a.KitID == nil {
			continue
		}
		if _, ok := seen[*a.KitID]; ok {
			continue
		}
		seen[*a.KitID] = struct{}{}
		out = append(out, *a.KitID)
	}
	return out
}

func assetIDsOf(assets []assetModel.Asset) []string {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	return ids
}
