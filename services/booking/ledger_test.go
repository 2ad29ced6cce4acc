package booking

import (
	"reflect"
	"sort"
	"testing"

	assetModel "asset-booking/models/asset"
	bookingModel "asset-booking/models/booking"
)

func strPtr(s string) *string { return &s }

func bookingWithAssets(ids ...string) *bookingModel.Booking {
	b := &bookingModel.Booking{ID: 1}
	for _, id := range ids {
		b.Assets = append(b.Assets, assetModel.Asset{ID: id, Title: "asset " + id})
	}
	return b
}

func TestReturnedSetUnionsRecords(t *testing.T) {
	records := []bookingModel.PartialCheckin{
		{AssetIDs: []string{"a", "b"}},
		{AssetIDs: []string{"b", "c"}},
	}
	got := returnedSet(records)
	if len(got) != 3 {
		t.Fatalf("returnedSet = %v, want 3 distinct assets", got)
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, ok := got[id]; !ok {
			t.Errorf("returnedSet missing %q", id)
		}
	}
}

func TestDedupeIDsKeepsFirstSeenOrder(t *testing.T) {
	got := dedupeIDs([]string{"b", "a", "b", "c", "a"})
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("dedupeIDs = %v, want [b a c]", got)
	}
}

func TestCheckinComplete(t *testing.T) {
	b := bookingWithAssets("a", "b")

	if checkinComplete(b, map[string]struct{}{"a": {}}) {
		t.Error("checkinComplete = true with one of two assets returned")
	}
	if !checkinComplete(b, map[string]struct{}{"a": {}, "b": {}}) {
		t.Error("checkinComplete = false with all assets returned")
	}
}

func TestStillHeldAssetsExcludesReturnedAndHeldElsewhere(t *testing.T) {
	b := bookingWithAssets("a", "b", "c")
	returned := map[string]struct{}{"a": {}}
	heldElsewhere := map[string]uint{"b": 99}

	got := stillHeldAssets(b, returned, heldElsewhere)
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("stillHeldAssets = %v, want only asset c", got)
	}
}

func TestUnreturnedAssetIDsIgnoresCrossBookingHolds(t *testing.T) {
	b := bookingWithAssets("a", "b", "c")
	got := unreturnedAssetIDs(b, map[string]struct{}{"b": {}})
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unreturnedAssetIDs = %v, want %v", got, want)
	}
}

func TestFullyReturnedKits(t *testing.T) {
	assets := []assetModel.Asset{
		{ID: "a1", KitID: strPtr("kit1")},
		{ID: "a2", KitID: strPtr("kit1")},
		{ID: "b1", KitID: strPtr("kit2")},
		{ID: "loose"},
	}

	// Partial kit return: kit1 half done, kit2 untouched.
	got := fullyReturnedKits(assets, map[string]struct{}{"a1": {}})
	if len(got) != 0 {
		t.Fatalf("fullyReturnedKits = %v, want none", got)
	}

	// kit1 done, kit2 still out, the loose asset is irrelevant.
	got = fullyReturnedKits(assets, map[string]struct{}{"a1": {}, "a2": {}})
	if !reflect.DeepEqual(got, []string{"kit1"}) {
		t.Fatalf("fullyReturnedKits = %v, want [kit1]", got)
	}

	got = fullyReturnedKits(assets, map[string]struct{}{"a1": {}, "a2": {}, "b1": {}})
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"kit1", "kit2"}) {
		t.Fatalf("fullyReturnedKits = %v, want [kit1 kit2]", got)
	}
}

func TestKitIDsOfDeduplicates(t *testing.T) {
	assets := []assetModel.Asset{
		{ID: "a1", KitID: strPtr("kit1")},
		{ID: "a2", KitID: strPtr("kit1")},
		{ID: "b1", KitID: strPtr("kit2")},
		{ID: "loose"},
	}
	got := kitIDsOf(assets)
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"kit1", "kit2"}) {
		t.Fatalf("kitIDsOf = %v, want [kit1 kit2]", got)
	}
}
