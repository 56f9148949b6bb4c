package services

import (
	"saferoom-locator/internal/domain"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	// One degree of latitude is roughly 111.2 km everywhere.
	d := DistanceMeters(domain.Coordinate{Lat: 0, Lng: 0}, domain.Coordinate{Lat: 1, Lng: 0})
	if d < 111000 || d > 111400 {
		t.Fatalf("DistanceMeters = %.0f, want ~111195", d)
	}

	if got := DistanceMeters(domain.Coordinate{Lat: 32.8, Lng: 34.9}, domain.Coordinate{Lat: 32.8, Lng: 34.9}); got != 0 {
		t.Fatalf("DistanceMeters(same point) = %f, want 0", got)
	}
}

func TestRankShelters(t *testing.T) {
	self := domain.Coordinate{Lat: 0, Lng: 0}
	shelters := []domain.Shelter{
		located("far", 0.02, 0, true, true),
		located("closed", 0.001, 0, false, true),
		{ID: "nowhere", Available: true},
		located("near-b", 0, 0.005, true, false),
		located("near-a", 0, -0.005, true, true),
	}

	all := RankShelters(self, shelters, false)
	want := []string{"closed", "near-a", "near-b", "far"}
	if len(all) != len(want) {
		t.Fatalf("RankShelters len = %d, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].Shelter.ID != id {
			t.Errorf("rank %d = %q, want %q", i, all[i].Shelter.ID, id)
		}
	}

	open := RankShelters(self, shelters, true)
	if len(open) != 3 || open[0].Shelter.ID != "near-a" {
		t.Fatalf("available ranking = %+v", open)
	}

	n, ok := NearestAvailable(self, shelters)
	if !ok || n.Shelter.ID != "near-a" {
		t.Fatalf("NearestAvailable = %q, %v; want near-a", n.Shelter.ID, ok)
	}
	if n.DistanceMeters < 500 || n.DistanceMeters > 600 {
		t.Errorf("DistanceMeters = %.0f, want ~556", n.DistanceMeters)
	}
}

func TestNearestAvailableNone(t *testing.T) {
	_, ok := NearestAvailable(domain.Coordinate{}, []domain.Shelter{located("x", 1, 1, false, true)})
	if ok {
		t.Fatal("NearestAvailable found a shelter among closed ones")
	}
}
