package models

import (
	"math"
	"reflect"
	"testing"
)

func TestApplyRatingFirstRating(t *testing.T) {
	d := &Doctor{}
	d.ApplyRating(4)

	if d.TotalRatings != 1 {
		t.Errorf("TotalRatings = %d, want 1", d.TotalRatings)
	}
	if d.Rating != 4 {
		t.Errorf("Rating = %v, want 4", d.Rating)
	}
}

func TestApplyRatingRunningMean(t *testing.T) {
	d := &Doctor{}
	stars := []int{5, 3, 4, 1, 5, 2}

	sum := 0
	for _, s := range stars {
		d.ApplyRating(s)
		sum += s
	}

	if d.TotalRatings != len(stars) {
		t.Fatalf("TotalRatings = %d, want %d", d.TotalRatings, len(stars))
	}
	want := float64(sum) / float64(len(stars))
	if math.Abs(d.Rating-want) > 1e-9 {
		t.Errorf("Rating = %v, want %v", d.Rating, want)
	}
}

func TestApplyRatingBounds(t *testing.T) {
	d := &Doctor{}
	for i := 0; i < 50; i++ {
		d.ApplyRating(1)
		d.ApplyRating(5)
	}
	if d.Rating < 1 || d.Rating > 5 {
		t.Errorf("Rating = %v, outside [1, 5]", d.Rating)
	}
}

func TestAvailableDaysList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"monday,tuesday,friday", []string{"monday", "tuesday", "friday"}},
		{" monday , tuesday ", []string{"monday", "tuesday"}},
		{"monday,,friday", []string{"monday", "friday"}},
		{"", nil},
	}
	for _, tc := range cases {
		d := &Doctor{AvailableDays: tc.in}
		if got := d.AvailableDaysList(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("AvailableDaysList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestUserSetAndCheckPassword(t *testing.T) {
	u := &User{}
	if err := u.SetPassword("s3cret-passw0rd"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.Password == "s3cret-passw0rd" {
		t.Fatal("password stored in plaintext")
	}
	if !u.CheckPassword("s3cret-passw0rd") {
		t.Error("CheckPassword rejected the correct password")
	}
	if u.CheckPassword("wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}
}
