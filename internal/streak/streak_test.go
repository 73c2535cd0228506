package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t.Add(9 * time.Hour)
}

func TestDateKeys(t *testing.T) {
	now := day("2026-03-01")
	assert.Equal(t, "2026-03-01", DateKey(now))
	assert.Equal(t, "2026-02-28", Yesterday(now))
}

func TestBump(t *testing.T) {
	tests := []struct {
		name        string
		data        Data
		now         string
		wantCurrent int
		wantLongest int
		wantBumped  bool
	}{
		{"first ever", Data{}, "2026-10-19", 1, 1, true},
		{"continues from yesterday", Data{Current: 4, Longest: 4, LastCompletedDate: "2026-10-18"}, "2026-10-19", 5, 5, true},
		{"gap restarts run", Data{Current: 4, Longest: 9, LastCompletedDate: "2026-10-10"}, "2026-10-19", 1, 9, true},
		{"already counted today", Data{Current: 2, Longest: 3, LastCompletedDate: "2026-10-19"}, "2026-10-19", 2, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bumped := tt.data.Bump(day(tt.now))
			assert.Equal(t, tt.wantBumped, bumped)
			assert.Equal(t, tt.wantCurrent, got.Current)
			assert.Equal(t, tt.wantLongest, got.Longest)
			assert.Equal(t, tt.now, got.LastCompletedDate)
		})
	}
}

func TestRefresh(t *testing.T) {
	now := day("2026-10-19")

	fresh := Data{Current: 3, Longest: 5, LastCompletedDate: "2026-10-18"}
	assert.Equal(t, fresh, fresh.Refresh(now))

	today := Data{Current: 3, Longest: 5, LastCompletedDate: "2026-10-19"}
	assert.Equal(t, today, today.Refresh(now))

	stale := Data{Current: 3, Longest: 5, LastCompletedDate: "2026-10-16"}
	got := stale.Refresh(now)
	assert.Equal(t, 0, got.Current)
	assert.Equal(t, 5, got.Longest)
	assert.Equal(t, "2026-10-16", got.LastCompletedDate)
}
