package services

import (
	"time"

	"cyleria_watcher/models"
)

// A house frees up this many days after its owner's last login.
const OccupancyDays = 14

// Availability is the derived state for one house.
type Availability struct {
	Days      int
	Available string
	Status    models.HouseStatus
}

// ComputeAvailability maps an owner's last login to derived fields. A nil
// lastLogin means the lookup failed or the house has no owner.
func ComputeAvailability(lastLogin *time.Time, now time.Time) Availability {
	if lastLogin == nil {
		return Availability{
			Days:      0,
			Available: models.AvailableUnknown,
			Status:    models.StatusInactive,
		}
	}

	daysPassed := int(now.Sub(*lastLogin).Hours() / 24)
	if daysPassed < OccupancyDays {
		freesUp := lastLogin.Add(OccupancyDays * 24 * time.Hour)
		return Availability{
			Days:      OccupancyDays - daysPassed,
			Available: freesUp.Format(models.AvailableLayout),
			Status:    models.StatusActive,
		}
	}

	return Availability{
		Days:      0,
		Available: models.AvailableNow,
		Status:    models.StatusInactive,
	}
}

// ParseAvailable turns the stored available string back into a timestamp.
// Text signalling immediate availability parses as now; the unknown sentinel
// and anything else malformed parses as not-ok.
func ParseAvailable(s string, now time.Time) (time.Time, bool) {
	txt := normalizeAvailable(s)
	if txt == "" {
		return time.Time{}, false
	}
	if hasNowMarker(txt) {
		return now, true
	}
	t, err := time.ParseInLocation(models.AvailableLayout, s, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
