package models

// HouseStatus mirrors the labels shown on the site; the whole user-facing
// surface is Polish, so the stored labels are too.
type HouseStatus string

const (
	StatusActive   HouseStatus = "Aktywny"
	StatusInactive HouseStatus = "Nieaktywny"
)

// Sentinel values for the available column when no concrete date applies.
const (
	AvailableNow     = "Już teraz"
	AvailableUnknown = "Nieznane"
)

// Layouts used by the site: house availability and the character page login line.
const (
	AvailableLayout = "02.01.2006 15:04"
	LoginLayout     = "02.01.2006 (15:04)"
)

// House is one row of the listing page enriched with derived availability.
// Name is the stable primary key from the source.
type House struct {
	Name      string      `json:"name" db:"name"`
	City      string      `json:"city" db:"city"`
	Size      string      `json:"size" db:"size"`
	Owner     string      `json:"owner" db:"owner"`
	Image     string      `json:"image" db:"image"`
	Days      int         `json:"days" db:"days"`
	Available string      `json:"available" db:"available"`
	Status    HouseStatus `json:"status" db:"status"`
}

// Listing is the raw scrape result before availability is derived.
type Listing struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Size  string `json:"size"`
	Owner string `json:"owner"`
	Image string `json:"image"`
}
