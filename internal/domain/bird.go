package domain

import "time"

// BirdListEntry is a single saved species name owned by one user.
type BirdListEntry struct {
	ID          int64
	UserID      int64
	SpeciesName string
	CreatedAt   time.Time
}

// Sighting is one recent observation as reported by eBird.
type Sighting struct {
	SpeciesCode     string  `json:"speciesCode"`
	CommonName      string  `json:"comName"`
	ScientificName  string  `json:"sciName"`
	LocationID      string  `json:"locId"`
	LocationName    string  `json:"locName"`
	ObservedAt      string  `json:"obsDt"`
	HowMany         int     `json:"howMany"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	Valid           bool    `json:"obsValid"`
	Reviewed        bool    `json:"obsReviewed"`
	LocationPrivate bool    `json:"locationPrivate"`
	SubmissionID    string  `json:"subId"`
}

// SpeciesDetail groups the recent observations of one species in a region.
type SpeciesDetail struct {
	SpeciesCode    string
	CommonName     string
	ScientificName string
	Observations   []Sighting
}

// IsEmpty reports whether the lookup produced nothing to show.
func (d SpeciesDetail) IsEmpty() bool {
	return len(d.Observations) == 0
}
