package domain

// Marker is a point of interest owned by exactly one user. The JSON form is
// the one served by the API and written to snapshots; absent Name and Date
// encode as null.
type Marker struct {
	ID     int64   `json:"id"`
	UserID int64   `json:"user_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Name   *string `json:"name"`
	Date   *string `json:"date"`
}

// MarkerInput carries the client-writable fields of a Marker. Lat and Lng
// are pointers so a missing coordinate can be told apart from zero.
type MarkerInput struct {
	Lat  *float64
	Lng  *float64
	Name *string
	Date *string
}
