package domain

type Photo struct {
	ID      string  `json:"id"`
	VenueID VenueID `json:"venueId"`
	URL     string  `json:"url"`
}

// Image is the result of a capture step.
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

func (i Image) Empty() bool {
	return len(i.Data) == 0
}
