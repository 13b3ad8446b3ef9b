package domain

type VoteChoice string

const (
	Upvote   VoteChoice = "upvote"
	Downvote VoteChoice = "downvote"
)

func ParseVoteChoice(s string) (VoteChoice, error) {
	switch VoteChoice(s) {
	case Upvote, Downvote:
		return VoteChoice(s), nil
	}
	return "", ErrInvalidVoteChoice
}

type ActionKind string

const (
	ActionVote    ActionKind = "vote"
	ActionCheckIn ActionKind = "visit"
	ActionCover   ActionKind = "cover"
	ActionPhoto   ActionKind = "photo"
)

// ActionRecord is what this device has already done for one venue.
// Once set, HasVoted and HasCheckedIn are never cleared.
type ActionRecord struct {
	VenueID      VenueID    `json:"venueId"`
	HasVoted     bool       `json:"hasVoted"`
	VoteChoice   VoteChoice `json:"voteChoice,omitempty"`
	HasCheckedIn bool       `json:"hasCheckedIn"`
}

// VenueView is the screen model for one venue.
type VenueView struct {
	Venue          Venue        `json:"venue"`
	Record         ActionRecord `json:"record"`
	Photos         []Photo      `json:"photos"`
	PhotosErr      error        `json:"-"`
	CanVote        bool         `json:"canVote"`
	CanCheckIn     bool         `json:"canCheckIn"`
	CanUploadPhoto bool         `json:"canUploadPhoto"`
}

func NewVenueView(v Venue, rec ActionRecord, photos []Photo) VenueView {
	return VenueView{
		Venue:          v,
		Record:         rec,
		Photos:         photos,
		CanVote:        !rec.HasVoted,
		CanCheckIn:     !rec.HasCheckedIn,
		CanUploadPhoto: rec.HasVoted,
	}
}
