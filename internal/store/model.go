package store

import "time"

// Collection names, matching the change events pushed to subscribers.
const (
	CollectionNotices   = "notices"
	CollectionPoojas    = "poojas"
	CollectionCommittee = "committee"
	CollectionGallery   = "gallery"
)

// Change operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Notice is an announcement shown on the public site while Active.
type Notice struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Active    bool      `json:"active"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Pooja is one scheduled ritual.
type Pooja struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title"`
	Date                    string    `json:"date"` // YYYY-MM-DD
	Time                    string    `json:"time"` // HH:MM
	Sponsor                 string    `json:"sponsor"`
	Sponsor2                string    `json:"sponsor2,omitempty"`
	SponsorCurrentAddress   string    `json:"sponsorCurrentAddress,omitempty"`
	SponsorPermanentAddress string    `json:"sponsorPermanentAddress,omitempty"`
	Description             string    `json:"description,omitempty"`
	AnnadhanamDetails       string    `json:"annadhanamDetails,omitempty"`
	TamilMonthDate          string    `json:"tamilMonthDate"` // "<month> <day>" or empty
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt,omitempty"`
}

// CommitteeMember is one entry of the temple committee roster.
type CommitteeMember struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MediaItem is a gallery photo or video. FullPath is set only for files
// uploaded to media storage; linked media has only a URL.
type MediaItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	FullPath  string    `json:"fullPath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Change describes one mutation of a collection.
type Change struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
}

// Publisher receives a Change after every committed mutation.
type Publisher interface {
	Publish(Change)
}

// Publishers fans a Change out to each publisher in order.
type Publishers []Publisher

// Publish implements Publisher.
func (ps Publishers) Publish(c Change) {
	for _, p := range ps {
		if p != nil {
			p.Publish(c)
		}
	}
}
