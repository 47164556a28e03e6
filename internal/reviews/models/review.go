package models

import "time"

// Metadata keys stored out-of-line for a review.
const (
	MetaTitle  = "edd_review_title"
	MetaRating = "edd_rating"
)

// Review is a product review stored as a comment-like row. The author fields are
// personal data and are only ever rewritten by erasure.
type Review struct {
	ID          int64
	CreatedAt   time.Time
	AuthorEmail string
	AuthorName  string
	AuthorIP    string
	AuthorURL   string
	UserAgent   string
	// UserID is the site account that wrote the review; 0 means anonymous.
	UserID    int64
	Content   string
	ProductID int64
}

// AnonymizedFields is the replacement projection written over a review's
// personal data. Content is deliberately absent: erasure never touches it.
type AnonymizedFields struct {
	AuthorEmail string
	AuthorName  string
	AuthorIP    string
	AuthorURL   string
	UserAgent   string
	UserID      int64
}

// Matches reports whether the review already holds exactly these values.
func (f AnonymizedFields) Matches(r Review) bool {
	return r.AuthorEmail == f.AuthorEmail &&
		r.AuthorName == f.AuthorName &&
		r.AuthorIP == f.AuthorIP &&
		r.AuthorURL == f.AuthorURL &&
		r.UserAgent == f.UserAgent &&
		r.UserID == f.UserID
}

// Apply returns a copy of r with the anonymized fields written over it.
func (f AnonymizedFields) Apply(r Review) Review {
	r.AuthorEmail = f.AuthorEmail
	r.AuthorName = f.AuthorName
	r.AuthorIP = f.AuthorIP
	r.AuthorURL = f.AuthorURL
	r.UserAgent = f.UserAgent
	r.UserID = f.UserID
	return r
}
