package service

import (
	"context"

	"reviewprivacy/internal/reviews/models"
)

// Decision is a policy's answer for one review.
type Decision struct {
	allow   bool
	message string
}

// Allow lets the anonymization proceed.
func Allow() Decision {
	return Decision{allow: true}
}

// Deny keeps the review as is. The erasure result carries the default
// "could not be anonymized" message for it.
func Deny() Decision {
	return Decision{}
}

// DenyWithMessage keeps the review and reports msg to the host instead of the
// default message. An empty msg behaves like Deny.
func DenyWithMessage(msg string) Decision {
	return Decision{message: msg}
}

func (d Decision) Allowed() bool {
	return d.allow
}

func (d Decision) Message() string {
	return d.message
}

// Policy decides whether a review may be anonymized. It sees the review and
// the fields that would be written.
type Policy interface {
	ShouldAnonymize(ctx context.Context, review models.Review, candidate models.AnonymizedFields) Decision
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, review models.Review, candidate models.AnonymizedFields) Decision

func (f PolicyFunc) ShouldAnonymize(ctx context.Context, review models.Review, candidate models.AnonymizedFields) Decision {
	return f(ctx, review, candidate)
}

// AllowAll is the default policy.
func AllowAll() Policy {
	return PolicyFunc(func(context.Context, models.Review, models.AnonymizedFields) Decision {
		return Allow()
	})
}
