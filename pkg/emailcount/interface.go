// Package emailcount defines the provider contract used to look up how many
// email addresses a provider knows for a domain.
package emailcount

import (
	"context"
	"emailcount/pkg/domain"
)

// Result is the outcome of a successful lookup.
type Result struct {
	Data domain.Payload // Data is the provider's data object; nil when the response carried none.
}

// Empty reports whether the lookup returned no data worth recording.
func (r Result) Empty() bool { return len(r.Data) == 0 }

// Counter is the abstraction for email count providers.
//
//go:generate mockgen -package mockemailcount -source=interface.go -destination=mock/mockemailcount.go *
type Counter interface {
	// CountEmails returns the provider's email count data for domainName.
	CountEmails(ctx context.Context, domainName string) (Result, error)
}
