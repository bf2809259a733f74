// Package domain contains the core entities of an email count run: the
// provider payload, the per-domain result record and the end-of-run summary.
// These types are free of infrastructure concerns so they can be shared by
// the provider client, the batch processor and every output sink.
package domain
