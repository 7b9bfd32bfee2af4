// Package httputil provides HTTP utilities for fetching remote resources.
//
// # Overview
//
// This package provides the infrastructure used when a photo-trace backdrop
// is referenced by URL rather than supplied as bytes:
//
//   - [Fetcher]: cached HTTP GET with size limits
//   - [Retry]: automatic retry with exponential backoff
//
// # Fetching
//
// [Fetcher] wraps an http.Client with a byte cache so repeated loads of the
// same backdrop image do not refetch it:
//
//	fetcher := httputil.NewFetcher(nil, fileCache, keyer)
//	data, contentType, err := fetcher.Fetch(ctx, "https://example.com/plan.png")
//
// MIME validation of the fetched bytes is the caller's responsibility; the
// fetcher only reports the Content-Type header it saw.
//
// # Retry
//
// [Retry] executes a function with automatic retry for transient failures.
// Only errors wrapped with [RetryableError] are retried:
//
//   - Network errors
//   - 5xx server errors
//
// It uses exponential backoff (doubling delays) between attempts.
package httputil
