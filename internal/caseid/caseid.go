// Package caseid mints the human-readable case identifiers shown to users.
//
// Two independent domains exist: pending submissions ("#P2000", "#P2001", ...)
// and canonical reports ("#1000", "#1001", ...). Uniqueness is ultimately
// guaranteed by the UNIQUE constraint on case_id; allocators only need to
// make collisions rare, and callers retry on conflict.
package caseid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Domain describes one identifier namespace
type Domain struct {
	Name     string
	Prefix   string
	Start    int64
	Width    int
	Sequence string
}

var (
	// Pending is the domain of submissions awaiting review
	Pending = Domain{Name: "pending", Prefix: "#P", Start: 2000, Width: 4, Sequence: "pending_case_seq"}
	// Canonical is the domain of reviewed reports
	Canonical = Domain{Name: "canonical", Prefix: "#", Start: 1000, Width: 4, Sequence: "fraud_case_seq"}
)

// Format renders n in the domain, zero padded to the domain width
func (d Domain) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", d.Prefix, d.Width, n)
}

// Parse extracts the numeric part of an identifier of this domain
func (d Domain) Parse(id string) (int64, error) {
	rest, ok := strings.CutPrefix(id, d.Prefix)
	if !ok || rest == "" {
		return 0, fmt.Errorf("case id %q is not in the %s domain", id, d.Name)
	}
	// "#P2000" must not parse as canonical "#P..."
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("case id %q is not in the %s domain", id, d.Name)
		}
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("case id %q: %w", id, err)
	}
	return n, nil
}

// Next returns the identifier following last, or the domain start when last
// is empty or unparsable.
func (d Domain) Next(last string) string {
	if last == "" {
		return d.Format(d.Start)
	}
	n, err := d.Parse(last)
	if err != nil || n < d.Start {
		return d.Format(d.Start)
	}
	return d.Format(n + 1)
}

// Allocator hands out candidate case identifiers
type Allocator interface {
	Next(ctx context.Context) (string, error)
}

// CounterAllocator allocates from an in-process counter
type CounterAllocator struct {
	domain Domain
	next   atomic.Int64
}

// NewCounterAllocator creates a counter starting at the domain start
func NewCounterAllocator(d Domain) *CounterAllocator {
	a := &CounterAllocator{domain: d}
	a.next.Store(d.Start)
	return a
}

// Next implements Allocator
func (a *CounterAllocator) Next(_ context.Context) (string, error) {
	return a.domain.Format(a.next.Add(1) - 1), nil
}

// LatestFunc returns the most recently issued identifier in a domain, or ""
// when none exists.
type LatestFunc func(ctx context.Context) (string, error)

// LatestAllocator reads the newest identifier and increments it. Two
// concurrent callers can receive the same value; the unique constraint and
// the caller's retry loop resolve that.
type LatestAllocator struct {
	domain Domain
	latest LatestFunc
}

// NewLatestAllocator creates an allocator over latest
func NewLatestAllocator(d Domain, latest LatestFunc) *LatestAllocator {
	return &LatestAllocator{domain: d, latest: latest}
}

// Next implements Allocator
func (a *LatestAllocator) Next(ctx context.Context) (string, error) {
	last, err := a.latest(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read latest %s case id: %w", a.domain.Name, err)
	}
	return a.domain.Next(last), nil
}
