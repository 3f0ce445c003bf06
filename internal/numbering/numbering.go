// Package numbering assigns human-readable sequential document numbers of
// the form {PREFIX}-{YYYYMM}-{SEQ}, where PREFIX depends on the document
// type, YYYYMM on the creation month, and SEQ is a zero-padded 3-digit
// counter scoped to (prefix, yearMonth).
package numbering

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"invois/internal/domain"
)

// Lookup supplies the storage queries number generation needs. MaxWithPrefix
// returns the highest existing document number starting with prefix, or
// domain.ErrNotFound when there is none.
type Lookup interface {
	MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	NumberInUse(ctx context.Context, number string, excludeID uuid.UUID) (bool, error)
}

// Prefix maps a document type to its numbering prefix.
func Prefix(t domain.DocumentType) string {
	if t == domain.DocumentTypeQuote {
		return "QUO"
	}
	return "INV"
}

// Generator produces document numbers against a storage-backed Lookup.
// Sequences are re-queried per call rather than reserved, so concurrent
// creations in the same scope can race; the record manager defends with a
// unique constraint and a single retry.
type Generator struct {
	lookup Lookup
	now    func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(lookup Lookup) *Generator {
	return &Generator{lookup: lookup, now: time.Now}
}

// Next returns the next sequential number for (docType, at). Number
// generation never fails the caller: if the lookup errors or an existing
// number is malformed, Next degrades to a timestamp-derived fallback so that
// document creation stays available.
func (g *Generator) Next(ctx context.Context, docType domain.DocumentType, at time.Time) string {
	return g.nextInScope(ctx, Prefix(docType), at.Format("200601"))
}

func (g *Generator) nextInScope(ctx context.Context, typePrefix, yearMonth string) string {
	scope := typePrefix + "-" + yearMonth

	seq := 1
	max, err := g.lookup.MaxNumberWithPrefix(ctx, scope+"-")
	switch {
	case err == nil:
		last, perr := trailingSequence(max)
		if perr != nil {
			log.Printf("numbering.Next: malformed existing number %q, using timestamp fallback: %v", max, perr)
			return g.fallback(typePrefix)
		}
		seq = last + 1
	case err == domain.ErrNotFound:
		// first number in this scope
	default:
		log.Printf("numbering.Next: lookup failed for %s, using timestamp fallback: %v", scope, err)
		return g.fallback(typePrefix)
	}

	return fmt.Sprintf("%s-%03d", scope, seq)
}

// fallback sacrifices strict sequencing for availability: the last 6 digits
// of the current timestamp stand in for the month-scoped sequence.
func (g *Generator) fallback(typePrefix string) string {
	return fmt.Sprintf("%s-%06d", typePrefix, g.now().UnixMilli()%1000000)
}

// Renumber re-derives a number when a document switches type, preserving the
// original yearMonth and sequence slot under the new prefix. If that slot is
// already held by another document, or the current number cannot be parsed,
// it falls back to a freshly sequenced number in the same scope.
func (g *Generator) Renumber(ctx context.Context, current string, newType domain.DocumentType, excludeID uuid.UUID) string {
	newPrefix := Prefix(newType)

	yearMonth, seq, err := splitNumber(current)
	if err != nil {
		log.Printf("numbering.Renumber: cannot parse %q, generating fresh number: %v", current, err)
		return g.Next(ctx, newType, g.now())
	}

	candidate := fmt.Sprintf("%s-%s-%03d", newPrefix, yearMonth, seq)
	inUse, err := g.lookup.NumberInUse(ctx, candidate, excludeID)
	if err != nil {
		log.Printf("numbering.Renumber: conflict check failed for %s, generating fresh number: %v", candidate, err)
		return g.nextInScope(ctx, newPrefix, yearMonth)
	}
	if inUse {
		return g.nextInScope(ctx, newPrefix, yearMonth)
	}
	return candidate
}

// trailingSequence parses the segment after the final dash as an integer.
func trailingSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("no sequence segment in %q", number)
	}
	return strconv.Atoi(number[idx+1:])
}

// splitNumber breaks {PREFIX}-{YYYYMM}-{SEQ} into its yearMonth and sequence.
func splitNumber(number string) (yearMonth string, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("expected 3 segments in %q", number)
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("bad sequence in %q: %w", number, err)
	}
	return parts[1], seq, nil
}
