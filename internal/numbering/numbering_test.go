package numbering

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"invois/internal/domain"
)

type stubLookup struct {
	max      string
	maxErr   error
	inUse    bool
	inUseErr error

	gotPrefix string
	gotNumber string
}

func (s *stubLookup) MaxNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	s.gotPrefix = prefix
	return s.max, s.maxErr
}

func (s *stubLookup) NumberInUse(_ context.Context, number string, _ uuid.UUID) (bool, error) {
	s.gotNumber = number
	return s.inUse, s.inUseErr
}

func fixedNow() time.Time {
	return time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
}

func newTestGenerator(lookup Lookup) *Generator {
	g := NewGenerator(lookup)
	g.now = fixedNow
	return g
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "INV", Prefix(domain.DocumentTypeInvoice))
	assert.Equal(t, "QUO", Prefix(domain.DocumentTypeQuote))
}

func TestNext_FirstInScope(t *testing.T) {
	lookup := &stubLookup{maxErr: domain.ErrNotFound}
	g := newTestGenerator(lookup)

	got := g.Next(context.Background(), domain.DocumentTypeInvoice, fixedNow())

	assert.Equal(t, "INV-202501-001", got)
	assert.Equal(t, "INV-202501-", lookup.gotPrefix)
}

func TestNext_IncrementsHighestExisting(t *testing.T) {
	g := newTestGenerator(&stubLookup{max: "INV-202501-007"})

	got := g.Next(context.Background(), domain.DocumentTypeInvoice, fixedNow())

	assert.Equal(t, "INV-202501-008", got)
}

func TestNext_QuoteScope(t *testing.T) {
	g := newTestGenerator(&stubLookup{maxErr: domain.ErrNotFound})

	got := g.Next(context.Background(), domain.DocumentTypeQuote, fixedNow())

	assert.Equal(t, "QUO-202501-001", got)
}

func TestNext_SequenceOverflowsPadding(t *testing.T) {
	g := newTestGenerator(&stubLookup{max: "INV-202501-999"})

	got := g.Next(context.Background(), domain.DocumentTypeInvoice, fixedNow())

	assert.Equal(t, "INV-202501-1000", got)
}

func TestNext_LookupErrorFallsBackToTimestamp(t *testing.T) {
	g := newTestGenerator(&stubLookup{maxErr: errors.New("db down")})

	got := g.Next(context.Background(), domain.DocumentTypeInvoice, fixedNow())

	want := fmt.Sprintf("INV-%06d", fixedNow().UnixMilli()%1000000)
	assert.Equal(t, want, got)
}

func TestNext_MalformedExistingFallsBackToTimestamp(t *testing.T) {
	g := newTestGenerator(&stubLookup{max: "INV-202501-abc"})

	got := g.Next(context.Background(), domain.DocumentTypeInvoice, fixedNow())

	want := fmt.Sprintf("INV-%06d", fixedNow().UnixMilli()%1000000)
	assert.Equal(t, want, got)
}

func TestRenumber_KeepsSlotUnderNewPrefix(t *testing.T) {
	lookup := &stubLookup{inUse: false}
	g := newTestGenerator(lookup)

	got := g.Renumber(context.Background(), "INV-202501-003", domain.DocumentTypeQuote, uuid.New())

	assert.Equal(t, "QUO-202501-003", got)
	assert.Equal(t, "QUO-202501-003", lookup.gotNumber)
}

func TestRenumber_ConflictTakesNextInOriginalMonth(t *testing.T) {
	lookup := &stubLookup{inUse: true, max: "QUO-202501-005"}
	g := newTestGenerator(lookup)

	got := g.Renumber(context.Background(), "INV-202501-003", domain.DocumentTypeQuote, uuid.New())

	assert.Equal(t, "QUO-202501-006", got)
}

func TestRenumber_UnparseableCurrentGeneratesFresh(t *testing.T) {
	g := newTestGenerator(&stubLookup{maxErr: domain.ErrNotFound})

	got := g.Renumber(context.Background(), "garbage", domain.DocumentTypeInvoice, uuid.New())

	assert.Equal(t, "INV-202501-001", got)
}

func TestRenumber_ConflictCheckErrorResequences(t *testing.T) {
	lookup := &stubLookup{inUseErr: errors.New("db down"), max: "QUO-202501-002"}
	g := newTestGenerator(lookup)

	got := g.Renumber(context.Background(), "INV-202501-003", domain.DocumentTypeQuote, uuid.New())

	assert.Equal(t, "QUO-202501-003", got)
}
