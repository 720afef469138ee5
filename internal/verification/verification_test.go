package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

type memStore struct {
	entries map[string]domain.Entry
	saves   int
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]domain.Entry{}}
}

func (m *memStore) Save(_ context.Context, e domain.Entry) error {
	m.saves++
	m.entries[e.Slug] = e
	return nil
}

func (m *memStore) Get(_ context.Context, slug string) (domain.Entry, error) {
	e, ok := m.entries[slug]
	if !ok {
		return domain.Entry{}, ports.ErrNotFound
	}
	return e, nil
}

func (m *memStore) List(_ context.Context) ([]domain.Entry, error) {
	out := make([]domain.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

type recordingNotifier struct {
	sent []domain.ReviewNotification
	err  error
}

func (r *recordingNotifier) NotifyReview(_ context.Context, n domain.ReviewNotification) error {
	r.sent = append(r.sent, n)
	return r.err
}

func TestDecideMatrix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		verdict    domain.Verdict
		hasContext bool
		want       domain.EntryStatus
	}{
		{"all conditions met", domain.Verdict{ConfidenceScore: 0.9, RiskLevel: domain.RiskLow}, true, domain.EntryVerified},
		{"at threshold", domain.Verdict{ConfidenceScore: 0.85, RiskLevel: domain.RiskMedium}, true, domain.EntryVerified},
		{"low confidence", domain.Verdict{ConfidenceScore: 0.84, RiskLevel: domain.RiskLow}, true, domain.EntryPending},
		{"high risk", domain.Verdict{ConfidenceScore: 0.99, RiskLevel: domain.RiskHigh}, true, domain.EntryPending},
		{"empty context overrides confidence", domain.Verdict{ConfidenceScore: 0.9, RiskLevel: domain.RiskLow}, false, domain.EntryPending},
	}

	for _, tc := range cases {
		d := Decide(tc.verdict, tc.hasContext)
		if d.Status != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, d.Status)
		}
		if tc.want == domain.EntryPending && !d.NeedsHumanReview {
			t.Fatalf("%s: pending decision must set NeedsHumanReview", tc.name)
		}
	}
}

func TestApproveFlipsPendingEntry(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.entries["cbd"] = domain.Entry{Slug: "cbd", Status: domain.EntryPending, NeedsHumanReview: true}
	s := NewService(store, nil, nil)

	if err := s.Approve(context.Background(), "cbd"); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	got := store.entries["cbd"]
	if got.Status != domain.EntryVerified || got.NeedsHumanReview {
		t.Fatalf("expected verified entry without review flag, got %+v", got)
	}
}

func TestApproveIdempotentOnVerified(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.entries["cbd"] = domain.Entry{Slug: "cbd", Status: domain.EntryVerified}
	s := NewService(store, nil, nil)

	if err := s.Approve(context.Background(), "cbd"); err != nil {
		t.Fatalf("Approve on verified entry must succeed: %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("approving a verified entry must not rewrite it, saves=%d", store.saves)
	}
}

func TestApproveMissingEntry(t *testing.T) {
	t.Parallel()

	s := NewService(newMemStore(), nil, nil)
	if err := s.Approve(context.Background(), "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotifyPendingPayload(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewService(newMemStore(), notifier, nil)

	s.NotifyPending(context.Background(), domain.Entry{
		Name:             "CBD",
		Slug:             "cbd",
		Category:         "קנבינואידים",
		ConfidenceScore:  0.6,
		RiskLevel:        domain.RiskHigh,
		UnverifiedClaims: []string{"טענה לא מאומתת"},
		Sources:          []domain.Source{{Title: "כתבה", URL: "https://m.example/1"}},
	})

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.Slug != "cbd" || n.RiskLevel != domain.RiskHigh || len(n.SourceTitles) != 1 {
		t.Fatalf("unexpected payload: %+v", n)
	}
}

func TestNotifyPendingSwallowsDeliveryFailure(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{err: errors.New("telegram down")}
	s := NewService(newMemStore(), notifier, nil)

	// Must not panic or propagate.
	s.NotifyPending(context.Background(), domain.Entry{Slug: "cbd"})
}

func TestPublishedLookupsHidePending(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.entries["pending"] = domain.Entry{Slug: "pending", Status: domain.EntryPending}
	store.entries["live"] = domain.Entry{Slug: "live", Status: domain.EntryVerified}
	s := NewService(store, nil, nil)

	if _, err := s.GetPublished(context.Background(), "pending"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("pending entry must look not-found, got %v", err)
	}
	if _, err := s.GetPublished(context.Background(), "live"); err != nil {
		t.Fatalf("verified entry must resolve: %v", err)
	}

	published, err := s.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished error: %v", err)
	}
	if len(published) != 1 || published[0].Slug != "live" {
		t.Fatalf("expected only the verified entry, got %v", published)
	}

	all, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("privileged listing must include pending entries, got %d", len(all))
	}
}
