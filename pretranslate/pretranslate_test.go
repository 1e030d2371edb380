package pretranslate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

func seedStore(t *testing.T, entries []*catalog.Entry) *catalog.Store {
	t.Helper()
	store := catalog.NewStore(t.TempDir(), nil)
	_, err := store.Update("de", true, func(c *catalog.Catalog) error {
		for _, e := range entries {
			c.Set(e)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	return store
}

func TestFiller_DraftsAreFuzzy(t *testing.T) {
	store := seedStore(t, []*catalog.Entry{
		{ID: "Save"},
		{ID: "Cancel"},
		{ID: "Delete", Translation: "Löschen"},
		{ID: "Old", Obsolete: true},
	})

	mock := NewMockProvider()
	mock.Translations = map[string]string{"Save": "Speichern", "Cancel": "Abbrechen"}

	f := NewFiller(store, mock)
	report, err := f.Run(context.Background(), "en", "de")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Filled != 2 {
		t.Fatalf("Filled = %d, want 2", report.Filled)
	}
	if report.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", report.Skipped)
	}

	cat, err := store.Load("de")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	save := cat.Get("Save")
	if save.Translation != "Speichern" || !save.Fuzzy {
		t.Fatalf("Save = %+v, want fuzzy draft", save)
	}
	if del := cat.Get("Delete"); del.Translation != "Löschen" || del.Fuzzy {
		t.Fatalf("existing translation modified: %+v", del)
	}
	if old := cat.Get("Old"); old.Translation != "" {
		t.Fatalf("obsolete entry translated: %+v", old)
	}
}

func TestFiller_BatchesRequests(t *testing.T) {
	var entries []*catalog.Entry
	for _, id := range []string{"One", "Two", "Three", "Four", "Five"} {
		entries = append(entries, &catalog.Entry{ID: id})
	}
	store := seedStore(t, entries)

	mock := NewMockProvider()
	f := NewFiller(store, mock, WithBatchSize(2))
	report, err := f.Run(context.Background(), "en", "de")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Batches != 3 || mock.CallCount != 3 {
		t.Fatalf("batches = %d, calls = %d, want 3/3", report.Batches, mock.CallCount)
	}
	if report.Filled != 5 {
		t.Fatalf("Filled = %d, want 5", report.Filled)
	}
}

func TestFiller_NonRetryableErrorStops(t *testing.T) {
	store := seedStore(t, []*catalog.Entry{{ID: "Save"}})

	mock := NewMockProvider()
	mock.Err = &ProviderError{Message: "invalid api key", Retryable: false}

	f := NewFiller(store, mock)
	if _, err := f.Run(context.Background(), "en", "de"); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount != 1 {
		t.Fatalf("calls = %d, want 1 (no retries)", mock.CallCount)
	}
}

func TestFiller_RetriesRetryableErrors(t *testing.T) {
	store := seedStore(t, []*catalog.Entry{{ID: "Save"}})

	calls := 0
	flaky := providerFunc(func(ctx context.Context, req Request) ([]string, error) {
		calls++
		if calls < 3 {
			return nil, &ProviderError{Message: "rate limited", Retryable: true}
		}
		return []string{"Speichern"}, nil
	})

	f := NewFiller(store, flaky, WithRetry(RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
	}))
	report, err := f.Run(context.Background(), "en", "de")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if report.Filled != 1 {
		t.Fatalf("Filled = %d, want 1", report.Filled)
	}
}

func TestFiller_MissingLocale(t *testing.T) {
	store := catalog.NewStore(t.TempDir(), nil)
	f := NewFiller(store, NewMockProvider())
	_, err := f.Run(context.Background(), "en", "de")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

type providerFunc func(ctx context.Context, req Request) ([]string, error)

func (f providerFunc) Translate(ctx context.Context, req Request) ([]string, error) {
	return f(ctx, req)
}
