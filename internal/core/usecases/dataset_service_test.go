package usecases_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/oskargil/crashatlas/internal/core/domain"
	"github.com/oskargil/crashatlas/internal/core/usecases"
)

// --- Mock DatasetSource ---

type mockSource struct {
	fetchFn func(ctx context.Context) ([]domain.CrashRecord, error)
}

func (m *mockSource) FetchRecords(ctx context.Context) ([]domain.CrashRecord, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	reloaded []int
}

func (m *mockPublisher) PublishDatasetReloaded(ctx context.Context, recordCount int) error {
	m.reloaded = append(m.reloaded, recordCount)
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }

func testRecords() []domain.CrashRecord {
	return []domain.CrashRecord{
		{Location: "Tenerife", Year: 1977, Type: "Commercial", Fatalities: 583, Country: "Spain", Latitude: 28.48, Longitude: -16.34},
		{Location: "Gimli", Year: 1983, Type: "Commercial", Fatalities: 0, Country: "Canada", Latitude: 50.62, Longitude: -97.04},
		{Location: "Test Range", Year: 2003, Type: "Military", Fatalities: 7, Country: "United States"},
	}
}

// --- Tests ---

func TestDatasetService_Load(t *testing.T) {
	svc := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			return testRecords(), nil
		},
	}, nil)

	if svc.Loaded() {
		t.Error("service should not report loaded before Load")
	}
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Loaded() {
		t.Error("service should report loaded after Load")
	}
	if len(svc.Records()) != 3 {
		t.Errorf("expected 3 records, got %d", len(svc.Records()))
	}
}

func TestDatasetService_LoadFailure(t *testing.T) {
	svc := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			return nil, errors.New("connection refused")
		},
	}, nil)

	if err := svc.Load(context.Background()); err == nil {
		t.Fatal("expected error from failed load")
	}
	if svc.Loaded() {
		t.Error("failed load must leave the dataset uninitialized")
	}
}

func TestDatasetService_ReloadKeepsOldSnapshotOnFailure(t *testing.T) {
	calls := 0
	svc := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("upstream down")
			}
			return testRecords(), nil
		},
	}, nil)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	gen := svc.Generation()

	if _, err := svc.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	if svc.Generation() != gen {
		t.Error("failed reload must not swap the snapshot")
	}
	if len(svc.Records()) != 3 {
		t.Errorf("previous records lost, got %d", len(svc.Records()))
	}
}

func TestDatasetService_ReloadPublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			return testRecords(), nil
		},
	}, pub)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	gen := svc.Generation()

	n, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 records reloaded, got %d", n)
	}
	if svc.Generation() == gen {
		t.Error("reload should install a new generation")
	}
	if !reflect.DeepEqual(pub.reloaded, []int{3}) {
		t.Errorf("expected one reload event with count 3, got %v", pub.reloaded)
	}
}

func TestDatasetService_ResetReproducesInitialTotals(t *testing.T) {
	svc := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			return testRecords(), nil
		},
	}, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	initial := domain.Summarize(svc.Records())

	// Filter down, then reset back to defaults: totals must match the load.
	narrow := domain.NewFilterCriteria()
	narrow.MinFatalities = 100
	if got := len(svc.Filtered(narrow)); got != 1 {
		t.Fatalf("expected 1 record above 100 fatalities, got %d", got)
	}

	reset := domain.Summarize(svc.Filtered(domain.NewFilterCriteria()))
	if !reflect.DeepEqual(initial, reset) {
		t.Errorf("reset totals diverged: %+v vs %+v", initial, reset)
	}
}

func TestDatasetService_Types(t *testing.T) {
	svc := usecases.NewDatasetService(&mockSource{
		fetchFn: func(ctx context.Context) ([]domain.CrashRecord, error) {
			return testRecords(), nil
		},
	}, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	types := svc.Types()
	want := []string{"All", "Commercial", "Military"}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("expected %v, got %v", want, types)
	}
}
