package reconciliation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/domain/reconciliation"
)

func testTenantContext() identity.TenantContext {
	return identity.TenantContext{
		TenantID:   uuid.New(),
		SchemaName: "tenant_a1b2c3d4",
	}
}

// memAlertRepo is an in-memory AlertRepository for service tests
type memAlertRepo struct {
	alerts map[uuid.UUID]*reconciliation.Alert

	created        []*reconciliation.Alert
	staleRunID     uuid.UUID
	staleNote      string
	staleResolved  int64
	resolveCalled  bool
	createBatchErr error
	saveErr        error
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{alerts: make(map[uuid.UUID]*reconciliation.Alert)}
}

func (m *memAlertRepo) FindByID(_ context.Context, id uuid.UUID) (*reconciliation.Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, errors.New("alert not found")
	}
	return a, nil
}

func (m *memAlertRepo) FindAll(context.Context, reconciliation.AlertFilter) ([]reconciliation.Alert, error) {
	out := make([]reconciliation.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memAlertRepo) Count(context.Context, reconciliation.AlertFilter) (int64, error) {
	return int64(len(m.alerts)), nil
}

func (m *memAlertRepo) CreateBatch(_ context.Context, alerts []*reconciliation.Alert) error {
	if m.createBatchErr != nil {
		return m.createBatchErr
	}
	m.created = append(m.created, alerts...)
	for _, a := range alerts {
		m.alerts[a.ID] = a
	}
	return nil
}

func (m *memAlertRepo) Save(_ context.Context, alert *reconciliation.Alert) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.alerts[alert.ID] = alert
	return nil
}

func (m *memAlertRepo) ResolveStaleOpen(_ context.Context, currentRunID uuid.UUID, _ time.Time, note string) (int64, error) {
	m.resolveCalled = true
	m.staleRunID = currentRunID
	m.staleNote = note
	return m.staleResolved, nil
}

func (m *memAlertRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(m.alerts, id)
	return nil
}

type fakeWorkspace struct {
	repo   *memAlertRepo
	reader reconciliation.Reader
}

func (w *fakeWorkspace) Alerts() reconciliation.AlertRepository { return w.repo }
func (w *fakeWorkspace) Reader() reconciliation.Reader         { return w.reader }

// fakeRunner hands the same workspace to every fn, without any database
type fakeRunner struct {
	ws       *fakeWorkspace
	beginErr error
	txCalls  int
}

func (r *fakeRunner) View(ctx context.Context, _ identity.TenantContext, fn func(context.Context, Workspace) error) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	return fn(ctx, r.ws)
}

func (r *fakeRunner) RunInTransaction(ctx context.Context, _ identity.TenantContext, fn func(context.Context, Workspace) error) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	r.txCalls++
	return fn(ctx, r.ws)
}

type fakeLock struct {
	released bool
}

func (l *fakeLock) Release(context.Context) error {
	l.released = true
	return nil
}

type fakeLocker struct {
	acquireErr error
	lastKey    string
	lock       *fakeLock
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (RunLock, error) {
	l.lastKey = key
	if l.acquireErr != nil {
		return nil, l.acquireErr
	}
	l.lock = &fakeLock{}
	return l.lock, nil
}

// scriptedReader returns fixed rows for the batch check and nothing else
type scriptedReader struct {
	batchLots []reconciliation.BatchLotWeight
	err       error
}

func (r *scriptedReader) BatchLotWeights(context.Context) ([]reconciliation.BatchLotWeight, error) {
	return r.batchLots, r.err
}
func (r *scriptedReader) GrowerIntakePayments(context.Context) ([]reconciliation.PartyIntakePayment, error) {
	return nil, nil
}
func (r *scriptedReader) HarvestTeamIntakePayments(context.Context) ([]reconciliation.PartyIntakePayment, error) {
	return nil, nil
}
func (r *scriptedReader) ExportContainerWeights(context.Context) ([]reconciliation.ExportContainerWeight, error) {
	return nil, nil
}
func (r *scriptedReader) ExportInvoiceValues(context.Context) ([]reconciliation.ExportInvoiceValue, error) {
	return nil, nil
}
func (r *scriptedReader) ContainerPalletCounts(context.Context) ([]reconciliation.ContainerPalletCount, error) {
	return nil, nil
}
func (r *scriptedReader) LabourCostRecords(context.Context) ([]reconciliation.LabourCostRecord, error) {
	return nil, nil
}
func (r *scriptedReader) UnpaidGrowers(context.Context) ([]reconciliation.UnpaidGrower, error) {
	return nil, nil
}

// blockingReader stalls the first query until the context expires
type blockingReader struct {
	scriptedReader
}

func (r *blockingReader) BatchLotWeights(ctx context.Context) ([]reconciliation.BatchLotWeight, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newRunFixture(reader reconciliation.Reader) (*RunService, *fakeRunner, *fakeLocker) {
	repo := newMemAlertRepo()
	runner := &fakeRunner{ws: &fakeWorkspace{repo: repo, reader: reader}}
	locker := &fakeLocker{}
	svc := NewRunService(runner, locker, reconciliation.DefaultPipeline(), 0, nil)
	return svc, runner, locker
}

func TestRunServiceRun(t *testing.T) {
	ctx := context.Background()
	mismatch := reconciliation.BatchLotWeight{
		BatchID:     uuid.New(),
		BatchNumber: "B-42",
		NetWeightKg: decimal.NewFromInt(1000),
		LotWeightKg: decimal.NewFromInt(700),
	}

	t.Run("persists candidates and reports a summary", func(t *testing.T) {
		svc, runner, locker := newRunFixture(&scriptedReader{batchLots: []reconciliation.BatchLotWeight{mismatch}})
		tc := testTenantContext()

		summary, err := svc.Run(ctx, tc)
		require.NoError(t, err)
		require.NotNil(t, summary)

		assert.Equal(t, 1, summary.TotalAlerts)
		assert.Equal(t, 1, summary.ByType[reconciliation.AlertTypeBatchLotWeight])
		assert.Equal(t, 1, summary.BySeverity[reconciliation.SeverityCritical])
		assert.NotEqual(t, uuid.Nil, summary.RunID)

		repo := runner.ws.repo
		require.Len(t, repo.created, 1)
		assert.Equal(t, summary.RunID, repo.created[0].RunID)

		assert.Equal(t, tc.SchemaName, locker.lastKey)
		assert.True(t, locker.lock.released)
	})

	t.Run("resolves stale alerts before inserting, inside the transaction", func(t *testing.T) {
		svc, runner, _ := newRunFixture(&scriptedReader{batchLots: []reconciliation.BatchLotWeight{mismatch}})
		runner.ws.repo.staleResolved = 3

		summary, err := svc.Run(ctx, testTenantContext())
		require.NoError(t, err)

		repo := runner.ws.repo
		assert.True(t, repo.resolveCalled)
		assert.Equal(t, summary.RunID, repo.staleRunID)
		assert.Equal(t, reconciliation.SystemResolutionNote, repo.staleNote)
		assert.Equal(t, 1, runner.txCalls)
	})

	t.Run("clean data yields an empty summary and no inserts", func(t *testing.T) {
		svc, runner, _ := newRunFixture(&scriptedReader{})

		summary, err := svc.Run(ctx, testTenantContext())
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalAlerts)
		assert.Empty(t, runner.ws.repo.created)
	})

	t.Run("failing check aborts the run without inserts", func(t *testing.T) {
		svc, runner, locker := newRunFixture(&scriptedReader{err: errors.New("column missing")})

		summary, err := svc.Run(ctx, testTenantContext())
		assert.Nil(t, summary)
		assert.ErrorIs(t, err, reconciliation.ErrCheckFailed)
		assert.Empty(t, runner.ws.repo.created)
		assert.True(t, locker.lock.released)
	})

	t.Run("persistence failure is classified", func(t *testing.T) {
		svc, runner, _ := newRunFixture(&scriptedReader{batchLots: []reconciliation.BatchLotWeight{mismatch}})
		runner.ws.repo.createBatchErr = errors.New("disk full")

		_, err := svc.Run(ctx, testTenantContext())
		assert.ErrorIs(t, err, reconciliation.ErrRunPersistence)
	})

	t.Run("deadline expiry maps to a persistence failure", func(t *testing.T) {
		repo := newMemAlertRepo()
		runner := &fakeRunner{ws: &fakeWorkspace{repo: repo, reader: &blockingReader{}}}
		svc := NewRunService(runner, &fakeLocker{}, reconciliation.DefaultPipeline(), 20*time.Millisecond, nil)

		summary, err := svc.Run(ctx, testTenantContext())
		assert.Nil(t, summary)
		assert.ErrorIs(t, err, reconciliation.ErrRunPersistence)
		assert.NotErrorIs(t, err, reconciliation.ErrCheckFailed)
		assert.Empty(t, repo.created)
	})

	t.Run("held lock surfaces as run in progress", func(t *testing.T) {
		svc, runner, locker := newRunFixture(&scriptedReader{})
		locker.acquireErr = reconciliation.ErrRunInProgress

		_, err := svc.Run(ctx, testTenantContext())
		assert.ErrorIs(t, err, reconciliation.ErrRunInProgress)
		assert.Equal(t, 0, runner.txCalls)
	})

	t.Run("invalid tenant context is rejected before locking", func(t *testing.T) {
		svc, _, locker := newRunFixture(&scriptedReader{})

		_, err := svc.Run(ctx, identity.TenantContext{})
		assert.Error(t, err)
		assert.Empty(t, locker.lastKey)
	})
}
