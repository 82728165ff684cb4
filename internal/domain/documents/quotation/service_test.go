package quotation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billcraft/internal/core/apperror"
	"billcraft/internal/core/id"
	"billcraft/internal/core/numerator"
	"billcraft/internal/core/status"
	"billcraft/internal/core/types"
	"billcraft/internal/domain"
	"billcraft/internal/domain/catalogs/client"
	"billcraft/internal/domain/totals"
)

// --- Fakes ---

// fakeRepo stages writes until the fake tx manager commits them, so the
// all-or-nothing contract of Create is observable in tests.
type fakeRepo struct {
	docs  map[id.ID]*Quotation
	items map[id.ID][]Item

	stagedDocs  map[id.ID]*Quotation
	stagedItems map[id.ID][]Item

	createErrs []error // popped per Create call
	saveErr    error
	deleteErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:        make(map[id.ID]*Quotation),
		items:       make(map[id.ID][]Item),
		stagedDocs:  make(map[id.ID]*Quotation),
		stagedItems: make(map[id.ID][]Item),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Quotation) error {
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	cp := *doc
	r.stagedDocs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Quotation, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("quotation", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("quotation", number)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Quotation) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("quotation", doc.ID.String())
	}
	cp := *doc
	r.stagedDocs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, docID id.ID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("quotation", docID.String())
	}
	delete(r.docs, docID)
	delete(r.items, docID)
	return nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Quotation, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) GetItems(ctx context.Context, docID id.ID) ([]Item, error) {
	return r.items[docID], nil
}

func (r *fakeRepo) SaveItems(ctx context.Context, docID id.ID, items []Item) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stagedItems[docID] = append([]Item(nil), items...)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Quotation], error) {
	result := domain.ListResult[*Quotation]{Limit: filter.Limit, Offset: filter.Offset}
	for _, doc := range r.docs {
		result.Items = append(result.Items, doc)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeRepo) commit() {
	for k, v := range r.stagedDocs {
		r.docs[k] = v
	}
	for k, v := range r.stagedItems {
		r.items[k] = v
	}
	r.discard()
}

func (r *fakeRepo) discard() {
	r.stagedDocs = make(map[id.ID]*Quotation)
	r.stagedItems = make(map[id.ID][]Item)
}

// fakeTxManager applies or discards the repo's staged writes, mimicking
// commit/rollback.
type fakeTxManager struct {
	repo *fakeRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		m.repo.discard()
		return err
	}
	m.repo.commit()
	return nil
}

type fakeClients struct {
	known map[id.ID]*client.Client
}

func (c *fakeClients) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	cl, ok := c.known[clientID]
	if !ok {
		return nil, apperror.NewNotFound("client", clientID.String())
	}
	return cl, nil
}

func (c *fakeClients) Exists(ctx context.Context, clientID id.ID) (bool, error) {
	_, ok := c.known[clientID]
	return ok, nil
}

// --- Helpers ---

func newTestService(t *testing.T) (*Service, *fakeRepo, *numerator.MockGenerator, id.ID) {
	t.Helper()
	repo := newFakeRepo()
	clientID := id.New()
	clients := &fakeClients{known: map[id.ID]*client.Client{
		clientID: {ID: clientID, Name: "Acme GmbH"},
	}}
	gen := &numerator.MockGenerator{}
	svc := NewService(repo, clients, gen, &fakeTxManager{repo: repo})
	return svc, repo, gen, clientID
}

func draftQuotation(clientID id.ID) *Quotation {
	q := New(clientID)
	q.TaxRate = decimal.NewFromInt(16)
	q.AddItem("Sofa", "pcs", decimal.NewFromInt(2), types.MustMoney("15000"))
	return q
}

// --- Tests ---

func TestCreate_ComputesTotalsAndPersists(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	assert.NotEmpty(t, doc.Number)
	assert.Equal(t, "30000.00", types.FormatAmount(doc.Subtotal))
	assert.Equal(t, "4800.00", types.FormatAmount(doc.TaxAmount))
	assert.Equal(t, "34800.00", types.FormatAmount(doc.Total))
	assert.Equal(t, status.QuotationDraft, doc.Status)

	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Number, stored.Number)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "30000.00", types.FormatAmount(stored.Items[0].Total))
}

func TestCreate_UnknownClientRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	doc := draftQuotation(id.New())
	err := svc.Create(context.Background(), doc, totals.NoDiscount())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_EmptyItemsRejected(t *testing.T) {
	svc, repo, _, clientID := newTestService(t)

	doc := New(clientID)
	err := svc.Create(context.Background(), doc, totals.NoDiscount())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.docs)
}

func TestCreate_AllOrNothing(t *testing.T) {
	svc, repo, _, clientID := newTestService(t)
	repo.saveErr = apperror.NewInternal(assert.AnError)

	doc := draftQuotation(clientID)
	err := svc.Create(context.Background(), doc, totals.NoDiscount())
	require.Error(t, err)

	// Header insert succeeded inside the tx but the whole write rolled back.
	assert.Empty(t, repo.docs)
	assert.Empty(t, repo.items)
}

func TestCreate_NumberCollisionRetries(t *testing.T) {
	svc, repo, gen, clientID := newTestService(t)
	collision := apperror.NewDuplicate("quotation", "number", "QUO-2026-0001")
	repo.createErrs = []error{collision, collision, nil}

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(context.Background(), doc, totals.NoDiscount()))
	assert.Equal(t, 3, gen.Calls)
	assert.Len(t, repo.docs, 1)
}

func TestCreate_NumberCollisionExhausted(t *testing.T) {
	svc, repo, gen, clientID := newTestService(t)
	collision := apperror.NewDuplicate("quotation", "number", "QUO-2026-0001")
	repo.createErrs = []error{collision, collision, collision}

	doc := draftQuotation(clientID)
	err := svc.Create(context.Background(), doc, totals.NoDiscount())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNumberAllocation, appErr.Code)
	assert.Equal(t, 3, gen.Calls)
	assert.Empty(t, repo.docs)
}

func TestSetStatus_LegalTransition(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	updated, err := svc.SetStatus(ctx, doc.ID, status.QuotationSent)
	require.NoError(t, err)
	assert.Equal(t, status.QuotationSent, updated.Status)

	updated, err = svc.SetStatus(ctx, doc.ID, status.QuotationApproved)
	require.NoError(t, err)
	assert.Equal(t, status.QuotationApproved, updated.Status)
}

func TestSetStatus_IllegalTransitionRejected(t *testing.T) {
	svc, repo, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	_, err := svc.SetStatus(ctx, doc.ID, status.QuotationApproved)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// Nothing was written.
	assert.Equal(t, status.QuotationDraft, repo.docs[doc.ID].Status)
}

func TestReplaceItems_RecomputesTotals(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	replacement := []Item{
		{Description: "Chair", Unit: "pcs", Quantity: decimal.NewFromInt(4), UnitPrice: types.MustMoney("250")},
	}
	updated, err := svc.ReplaceItems(ctx, doc.ID, replacement, totals.NoDiscount())
	require.NoError(t, err)

	assert.Equal(t, "1000.00", types.FormatAmount(updated.Subtotal))
	assert.Equal(t, "160.00", types.FormatAmount(updated.TaxAmount))
	assert.Equal(t, "1160.00", types.FormatAmount(updated.Total))

	stored, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 1, stored.Items[0].LineNo)
	assert.Equal(t, "Chair", stored.Items[0].Description)
}

func TestReplaceItems_FrozenAfterSend(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))
	_, err := svc.SetStatus(ctx, doc.ID, status.QuotationSent)
	require.NoError(t, err)

	_, err = svc.ReplaceItems(ctx, doc.ID, doc.Items, totals.NoDiscount())
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestUpdateHeader_Partial(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	notes := "Delivery included"
	validUntil := time.Now().UTC().AddDate(0, 1, 0)
	updated, err := svc.UpdateHeader(ctx, doc.ID, HeaderPatch{Notes: &notes, ValidUntil: &validUntil})
	require.NoError(t, err)
	assert.Equal(t, "Delivery included", updated.Notes)
	require.NotNil(t, updated.ValidUntil)

	// Untouched fields survive
	assert.Equal(t, doc.Number, updated.Number)
}

func TestDelete_ConflictFromDependentInvoice(t *testing.T) {
	svc, repo, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftQuotation(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	repo.deleteErr = apperror.NewConflict("quotation is referenced by an invoice")
	err := svc.Delete(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// Reference cleared: delete succeeds and items go with the header.
	repo.deleteErr = nil
	require.NoError(t, svc.Delete(ctx, doc.ID))
	_, err = svc.GetByID(ctx, doc.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, repo.items[doc.ID])
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	err := svc.Delete(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}
