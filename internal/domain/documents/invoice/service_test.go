package invoice

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
	"billcraft/internal/domain/documents/quotation"
	"billcraft/internal/domain/totals"
)

type fakeRepo struct {
	docs  map[id.ID]*Invoice
	items map[id.ID][]Item

	createErrs []error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*Invoice),
		items: make(map[id.ID][]Item),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Invoice) error {
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", number)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Invoice) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("invoice", doc.ID.String())
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, docID id.ID) error {
	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("invoice", docID.String())
	}
	delete(r.docs, docID)
	delete(r.items, docID)
	return nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) GetItems(ctx context.Context, docID id.ID) ([]Item, error) {
	return r.items[docID], nil
}

func (r *fakeRepo) SaveItems(ctx context.Context, docID id.ID, items []Item) error {
	r.items[docID] = append([]Item(nil), items...)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Invoice], error) {
	result := domain.ListResult[*Invoice]{Limit: filter.Limit, Offset: filter.Offset}
	for _, doc := range r.docs {
		result.Items = append(result.Items, doc)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

// passthroughTx runs the function without transactional bookkeeping; the
// quotation package tests cover rollback behavior.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

func newTestService(t *testing.T) (*Service, *fakeRepo, *numerator.MockGenerator, id.ID) {
	t.Helper()
	repo := newFakeRepo()
	clientID := id.New()
	clients := &fakeClients{known: map[id.ID]*client.Client{
		clientID: {ID: clientID, Name: "Acme GmbH"},
	}}
	gen := &numerator.MockGenerator{}
	svc := NewService(repo, clients, gen, passthroughTx{})
	return svc, repo, gen, clientID
}

func draftInvoice(clientID id.ID) *Invoice {
	inv := New(clientID)
	inv.TaxRate = decimal.NewFromInt(16)
	inv.AddItem("Consulting", decimal.NewFromInt(10), types.MustMoney("120"))
	return inv
}

func approvedQuotation(clientID id.ID) *quotation.Quotation {
	q := quotation.New(clientID)
	q.Number = "QUO-2026-0042"
	q.Status = status.QuotationApproved
	q.TaxRate = decimal.NewFromInt(16)
	q.AddItem("Sofa", "pcs", decimal.NewFromInt(2), types.MustMoney("15000"))
	q.Items[0].LineID = id.New()
	return q
}

func TestCreate_ComputesTotals(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftInvoice(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	assert.NotEmpty(t, doc.Number)
	assert.Equal(t, "1200.00", types.FormatAmount(doc.Subtotal))
	assert.Equal(t, "192.00", types.FormatAmount(doc.TaxAmount))
	assert.Equal(t, "1392.00", types.FormatAmount(doc.Total))
	assert.Equal(t, status.InvoiceDraft, doc.Status)
}

func TestCreateFromQuotation_CopiesDocument(t *testing.T) {
	svc, repo, _, clientID := newTestService(t)
	ctx := context.Background()

	q := approvedQuotation(clientID)
	inv, err := svc.CreateFromQuotation(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, q.ClientID, inv.ClientID)
	require.NotNil(t, inv.QuotationID)
	assert.Equal(t, q.ID, *inv.QuotationID)
	assert.Equal(t, status.InvoiceDraft, inv.Status)
	assert.NotEqual(t, q.Number, inv.Number)

	require.NotNil(t, inv.DueDate)
	assert.Equal(t, inv.IssueDate.Add(30*24*time.Hour), *inv.DueDate)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Sofa", inv.Items[0].Description)
	// Fresh line identity, not the quotation's
	assert.NotEqual(t, q.Items[0].LineID, inv.Items[0].LineID)

	// Same money as the source quotation
	assert.Equal(t, "30000.00", types.FormatAmount(inv.Subtotal))
	assert.Equal(t, "34800.00", types.FormatAmount(inv.Total))
	assert.Len(t, repo.docs, 1)
}

func TestCreateFromQuotation_RequiresApproval(t *testing.T) {
	svc, repo, _, clientID := newTestService(t)

	q := approvedQuotation(clientID)
	q.Status = status.QuotationSent

	_, err := svc.CreateFromQuotation(context.Background(), q)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Empty(t, repo.docs)
}

func TestSetStatus_PaidStampsPaidDate(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftInvoice(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	updated, err := svc.SetStatus(ctx, doc.ID, status.InvoiceSent)
	require.NoError(t, err)
	assert.Nil(t, updated.PaidDate)

	updated, err = svc.SetStatus(ctx, doc.ID, status.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, status.InvoicePaid, updated.Status)
	require.NotNil(t, updated.PaidDate)
	assert.WithinDuration(t, time.Now(), *updated.PaidDate, time.Minute)
}

func TestSetStatus_PaidIsTerminal(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftInvoice(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))
	_, err := svc.SetStatus(ctx, doc.ID, status.InvoiceSent)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, doc.ID, status.InvoicePaid)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, doc.ID, status.InvoiceSent)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestSetStatus_CancelFromDraftOrSentOnly(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftInvoice(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	updated, err := svc.SetStatus(ctx, doc.ID, status.InvoiceCancelled)
	require.NoError(t, err)
	assert.Equal(t, status.InvoiceCancelled, updated.Status)

	_, err = svc.SetStatus(ctx, doc.ID, status.InvoicePaid)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestNumberRetryExhausted(t *testing.T) {
	svc, repo, gen, clientID := newTestService(t)
	collision := apperror.NewDuplicate("invoice", "number", "INV-2026-0001")
	repo.createErrs = []error{collision, collision, collision}

	err := svc.Create(context.Background(), draftInvoice(clientID), totals.NoDiscount())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNumberAllocation, appErr.Code)
	assert.Equal(t, 3, gen.Calls)
}

func TestDetachQuotation(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	q := approvedQuotation(clientID)
	inv, err := svc.CreateFromQuotation(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, inv.QuotationID)

	detached, err := svc.DetachQuotation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.QuotationID)

	// Totals and items are untouched by the detach.
	assert.Equal(t, types.FormatAmount(inv.Total), types.FormatAmount(detached.Total))
}

func TestUpdateHeader_Partial(t *testing.T) {
	svc, _, _, clientID := newTestService(t)
	ctx := context.Background()

	doc := draftInvoice(clientID)
	require.NoError(t, svc.Create(ctx, doc, totals.NoDiscount()))

	due := time.Now().UTC().AddDate(0, 0, 14)
	updated, err := svc.UpdateHeader(ctx, doc.ID, HeaderPatch{DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, doc.Number, updated.Number)
	assert.Equal(t, doc.Notes, updated.Notes)
}
