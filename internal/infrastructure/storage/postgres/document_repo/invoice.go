package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"billcraft/internal/core/id"
	"billcraft/internal/domain"
	"billcraft/internal/domain/documents/invoice"
	"billcraft/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "doc_invoices"
	invoiceItemsTable = "doc_invoice_items"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// Compile-time interface check.
var _ invoice.Repository = (*InvoiceRepo)(nil)

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			invoicesTable,
			"invoice",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

// GetItems retrieves the item rows of an invoice in line order.
func (r *InvoiceRepo) GetItems(ctx context.Context, docID id.ID) ([]invoice.Item, error) {
	q := r.Builder().
		Select("line_id", "line_no", "description", "quantity", "unit_price", "total").
		From(invoiceItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []invoice.Item
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// SaveItems replaces the item rows of an invoice (delete existing + insert new).
func (r *InvoiceRepo) SaveItems(ctx context.Context, docID id.ID, items []invoice.Item) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + invoiceItemsTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(invoiceItemsTable).
		Columns("line_id", "document_id", "line_no", "description", "quantity", "unit_price", "total")

	for _, it := range items {
		q = q.Values(it.LineID, docID, it.LineNo, it.Description, it.Quantity, it.UnitPrice, it.Total)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert items: %w", err), "invoice item")
	}

	return nil
}

// invoiceRow carries the joined client name next to the document columns.
type invoiceRow struct {
	invoice.Invoice
	JoinedClientName string `db:"client_name"`
}

// List retrieves invoices with filtering, joined with the client catalog
// for display names.
func (r *InvoiceRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.Builder().
		Select(prefixColumns("i", r.selectCols)...).
		Column("c.name AS client_name").
		From(invoicesTable + " i").
		Join("cat_clients c ON c.id = i.client_id")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"i.status": string(*filter.Status)})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"i.issue_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"i.issue_date": *filter.DateTo})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"i.number": pattern},
			squirrel.ILike{"c.name": pattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy("i." + orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []*invoiceRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	result.Items = make([]*invoice.Invoice, len(rows))
	for i, row := range rows {
		doc := row.Invoice
		doc.ClientName = row.JoinedClientName
		result.Items[i] = &doc
	}

	return result, nil
}
