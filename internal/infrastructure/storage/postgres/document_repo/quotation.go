package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"billcraft/internal/core/id"
	"billcraft/internal/domain"
	"billcraft/internal/domain/documents/quotation"
	"billcraft/internal/infrastructure/storage/postgres"
)

const (
	quotationsTable     = "doc_quotations"
	quotationItemsTable = "doc_quotation_items"
)

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct {
	*BaseDocumentRepo[*quotation.Quotation]
}

// Compile-time interface check.
var _ quotation.Repository = (*QuotationRepo)(nil)

// NewQuotationRepo creates a new quotation repository.
func NewQuotationRepo(txManager *postgres.TxManager) *QuotationRepo {
	return &QuotationRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			quotationsTable,
			"quotation",
			postgres.ExtractDBColumns[quotation.Quotation](),
			func() *quotation.Quotation { return &quotation.Quotation{} },
		),
	}
}

// GetItems retrieves the item rows of a quotation in line order.
func (r *QuotationRepo) GetItems(ctx context.Context, docID id.ID) ([]quotation.Item, error) {
	q := r.Builder().
		Select("line_id", "line_no", "description", "unit", "quantity", "unit_price", "total").
		From(quotationItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []quotation.Item
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// SaveItems replaces the item rows of a quotation (delete existing + insert new).
func (r *QuotationRepo) SaveItems(ctx context.Context, docID id.ID, items []quotation.Item) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + quotationItemsTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(quotationItemsTable).
		Columns("line_id", "document_id", "line_no", "description", "unit", "quantity", "unit_price", "total")

	for _, it := range items {
		q = q.Values(it.LineID, docID, it.LineNo, it.Description, it.Unit, it.Quantity, it.UnitPrice, it.Total)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert items: %w", err), "quotation item")
	}

	return nil
}

// quotationRow carries the joined client name next to the document columns.
type quotationRow struct {
	quotation.Quotation
	JoinedClientName string `db:"client_name"`
}

// List retrieves quotations with filtering, joined with the client catalog
// for display names.
func (r *QuotationRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*quotation.Quotation], error) {
	result := domain.ListResult[*quotation.Quotation]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.Builder().
		Select(prefixColumns("q", r.selectCols)...).
		Column("c.name AS client_name").
		From(quotationsTable + " q").
		Join("cat_clients c ON c.id = q.client_id")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"q.status": string(*filter.Status)})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"q.issue_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"q.issue_date": *filter.DateTo})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"q.number": pattern},
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
	q = q.OrderBy("q." + orderBy)

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

	var rows []*quotationRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	result.Items = make([]*quotation.Quotation, len(rows))
	for i, row := range rows {
		doc := row.Quotation
		doc.ClientName = row.JoinedClientName
		result.Items[i] = &doc
	}

	return result, nil
}

// prefixColumns qualifies column names with a table alias.
func prefixColumns(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = alias + "." + col
	}
	return out
}
