// Package pdf renders hydrated documents into paginated PDF byte streams.
// Output is deterministic: identical input produces identical bytes.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"billcraft/internal/core/types"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageLeft        = 15.0
	pageRight       = 195.0
	pageBottom      = 270.0
	lineHeight      = 7.0
	tableRowHeight  = 8.0
	dateLayout      = "2006-01-02"
	pdfCreationYear = 2000
)

// Party is one side of the address block.
type Party struct {
	Name    string
	Company string
	Address string
	Email   string
	Phone   string
}

// Line is one row of the item table.
type Line struct {
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   types.Money
	Total       types.Money
}

// Document is the renderer's neutral view of a hydrated document.
// Totals are displayed as persisted, never re-derived from the lines.
type Document struct {
	Kind       string
	Number     string
	Status     string
	IssueDate  time.Time
	ExtraDates []DateField

	Client Party
	Items  []Line

	// ShowUnit includes the unit column (quotations carry unit labels,
	// invoices do not)
	ShowUnit bool

	Subtotal       types.Money
	TaxRate        types.Money
	TaxAmount      types.Money
	DiscountAmount types.Money
	Total          types.Money

	Notes string
}

// DateField is a labelled date in the title block (valid until, due, paid).
type DateField struct {
	Label string
	Date  time.Time
}

// Config holds the static issuer identity printed on every document.
type Config struct {
	IssuerName    string
	IssuerAddress string
	IssuerEmail   string
	IssuerPhone   string

	CurrencySymbol string
	FooterText     string
}

// DefaultConfig returns a usable issuer block for development.
func DefaultConfig() Config {
	return Config{
		IssuerName:     "BillCraft",
		CurrencySymbol: "$",
		FooterText:     "Thank you for your business.",
	}
}

// Renderer produces PDF documents with a fixed layout.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a renderer with the given issuer configuration.
func NewRenderer(cfg Config) *Renderer {
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = "$"
	}
	return &Renderer{cfg: cfg}
}

// Render writes the document as a PDF to w.
func (r *Renderer) Render(doc Document, w io.Writer) error {
	p := gofpdf.New("P", "mm", "A4", "")
	// Fixed metadata date keeps output byte-identical across runs
	p.SetCreationDate(time.Date(pdfCreationYear, 1, 1, 0, 0, 0, 0, time.UTC))
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	y := r.titleBlock(p, doc)
	y = r.addressBlock(p, doc, y)
	y = r.itemTable(p, doc, y)
	y = r.totalsBlock(p, doc, y)
	y = r.notesBlock(p, doc, y)
	r.footer(p)

	if err := p.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func (r *Renderer) titleBlock(p *gofpdf.Fpdf, doc Document) float64 {
	p.SetFont("Helvetica", "B", 20)
	p.SetXY(pageLeft, 15)
	p.CellFormat(0, 10, doc.Kind, "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 11)
	p.SetX(pageLeft)
	p.CellFormat(0, lineHeight, "No. "+doc.Number, "", 1, "L", false, 0, "")
	p.SetX(pageLeft)
	p.CellFormat(0, lineHeight, "Issued: "+doc.IssueDate.Format(dateLayout), "", 1, "L", false, 0, "")
	for _, d := range doc.ExtraDates {
		p.SetX(pageLeft)
		p.CellFormat(0, lineHeight, d.Label+": "+d.Date.Format(dateLayout), "", 1, "L", false, 0, "")
	}
	p.SetX(pageLeft)
	p.CellFormat(0, lineHeight, "Status: "+doc.Status, "", 1, "L", false, 0, "")

	return p.GetY() + 5
}

func (r *Renderer) addressBlock(p *gofpdf.Fpdf, doc Document, y float64) float64 {
	issuer := []string{r.cfg.IssuerName, r.cfg.IssuerAddress, r.cfg.IssuerEmail, r.cfg.IssuerPhone}
	clientLines := []string{doc.Client.Name, doc.Client.Company, doc.Client.Address, doc.Client.Email, doc.Client.Phone}

	p.SetFont("Helvetica", "B", 10)
	p.SetXY(pageLeft, y)
	p.CellFormat(90, lineHeight, "From", "", 0, "L", false, 0, "")
	p.SetXY(110, y)
	p.CellFormat(85, lineHeight, "Bill To", "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 10)
	left := y + lineHeight
	right := y + lineHeight
	for _, line := range issuer {
		if line == "" {
			continue
		}
		p.SetXY(pageLeft, left)
		p.CellFormat(90, 5.5, line, "", 0, "L", false, 0, "")
		left += 5.5
	}
	for _, line := range clientLines {
		if line == "" {
			continue
		}
		p.SetXY(110, right)
		p.CellFormat(85, 5.5, line, "", 0, "L", false, 0, "")
		right += 5.5
	}

	if left > right {
		return left + 8
	}
	return right + 8
}

// columnWidths returns the item table layout. The description column absorbs
// the unit column when units are not shown.
func (r *Renderer) columnWidths(showUnit bool) (desc, unit, qty, price, total float64) {
	qty, price, total = 20, 30, 30
	if showUnit {
		unit = 20
	}
	desc = (pageRight - pageLeft) - unit - qty - price - total
	return
}

func (r *Renderer) itemTable(p *gofpdf.Fpdf, doc Document, y float64) float64 {
	desc, unit, qty, price, total := r.columnWidths(doc.ShowUnit)

	// Header row. Not repeated on page overflow.
	p.SetFont("Helvetica", "B", 10)
	p.SetXY(pageLeft, y)
	p.SetFillColor(230, 230, 230)
	p.CellFormat(desc, tableRowHeight, "Description", "1", 0, "L", true, 0, "")
	if doc.ShowUnit {
		p.CellFormat(unit, tableRowHeight, "Unit", "1", 0, "L", true, 0, "")
	}
	p.CellFormat(qty, tableRowHeight, "Qty", "1", 0, "R", true, 0, "")
	p.CellFormat(price, tableRowHeight, "Unit Price", "1", 0, "R", true, 0, "")
	p.CellFormat(total, tableRowHeight, "Total", "1", 1, "R", true, 0, "")
	y += tableRowHeight

	p.SetFont("Helvetica", "", 10)
	for _, item := range doc.Items {
		if y+tableRowHeight > pageBottom {
			p.AddPage()
			y = 15
		}
		p.SetXY(pageLeft, y)
		p.CellFormat(desc, tableRowHeight, item.Description, "1", 0, "L", false, 0, "")
		if doc.ShowUnit {
			p.CellFormat(unit, tableRowHeight, item.Unit, "1", 0, "L", false, 0, "")
		}
		p.CellFormat(qty, tableRowHeight, item.Quantity.String(), "1", 0, "R", false, 0, "")
		p.CellFormat(price, tableRowHeight, r.money(item.UnitPrice), "1", 0, "R", false, 0, "")
		p.CellFormat(total, tableRowHeight, r.money(item.Total), "1", 1, "R", false, 0, "")
		y += tableRowHeight
	}

	return y + 5
}

func (r *Renderer) totalsBlock(p *gofpdf.Fpdf, doc Document, y float64) float64 {
	const labelW, valueW = 40, 30
	x := pageRight - labelW - valueW

	row := func(label, value string, bold bool) {
		if y+lineHeight > pageBottom {
			p.AddPage()
			y = 15
		}
		style := ""
		if bold {
			style = "B"
		}
		p.SetFont("Helvetica", style, 10)
		p.SetXY(x, y)
		p.CellFormat(labelW, lineHeight, label, "", 0, "R", false, 0, "")
		p.CellFormat(valueW, lineHeight, value, "", 1, "R", false, 0, "")
		y += lineHeight
	}

	row("Subtotal", r.money(doc.Subtotal), false)
	row(fmt.Sprintf("Tax (%s%%)", doc.TaxRate.String()), r.money(doc.TaxAmount), false)
	if doc.DiscountAmount.IsPositive() {
		row("Discount", "-"+r.money(doc.DiscountAmount), false)
	}
	row("Total", r.money(doc.Total), true)

	return y + 5
}

func (r *Renderer) notesBlock(p *gofpdf.Fpdf, doc Document, y float64) float64 {
	if doc.Notes == "" {
		return y
	}
	if y+lineHeight*2 > pageBottom {
		p.AddPage()
		y = 15
	}
	p.SetFont("Helvetica", "B", 10)
	p.SetXY(pageLeft, y)
	p.CellFormat(0, lineHeight, "Notes", "", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 10)
	p.SetX(pageLeft)
	p.MultiCell(pageRight-pageLeft, 5.5, doc.Notes, "", "L", false)
	return p.GetY() + 5
}

func (r *Renderer) footer(p *gofpdf.Fpdf) {
	if r.cfg.FooterText == "" {
		return
	}
	p.SetFont("Helvetica", "I", 9)
	p.SetXY(pageLeft, pageBottom+5)
	p.CellFormat(pageRight-pageLeft, lineHeight, r.cfg.FooterText, "", 0, "C", false, 0, "")
}

func (r *Renderer) money(m types.Money) string {
	return r.cfg.CurrencySymbol + types.FormatAmount(m)
}
