// Package pdf genera el comprobante de venta en PDF.
//
// Layout de la página A4:
//
//	┌───────────────────────────────────────────┐
//	│  HEADER: Nombre del comercio │ N° + Fecha │
//	│  CLIENTE / VENDEDOR / CANAL               │
//	│  TABLA: Cant | Producto | P.Unit | Total  │
//	│  TOTALES: Subtotal / Descuento / Total    │
//	│           Pagado / Saldo                  │
//	│  FOOTER: QR con el id de la venta         │
//	└───────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/application/sales"
)

var _ sales.ReceiptGenerator = (*ReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ReceiptGenerator implementa sales.ReceiptGenerator con Maroto v2.
type ReceiptGenerator struct {
	storeName string
	money     *message.Printer
}

// NewReceiptGenerator storeName encabeza el comprobante; los montos se formatean según lang.
func NewReceiptGenerator(storeName string, lang language.Tag) *ReceiptGenerator {
	return &ReceiptGenerator{storeName: storeName, money: message.NewPrinter(lang)}
}

func (g *ReceiptGenerator) GenerateReceipt(_ context.Context, sale *dto.SaleResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Comprobante de venta "+sale.ID, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.partiesRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(g.lineRows(sale)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(sale))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *ReceiptGenerator) headerRow(sale *dto.SaleResponse) core.Row {
	right := []core.Component{
		text.New("COMPROBANTE DE VENTA", props.Text{
			Style: fontstyle.Bold, Size: 7, Align: align.Right, Color: colorPrimary, Top: 1,
		}),
		text.New(shortID(sale.ID), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 5}),
		text.New("Fecha: "+sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
			Size: 7, Align: align.Right, Top: 11, Color: colorGray,
		}),
	}
	if sale.Status == "RETURNED" {
		right = append(right, text.New("DEVUELTA", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 15, Color: colorRed,
		}))
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
			text.New("Sucursal: "+sale.OutletID, props.Text{Size: 7, Top: 8, Color: colorGray}),
		),
		col.New(5).Add(right...),
	)
}

func (g *ReceiptGenerator) partiesRow(sale *dto.SaleResponse) core.Row {
	customer := "Consumidor final"
	contact := "-"
	if c := sale.Customer; c != nil && c.Name != "" {
		customer = c.Name
		contact = fmt.Sprintf("Tel: %s   |   Email: %s", nonEmpty(c.Phone, "-"), nonEmpty(c.Email, "-"))
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(customer, props.Text{Style: fontstyle.Bold, Size: 9, Top: 5}),
			text.New(contact, props.Text{Size: 7, Top: 10, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Vendedor: "+sale.SalesPersonID, props.Text{Size: 7, Align: align.Right, Top: 5, Color: colorGray}),
			text.New("Pago: "+sale.PaymentChannel, props.Text{Size: 7, Align: align.Right, Top: 10, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

func (g *ReceiptGenerator) lineRows(sale *dto.SaleResponse) []core.Row {
	rows := make([]core.Row, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		rows = append(rows, row.New(6).Add(
			col.New(1).Add(text.New(fmt.Sprint(l.Quantity), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(l.ProductName, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.amount(l.PriceAtSale), props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.amount(l.Subtotal), props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *ReceiptGenerator) totalsRow(sale *dto.SaleResponse) core.Row {
	subtotal := sale.TotalAmount.Add(sale.Discount)
	entries := []struct {
		label string
		value decimal.Decimal
		grand bool
	}{
		{"Subtotal:", subtotal, false},
		{"Descuento:", sale.Discount.Neg(), false},
		{"TOTAL:", sale.TotalAmount, true},
		{"Pagado:", sale.AmountPaid, false},
		{"Saldo:", sale.RemainingToPay, false},
	}

	labels := col.New(4)
	values := col.New(3)
	for i, e := range entries {
		p := props.Text{Size: 8, Align: align.Right, Top: float64(i * 5), Right: 1}
		if e.grand {
			p.Style = fontstyle.Bold
			p.Color = colorPrimary
		}
		lp := p
		lp.Style = fontstyle.Bold
		labels.Add(text.New(e.label, lp))
		values.Add(text.New(g.amount(e.value), p))
	}
	return row.New(27).Add(col.New(5), labels, values)
}

func footerRow(sale *dto.SaleResponse) core.Row {
	return row.New(32).Add(
		col.New(4).Add(code.NewQr(sale.ID, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Presente este código para devoluciones.", props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New(sale.ID, props.Text{Size: 6, Top: 10, Left: 3, Color: colorGray}),
		),
	)
}

// amount monto con dos decimales y separadores del idioma configurado.
func (g *ReceiptGenerator) amount(d decimal.Decimal) string {
	return "$" + g.money.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID primeros 8 caracteres del id, suficiente para lectura humana.
func shortID(id string) string {
	if len(id) > 8 {
		return "#" + id[:8]
	}
	return "#" + id
}
