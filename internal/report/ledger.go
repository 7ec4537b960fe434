package report

import (
	"bytes"
	"fmt"

	"go-packet-inventory/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	SheetTransactions = "Transactions"
	SheetExpenses     = "Expenses"
	SheetProducts     = "Products"
	SheetSummary      = "Summary"

	timeLayout = "2006-01-02 15:04"
)

// Ledger is everything one owner's export contains.
type Ledger struct {
	Products     []model.Product
	Transactions []model.Transaction
	Expenses     []model.Expense
	Summary      *model.FinancialSummary
}

// BuildLedgerWorkbook renders the ledger as an xlsx document.
func BuildLedgerWorkbook(l Ledger) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetExpenses, SheetProducts, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(l.Products))
	for _, p := range l.Products {
		names[p.ID.String()] = p.Name
	}

	txRows := make([][]interface{}, 0, len(l.Transactions))
	for _, t := range l.Transactions {
		product := names[t.ProductID.String()]
		if product == "" && t.Product != nil {
			product = t.Product.Name
		}
		txRows = append(txRows, []interface{}{
			t.CreatedAt.Format(timeLayout),
			product,
			string(t.Type),
			int(t.PacketSizeGrams),
			t.CountPackets,
			t.QuantityGrams,
			t.UnitPrice.InexactFloat64(),
			t.TotalPrice.InexactFloat64(),
			deref(t.CustomerName),
			derefMethod(t.PaymentMethod),
			string(t.PaymentStatus),
			deref(t.Note),
		})
	}
	if err := writeTable(f, SheetTransactions, header,
		[]interface{}{"Date", "Product", "Type", "Packet (g)", "Packets", "Quantity (g)", "Unit price", "Total", "Customer", "Payment", "Status", "Notes"},
		txRows); err != nil {
		return nil, err
	}

	expRows := make([][]interface{}, 0, len(l.Expenses))
	for _, e := range l.Expenses {
		expRows = append(expRows, []interface{}{
			e.CreatedAt.Format(timeLayout), e.Category, e.Amount.InexactFloat64(), deref(e.Note),
		})
	}
	if err := writeTable(f, SheetExpenses, header,
		[]interface{}{"Date", "Category", "Amount", "Note"}, expRows); err != nil {
		return nil, err
	}

	prodRows := make([][]interface{}, 0, len(l.Products))
	for _, p := range l.Products {
		prodRows = append(prodRows, []interface{}{
			p.Name, int(p.DefaultPacketSize), p.StockPackets250, p.StockPackets500, p.TotalGrams(),
		})
	}
	if err := writeTable(f, SheetProducts, header,
		[]interface{}{"Name", "Default packet (g)", "250g packets", "500g packets", "Total (g)"}, prodRows); err != nil {
		return nil, err
	}

	if l.Summary != nil {
		if err := writeSummary(f, header, l.Summary); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, header int, s *model.FinancialSummary) error {
	totals := [][]interface{}{
		{"Revenue", s.Revenue.InexactFloat64()},
		{"Pending receivables", s.PendingReceivables.InexactFloat64()},
		{"Cost", s.Cost.InexactFloat64()},
		{"Expenses", s.Expenses.InexactFloat64()},
		{"Profit", s.Profit.InexactFloat64()},
	}
	if err := writeTable(f, SheetSummary, header, []interface{}{"Metric", "Amount"}, totals); err != nil {
		return err
	}

	start := len(totals) + 3
	rows := make([][]interface{}, 0, len(s.Products))
	for _, p := range s.Products {
		rows = append(rows, []interface{}{
			p.ProductName,
			p.Revenue.InexactFloat64(),
			p.PendingReceivables.InexactFloat64(),
			p.Cost.InexactFloat64(),
			p.Profit.InexactFloat64(),
		})
	}
	return writeTableAt(f, SheetSummary, header, start,
		[]interface{}{"Product", "Revenue", "Pending", "Cost", "Profit"}, rows)
}

func writeTable(f *excelize.File, sheet string, header int, columns []interface{}, rows [][]interface{}) error {
	return writeTableAt(f, sheet, header, 1, columns, rows)
}

func writeTableAt(f *excelize.File, sheet string, header, startRow int, columns []interface{}, rows [][]interface{}) error {
	first := fmt.Sprintf("A%d", startRow)
	if err := f.SetSheetRow(sheet, first, &columns); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), startRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, first, last, header); err != nil {
		return err
	}
	for i := range rows {
		cell := fmt.Sprintf("A%d", startRow+1+i)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefMethod(m *model.PaymentMethod) string {
	if m == nil {
		return ""
	}
	return string(*m)
}
