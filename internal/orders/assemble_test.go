package orders

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/hampers"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/recipients"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func catalog(t *testing.T, hs ...hampers.Hamper) *hampers.Catalog {
	t.Helper()
	c, err := hampers.NewCatalog(hs...)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func row(name, hamperID string, qty int) recipients.Item {
	return recipients.Item{
		CustomerName:      name,
		CustomerContactNo: "91234567",
		HamperID:          hamperID,
		Quantity:          qty,
		CustomerAddress:   "1 Orchard Road",
		PostalCode:        "238801",
	}
}

func TestAssemble_SingleRecipient(t *testing.T) {
	c := catalog(t, hampers.Hamper{ID: "h1", HamperName: "Classic", Price: dec("20.00")})

	sos, err := Assemble([]recipients.Item{row("Alice", "h1", 2)}, c)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(sos) != 1 {
		t.Fatalf("expected 1 sales order, got %d", len(sos))
	}
	so := sos[0]
	if !so.Amount.Equal(dec("40.00")) {
		t.Fatalf("expected amount 40.00, got %s", so.Amount)
	}
	if len(so.SalesOrderItems) != 1 {
		t.Fatalf("expected one item, got %d", len(so.SalesOrderItems))
	}
	it := so.SalesOrderItems[0]
	if it.ProductName != "Classic" || it.Quantity != 2 || !it.UnitPrice.Equal(dec("20")) {
		t.Fatalf("unexpected item: %+v", it)
	}
	if so.CustomerName != "Alice" || so.PostalCode != "238801" {
		t.Fatalf("recipient details not copied: %+v", so)
	}
}

func TestAssemble_PreservesOrderAndLength(t *testing.T) {
	c := catalog(t,
		hampers.Hamper{ID: "a", HamperName: "A", Price: dec("1.10")},
		hampers.Hamper{ID: "b", HamperName: "B", Price: dec("2.20")},
	)
	rows := []recipients.Item{row("r0", "b", 1), row("r1", "a", 3), row("r2", "b", 2), row("r3", "a", 1)}

	sos, err := Assemble(rows, c)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(sos) != len(rows) {
		t.Fatalf("length mismatch: %d != %d", len(sos), len(rows))
	}
	for i := range rows {
		if sos[i].CustomerName != rows[i].CustomerName {
			t.Fatalf("row %d out of order: %s", i, sos[i].CustomerName)
		}
	}
}

func TestAssemble_EmptyInput(t *testing.T) {
	sos, err := Assemble(nil, &hampers.Catalog{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(sos) != 0 {
		t.Fatalf("expected no sales orders, got %d", len(sos))
	}
}

func TestAssemble_IsIdempotent(t *testing.T) {
	c := catalog(t, hampers.Hamper{ID: "h1", HamperName: "Classic", Price: dec("19.99")})
	rows := []recipients.Item{row("Alice", "h1", 3), row("Bob", "h1", 1)}

	first, err := Assemble(rows, c)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := Assemble(rows, c)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("assemble is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAssemble_RemovedHamperFailsWholeAssembly(t *testing.T) {
	c := catalog(t,
		hampers.Hamper{ID: "h1", HamperName: "Classic", Price: dec("20")},
		hampers.Hamper{ID: "h2", HamperName: "Deluxe", Price: dec("30")},
	)
	rows := []recipients.Item{row("Alice", "h1", 1), row("Bob", "h2", 1)}
	c.Remove("h2")

	sos, err := Assemble(rows, c)
	var unknown *UnknownHamperReferenceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownHamperReferenceError, got %v", err)
	}
	if unknown.HamperID != "h2" || unknown.Row != 1 {
		t.Fatalf("unexpected error detail: %+v", unknown)
	}
	if sos != nil {
		t.Fatalf("no partial result expected, got %+v", sos)
	}
}

func TestAssemble_NilCatalogReportsUnknownHamper(t *testing.T) {
	sos, err := Assemble([]recipients.Item{row("Alice", "h1", 1)}, nil)
	var unknown *UnknownHamperReferenceError
	if !errors.As(err, &unknown) || unknown.HamperID != "h1" || unknown.Row != 0 {
		t.Fatalf("expected UnknownHamperReferenceError for h1, got %v", err)
	}
	if sos != nil {
		t.Fatalf("no result expected, got %+v", sos)
	}
	if msgs := RenderMessages("For {customerName}: {hamperName}", []recipients.Item{row("Alice", "h1", 1)}, nil); len(msgs) != 1 || msgs[0] != "For Alice: " {
		t.Fatalf("unexpected messages %q", msgs)
	}
}

func TestAssemble_RejectsNonPositiveQuantity(t *testing.T) {
	c := catalog(t, hampers.Hamper{ID: "h1", HamperName: "Classic", Price: dec("20")})
	_, err := Assemble([]recipients.Item{row("Alice", "h1", 0)}, c)
	var iq *InvalidQuantityError
	if !errors.As(err, &iq) {
		t.Fatalf("expected InvalidQuantityError, got %v", err)
	}
}

func TestAssemble_DecimalPrecision(t *testing.T) {
	// 0.1 and 0.2 are not exact in binary floating point.
	c := catalog(t,
		hampers.Hamper{ID: "a", HamperName: "A", Price: dec("0.10")},
		hampers.Hamper{ID: "b", HamperName: "B", Price: dec("0.20")},
	)
	sos, err := Assemble([]recipients.Item{row("x", "a", 3), row("y", "b", 3)}, c)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	bo, err := Build(Payee{PaymentMode: PaymentCash}, sos)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if bo.Amount.String() != "0.9" {
		t.Fatalf("expected exact 0.9, got %s", bo.Amount)
	}
}

func TestRenderMessages(t *testing.T) {
	c := catalog(t, hampers.Hamper{ID: "h1", HamperName: "Classic", Price: dec("20")})
	rows := []recipients.Item{row("Alice", "h1", 2), row("Bob", "gone", 1)}

	msgs := RenderMessages("Dear {customerName}, enjoy {quantity}x {hamperName}!", rows, c)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0] != "Dear Alice, enjoy 2x Classic!" {
		t.Fatalf("unexpected message: %q", msgs[0])
	}
	if msgs[1] != "Dear Bob, enjoy 1x !" {
		t.Fatalf("unexpected message for missing hamper: %q", msgs[1])
	}
	if RenderMessages("   ", rows, c) != nil {
		t.Fatal("blank template renders nothing")
	}
}
