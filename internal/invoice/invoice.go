// Package invoice turns print payloads into a printable HTML document.
package invoice

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/and161185/pawnshop/internal/model"
)

// Placeholder replaces any missing customer or product text.
const Placeholder = "មិនបានបញ្ចូល"

const (
	title     = "វិក្កយបត្រ"
	thankYou  = "អរគុណសម្រាប់ការទិញ!"
	keepNote  = "សូមរក្សាវិក្កយបត្រនេះសម្រាប់ការយោង។"
	dateStamp = "2006-01-02"
)

// Kind tells order invoices from pawn tickets.
type Kind string

const (
	KindOrder Kind = "order"
	KindPawn  Kind = "pawn"
)

// Customer is the header block, every field already defaulted.
type Customer struct {
	ID      string
	Name    string
	Phone   string
	Address string
}

// Line is one product row.
type Line struct {
	No        int
	Name      string
	Weight    string
	Amount    float64
	SellPrice float64
	LaborCost float64
	BuyPrice  float64
	Subtotal  float64
}

// Invoice is the print-ready document model.
type Invoice struct {
	Kind       Kind
	ID         int
	Title      string
	Label      string
	Date       string
	ExpireDate string
	Customer   Customer
	Lines      []Line

	Subtotal   float64
	LaborTotal float64
	GrandTotal float64
	Deposit    float64
	BalanceDue float64

	ThankYou string
	Note     string
}

// Transform computes an order invoice: subtotal is the sum of amount*sell price,
// labor is summed per line, and the balance is grand total minus deposit.
func Transform(p model.OrderPrint, now time.Time) Invoice {
	inv := header(KindOrder, p.ID, p.Date, p.Customer, now)
	inv.Label = "ការបញ្ជាទិញលេខ #" + strconv.Itoa(p.ID)
	for i, pr := range p.Products {
		l := Line{
			No:        i + 1,
			Name:      orPlaceholder(pr.Name),
			Weight:    orDash(pr.Weight),
			Amount:    pr.Amount,
			SellPrice: pr.SellPrice,
			LaborCost: pr.LaborCost,
			BuyPrice:  pr.BuyPrice,
			Subtotal:  pr.Amount * pr.SellPrice,
		}
		inv.Subtotal += l.Subtotal
		inv.LaborTotal += l.LaborCost
		inv.Lines = append(inv.Lines, l)
	}
	inv.total(p.Deposit)
	return inv
}

// TransformPawn computes a pawn ticket; pawns carry no labor cost.
func TransformPawn(p model.PawnPrint, now time.Time) Invoice {
	inv := header(KindPawn, p.ID, p.Date, p.Customer, now)
	inv.Label = "ការបញ្ចាំលេខ #" + strconv.Itoa(p.ID)
	inv.ExpireDate = orDash(p.ExpireDate)
	for i, pr := range p.Products {
		l := Line{
			No:        i + 1,
			Name:      orPlaceholder(pr.ProductName),
			Weight:    orDash(pr.Weight),
			Amount:    pr.Amount,
			SellPrice: pr.UnitPrice,
			Subtotal:  pr.Amount * pr.UnitPrice,
		}
		inv.Subtotal += l.Subtotal
		inv.Lines = append(inv.Lines, l)
	}
	inv.total(p.Deposit)
	return inv
}

func header(k Kind, id int, date string, c *model.PrintCustomer, now time.Time) Invoice {
	if date == "" {
		date = now.Format(dateStamp)
	}
	inv := Invoice{
		Kind:     k,
		ID:       id,
		Title:    title,
		Date:     date,
		ThankYou: thankYou,
		Note:     keepNote,
		Customer: Customer{ID: Placeholder, Name: Placeholder, Phone: Placeholder, Address: Placeholder},
	}
	if c != nil {
		inv.Customer.Name = orPlaceholder(c.Name)
		inv.Customer.Phone = orPlaceholder(c.PhoneNumber)
		inv.Customer.Address = orPlaceholder(c.Address)
		if c.ID != nil {
			inv.Customer.ID = strconv.Itoa(*c.ID)
		}
	}
	return inv
}

func (inv *Invoice) total(deposit float64) {
	inv.GrandTotal = inv.Subtotal + inv.LaborTotal
	inv.Deposit = deposit
	inv.BalanceDue = inv.GrandTotal - deposit
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var printer = message.NewPrinter(language.English)

// Money formats an amount with two decimals and thousand separators.
func Money(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Quantity formats a count without trailing zeros.
func Quantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
