package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/validation"
	"github.com/shopspring/decimal"
)

// itemKey matches item row fields such as items[3].product_name.
var itemKey = regexp.MustCompile(`^items\[(\d+)\]\.(id|product_name|quantity|price)$`)

// ItemForm is one item row as typed by the user.
type ItemForm struct {
	ID          string
	ProductName string
	Quantity    string
	Price       string
}

func (f ItemForm) blank() bool {
	return strings.TrimSpace(f.ID) == "" && strings.TrimSpace(f.ProductName) == "" &&
		strings.TrimSpace(f.Quantity) == "" && strings.TrimSpace(f.Price) == ""
}

// BillForm keeps the raw form values so they can be redisplayed unchanged.
type BillForm struct {
	ID           uint
	CustomerName string
	Total        string
	Items        []ItemForm
}

// parseBillForm reads customer_name, total and the items[N].* rows.
// Rows are ordered by N and fully blank rows are dropped.
func parseBillForm(r *http.Request) (BillForm, error) {
	if err := r.ParseForm(); err != nil {
		return BillForm{}, fmt.Errorf("parse form: %w", err)
	}
	form := BillForm{
		CustomerName: strings.TrimSpace(r.PostForm.Get("customer_name")),
		Total:        strings.TrimSpace(r.PostForm.Get("total")),
	}

	rows := map[int]*ItemForm{}
	for key, values := range r.PostForm {
		m := itemKey.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		row, ok := rows[n]
		if !ok {
			row = &ItemForm{}
			rows[n] = row
		}
		value := strings.TrimSpace(values[0])
		switch m[2] {
		case "id":
			row.ID = value
		case "product_name":
			row.ProductName = value
		case "quantity":
			row.Quantity = value
		case "price":
			row.Price = value
		}
	}

	indexes := make([]int, 0, len(rows))
	for n := range rows {
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)
	for _, n := range indexes {
		if row := rows[n]; !row.blank() {
			form.Items = append(form.Items, *row)
		}
	}
	return form, nil
}

// Bill converts the form to a bill. Unparseable numbers are reported as
// violations on their field; an unparseable item id makes the row a new item.
func (f BillForm) Bill() (*models.Bill, validation.Violations) {
	v := validation.Violations{}
	bill := &models.Bill{ID: f.ID, CustomerName: f.CustomerName}

	if f.Total != "" {
		total, err := decimal.NewFromString(f.Total)
		if err != nil {
			v.Add("total", validation.Message("number"))
		} else {
			bill.Total = total
		}
	}

	bill.Items = make([]models.BillItem, len(f.Items))
	for i, row := range f.Items {
		item := models.BillItem{ProductName: row.ProductName}
		if id, err := strconv.ParseUint(row.ID, 10, 64); err == nil {
			item.ID = uint(id)
		}
		if row.Quantity != "" {
			qty, err := strconv.Atoi(row.Quantity)
			if err != nil {
				v.Add(fmt.Sprintf("items[%d].quantity", i), validation.Message("integer"))
			}
			item.Quantity = qty
		}
		if row.Price != "" {
			price, err := decimal.NewFromString(row.Price)
			if err != nil {
				v.Add(fmt.Sprintf("items[%d].price", i), validation.Message("number"))
			}
			item.Price = price
		}
		bill.Items[i] = item
	}
	return bill, v
}

// formFromBill fills a form with stored values.
func formFromBill(b *models.Bill) BillForm {
	form := BillForm{
		ID:           b.ID,
		CustomerName: b.CustomerName,
		Total:        b.Total.StringFixed(2),
		Items:        make([]ItemForm, len(b.Items)),
	}
	for i, item := range b.Items {
		form.Items[i] = ItemForm{
			ID:          strconv.FormatUint(uint64(item.ID), 10),
			ProductName: item.ProductName,
			Quantity:    strconv.Itoa(item.Quantity),
			Price:       item.Price.StringFixed(2),
		}
	}
	return form
}

// newBillForm is the empty create form with one placeholder row.
func newBillForm() BillForm {
	return BillForm{Items: []ItemForm{{}}}
}
