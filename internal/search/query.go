// Package search drives the debounced, filtered and paginated client listings
// and the single-slot detail view next to them.
package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Field names a filter input.
type Field string

const (
	FieldID      Field = "cus_id"
	FieldName    Field = "cus_name"
	FieldPhone   Field = "phone_number"
	FieldAddress Field = "address"
)

// Filters are the raw search inputs as typed.
type Filters struct {
	ID      string
	Name    string
	Phone   string
	Address string
}

// Set assigns one field.
func (f *Filters) Set(field Field, value string) error {
	switch field {
	case FieldID:
		f.ID = value
	case FieldName:
		f.Name = value
	case FieldPhone:
		f.Phone = value
	case FieldAddress:
		f.Address = value
	default:
		return fmt.Errorf("unknown search field %q", field)
	}
	return nil
}

// Active reports whether at least one field holds a non-blank value.
func (f Filters) Active() bool {
	for _, v := range []string{f.ID, f.Name, f.Phone, f.Address} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Query is one outbound listing request.
type Query struct {
	Page    int
	Limit   int
	Filters Filters
	// Search selects the filtered endpoint semantics; Limit is only sent for plain listings.
	Search bool
}

// Values encodes the query string.
func (q Query) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if !q.Search {
		if q.Limit > 0 {
			v.Set("limit", strconv.Itoa(q.Limit))
		}
		return v
	}
	if id, err := strconv.Atoi(strings.TrimSpace(q.Filters.ID)); err == nil {
		v.Set("search_id", strconv.Itoa(id))
	}
	for k, s := range map[string]string{
		"search_name":    q.Filters.Name,
		"search_phone":   q.Filters.Phone,
		"search_address": q.Filters.Address,
	} {
		if s = strings.TrimSpace(s); s != "" {
			v.Set(k, s)
		}
	}
	return v
}
