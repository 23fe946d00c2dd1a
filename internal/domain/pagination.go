package domain

// PageMeta describes where a page sits in the full result set. From and To
// are 1-based positions of the first and last item on the page and are nil
// when the page is empty.
type PageMeta struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// Page is one page of a larger, ordered result set.
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

// NewPageMeta computes page metadata. LastPage is at least 1 so an empty
// result still reports a single (empty) page.
func NewPageMeta(page, perPage, total, itemsOnPage int) PageMeta {
	if page < 1 {
		page = 1
	}
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = (total + perPage - 1) / perPage
	}

	meta := PageMeta{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
	if itemsOnPage > 0 {
		from := (page-1)*perPage + 1
		to := from + itemsOnPage - 1
		meta.From = &from
		meta.To = &to
	}
	return meta
}
