package listing

// Page is one window over a filtered list.
type Page[T any] struct {
	Items      []T
	Number     int
	PageSize   int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
	Window     []PageLink
}

// PageLink is one entry of a pagination bar. Ellipsis entries have Number 0.
type PageLink struct {
	Number   int  `json:"number"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

const windowRadius = 2

// TotalPages returns ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Clamp moves page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Window builds the pagination bar: first page, last page, two pages either
// side of current and ellipsis markers for the gaps. A single page yields nil.
func Window(current, totalPages int) []PageLink {
	if totalPages <= 1 {
		return nil
	}
	current = Clamp(current, totalPages)

	start := max(2, current-windowRadius)
	end := min(totalPages-1, current+windowRadius)
	// an ellipsis never stands for a single page
	if start == 3 {
		start = 2
	}
	if end == totalPages-2 {
		end = totalPages - 1
	}

	links := []PageLink{{Number: 1}}
	if start > 2 {
		links = append(links, PageLink{Ellipsis: true})
	}
	for i := start; i <= end; i++ {
		links = append(links, PageLink{Number: i})
	}
	if end < totalPages-1 {
		links = append(links, PageLink{Ellipsis: true})
	}
	links = append(links, PageLink{Number: totalPages})

	for i := range links {
		if links[i].Number == current {
			links[i].Current = true
		}
	}
	return links
}
