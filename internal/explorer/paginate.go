package explorer

import (
	"fmt"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

// Paginate slices one 1-based page out of records. A page outside
// [1, totalPages] is not an error; it yields an empty Items slice.
func Paginate(records []schemas.ThreatRecord, page, pageSize int) (schemas.PageResult, error) {
	if pageSize <= 0 {
		return schemas.PageResult{}, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidQuery, pageSize)
	}

	total := len(records)
	res := schemas.PageResult{
		Items:      []schemas.ThreatRecord{},
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
		Page:       page,
		PageSize:   pageSize,
	}

	if page < 1 || page > res.TotalPages {
		// Out of range pages are clamped at the slice boundary.
		if page >= 1 {
			res.StartIndex, res.EndIndex = total, total
		}
		return res, nil
	}

	res.StartIndex = (page - 1) * pageSize
	res.EndIndex = min(res.StartIndex+pageSize, total)
	res.Items = records[res.StartIndex:res.EndIndex:res.EndIndex]
	res.StartItem = res.StartIndex + 1
	res.EndItem = min(page*pageSize, total)
	return res, nil
}
