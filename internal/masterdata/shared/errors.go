package shared

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Master data errors alias the HTTP sentinels.
var (
	ErrNotFound   = httpx.ErrNotFound
	ErrDuplicate  = httpx.ErrDuplicate
	ErrValidation = httpx.ErrValidation
	ErrInvalidID  = fmt.Errorf("%w: invalid ID", httpx.ErrValidation)
)
