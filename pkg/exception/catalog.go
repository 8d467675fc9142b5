package exception

var (
	ErrProductNotFound   = New(KindNotFound, "product not found")
	ErrCategoryNotFound  = New(KindNotFound, "category not found")
	ErrBrandNotFound     = New(KindNotFound, "brand not found")
	ErrCategoryInUse     = New(KindConflict, "category is referenced by products")
	ErrBrandInUse        = New(KindConflict, "brand is referenced by products")
	ErrCategoryCycle     = Invalid("parent_id", "category cannot be its own ancestor")
	ErrInsufficientStock = New(KindUnprocessable, "insufficient stock")
	ErrProductInactive   = New(KindUnprocessable, "product is not available")
	ErrBulkTooLarge      = Invalid("products", "too many products in one import")
	ErrBulkQueueFull     = New(KindUnavailable, "import queue is full, retry later")
)
