package log

const (
	KeyAppName       = "app"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyConfig        = "config"
	KeyRequestID     = "requestId"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestIP     = "requesterIP"
	KeyProductID     = "productId"
	KeyProductIDs    = "productIds"
	KeyQuantity      = "quantity"
	KeyCartItems     = "cartItems"
	KeyStorageKey    = "storageKey"
	KeyOrderID       = "orderId"
	KeyURL           = "url"
	KeyStatusCode    = "statusCode"
)
