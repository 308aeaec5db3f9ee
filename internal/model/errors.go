package model

import "github.com/fekuna/omnipos-replenishment-service/internal/apperr"

var (
	ErrInvalidQuantity     = apperr.InvalidInput("invalid_quantity", "quantity must be greater than zero")
	ErrInvalidPrice        = apperr.InvalidInput("invalid_price", "price must be greater than zero")
	ErrInvalidExpiryFormat = apperr.InvalidInput("invalid_expiry_format", "expiry_date must be in YYYY-MM-DD format")
	ErrExpiryNotInFuture   = apperr.InvalidInput("expiry_not_in_future", "expiry date must be a future date")
	ErrMissingField        = apperr.InvalidInput("missing_required_field", "missing required field")
	ErrInvalidRequestBody  = apperr.InvalidInput("invalid_request_body", "invalid request body")

	ErrBatchExists   = apperr.Conflict("batch_exists", "batch number already exists")
	ErrOrderIDExists = apperr.Conflict("order_id_exists", "order id already exists")
	// ErrDraftExists is returned by the store when a second DRAFT for a batch
	// would be inserted. The order use case resolves it as an update.
	ErrDraftExists = apperr.Conflict("draft_exists", "draft order already exists for batch")

	ErrProductNotFound = apperr.NotFound("product_not_found", "product not found")
	ErrBatchNotFound   = apperr.NotFound("batch_not_found", "batch number not found")
	ErrOrderNotFound   = apperr.NotFound("order_not_found", "order not found")

	ErrMalformedDate   = apperr.Validation("malformed_date", "date must be in YYYY-MM-DD format")
	ErrUnauthenticated = apperr.AuthFailure("unauthenticated", "missing or invalid credentials")
	ErrSystemBusy      = apperr.Unavailable("system_busy", "system busy, please try again later")

	// ErrIdentityProvider surfaces sign-up and sign-in rejections.
	ErrIdentityProvider = apperr.InvalidInput("identity_provider_error", "identity provider rejected the request")
)
