package response

// 业务状态码，HTTP 状态恒为 200，语义由 status_code 承载
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInvalidCode     = 422
	CodeTooManyRequests = 429
	CodeInternal        = 500
	CodeDispatchFailed  = 502
)
