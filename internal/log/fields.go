package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEndpoint   = "endpoint"
	FieldErrorKind  = "error_kind"
	FieldTxID       = "transaction_id"
	FieldCategory   = "category"
	FieldRange      = "range"
	FieldUsername   = "username"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentSession = "session"
	ComponentGateway = "gateway"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Operations defines standard operation names.
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpProbe    = "probe"
	OpList     = "list"
	OpCreate   = "create"
	OpDelete   = "delete"
	OpMirror   = "mirror"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
