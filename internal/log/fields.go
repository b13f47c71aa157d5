package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldTenantID   = "tenant_id"
	FieldCategory   = "category"
	FieldPeriod     = "period"
	FieldCollection = "collection"
	FieldStep       = "step"
	FieldCount      = "count"
	FieldPath       = "path"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStorage   = "storage"
	ComponentBootstrap = "bootstrap"
	ComponentService   = "service"
	ComponentBackup    = "backup"
	ComponentInsights  = "insights"
	ComponentCache     = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpImport   = "import"
	OpReset    = "reset"
	OpBackup   = "backup"
	OpRestore  = "restore"
	OpSeed     = "seed"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
