package grapherror

// Category represents the main error category for graph operations
type Category string

const (
	// CategoryLoad indicates artifact fetch/parse errors
	CategoryLoad Category = "load"

	// CategoryValidate indicates artifact schema/consistency errors
	CategoryValidate Category = "validate"

	// CategoryLayout indicates simulation errors
	CategoryLayout Category = "layout"

	// CategoryWebSocket indicates WebSocket connection/communication errors
	CategoryWebSocket Category = "websocket"

	// CategoryRender indicates scene/export rendering errors
	CategoryRender Category = "render"

	// CategoryInternal indicates internal server errors
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Load Subcategories
const (
	// SubcategoryLoadFetch indicates the artifact could not be retrieved
	SubcategoryLoadFetch = "fetch"

	// SubcategoryLoadParse indicates the artifact is not valid JSON
	SubcategoryLoadParse = "parse"

	// SubcategoryLoadEmpty indicates the artifact contains no nodes
	SubcategoryLoadEmpty = "empty"
)

// Validate Subcategories
const (
	// SubcategoryValidateNode indicates a node is missing required fields for its type
	SubcategoryValidateNode = "node"

	// SubcategoryValidateEdge indicates an edge references an unknown node id
	SubcategoryValidateEdge = "edge"

	// SubcategoryValidateDuplicate indicates a duplicate node id
	SubcategoryValidateDuplicate = "duplicate_id"
)

// WebSocket Subcategories
const (
	// SubcategoryWSRead indicates error reading from WebSocket
	SubcategoryWSRead = "read"

	// SubcategoryWSWrite indicates error writing to WebSocket
	SubcategoryWSWrite = "write"

	// SubcategoryWSUpgrade indicates WebSocket upgrade failed
	SubcategoryWSUpgrade = "upgrade"
)

// Layout Subcategories
const (
	// SubcategoryLayoutUnknownMode indicates an unrecognized layout mode
	SubcategoryLayoutUnknownMode = "unknown_mode"

	// SubcategoryLayoutUnstable indicates non-finite positions were detected
	SubcategoryLayoutUnstable = "unstable"
)

// Internal Subcategories
const (
	// SubcategoryInternalConfig indicates configuration error
	SubcategoryInternalConfig = "config"

	// SubcategoryInternalState indicates invalid internal state
	SubcategoryInternalState = "invalid_state"
)
