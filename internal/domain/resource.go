package domain

// FieldType is the closed set of field types a normalized schema may carry.
// Unknown or ambiguous inputs always resolve to FieldString.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldEmail   FieldType = "email"
	FieldText    FieldType = "text"
)

// Operation is one of the five CRUD capability tags.
type Operation string

const (
	OpList   Operation = "list"
	OpDetail Operation = "detail"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// OperationOrder is the canonical ordering used when emitting operation
// lists, so equivalent inputs always produce identical output.
var OperationOrder = []Operation{OpList, OpDetail, OpCreate, OpUpdate, OpDelete}

// SampleEndpoint is the sentinel endpoint used when the input mode carries
// no real endpoint (inline JSON or XML samples).
const SampleEndpoint = "__sample"

// ResourceField describes one typed field of a resource.
type ResourceField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	DisplayName string    `json:"displayName"`
}

// ResourceSchema is the normalized description of one API resource.
type ResourceSchema struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Endpoint    string          `json:"endpoint"`
	PrimaryKey  string          `json:"primaryKey"`
	Fields      []ResourceField `json:"fields"`
	Operations  []Operation     `json:"operations"`
}

// AnalysisResult is the success payload of an analysis: always an object
// wrapping the resource list, never a bare array.
type AnalysisResult struct {
	Resources []ResourceSchema `json:"resources"`
}

// RawField is a field as discovered by a mode analyzer, before the shared
// normalization pipeline runs. Either Declared is set (spec-based modes) or
// Samples holds observed values (sample-based modes); Declared wins.
type RawField struct {
	Name     string
	Declared FieldType
	Samples  []Value
}

// RawResource bundles what one analyzer discovered about a resource.
// Operations may come in three forms, consulted in this order by the
// operation mapper: Declared (SOAP operation names already mapped), Methods
// plus HasDetailPath (HTTP modes), or neither (sample modes fall back on
// IsList).
type RawResource struct {
	Name           string
	Endpoint       string
	Fields         []RawField
	Declared       []Operation
	Methods        []string
	HasDetailPath  bool
	IsList         bool
	PrimaryKeyHint string
}
