package dispatch

import "github.com/bizmatters/agent-builder/catalog-chatbot/internal/intent"

// Extra keys a handler may set on a GroundingContext.
const (
	ExtraCount        = "count"
	ExtraProductID    = "product_id"
	ExtraCategoryName = "category_name"
	ExtraMinPrice     = "min_price"
	ExtraMaxPrice     = "max_price"
)

// GroundingContext is the catalog data the second model call is grounded on.
type GroundingContext struct {
	Operation     intent.Operation
	NarrativeData string
	Extra         map[string]any
}

// Outcome is the result of dispatching one intent. It is one of Grounded,
// Reply, Invalid, Unrecognized or Unavailable.
type Outcome interface {
	Kind() string
	outcome()
}

// Grounded carries data for the response composer.
type Grounded struct {
	Context GroundingContext
}

// Reply is a finished answer that bypasses the composer.
type Reply struct {
	Text     string
	Redirect string
}

// Invalid means the arguments failed validation. No catalog call was made.
type Invalid struct {
	Operation intent.Operation
	Err       error
	Apology   string
}

// Unrecognized means the operation is unknown or has no handler.
type Unrecognized struct {
	Name string
}

// Unavailable means a required catalog fetch came back absent or empty.
type Unavailable struct {
	Operation intent.Operation
	Apology   string
}

func (Grounded) Kind() string     { return "grounded" }
func (Reply) Kind() string        { return "reply" }
func (Invalid) Kind() string      { return "invalid" }
func (Unrecognized) Kind() string { return "unrecognized" }
func (Unavailable) Kind() string  { return "unavailable" }

func (Grounded) outcome()     {}
func (Reply) outcome()        {}
func (Invalid) outcome()      {}
func (Unrecognized) outcome() {}
func (Unavailable) outcome()  {}
