// Package intent is the closed registry of catalog operations the model may
// request, with their argument contracts and the tool declarations sent to
// the model.
package intent

import (
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/llm"
)

// Operation names a catalog operation the model can call.
type Operation string

const (
	GetProducts              Operation = "get_products"
	GetProductDetails        Operation = "get_product_details"
	GetCategories            Operation = "get_categories"
	GetProductsByCategory    Operation = "get_products_by_category"
	GetCollections           Operation = "get_collections"
	GetProductsByCollection  Operation = "get_products_by_collection"
	GetBestsellingProducts   Operation = "get_bestselling_products"
	GetNewArrivals           Operation = "get_new_arrivals"
	FindProductsByPriceRange Operation = "find_products_by_price_range"
	FindProductsByMaterial   Operation = "find_products_by_material"
	RedirectToProduct        Operation = "redirect_to_product"
)

// ArgType is the declared type of an argument.
type ArgType string

const (
	Integer ArgType = "integer"
	Number  ArgType = "number"
	String  ArgType = "string"
)

// ArgumentSpec describes one named argument.
type ArgumentSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Default     any
	Description string
}

// Definition is the registered contract of one operation.
type Definition struct {
	Operation   Operation
	Description string
	Arguments   []ArgumentSpec
	// Apology is returned to the customer when the operation cannot run.
	Apology string
}

// Intent is a structured operation request produced by the model.
type Intent struct {
	Operation string
	Arguments map[string]any
}

// definitions lists every operation in declaration order.
var definitions = []Definition{
	{
		Operation:   GetProducts,
		Description: "List the jewelry products of the store",
		Arguments: []ArgumentSpec{
			{Name: "limit", Type: Integer, Default: DefaultProductsLimit, Description: "Number of products to show (default: 5)"},
		},
		Apology: "Sorry, I can't retrieve product information right now. Please try again later.",
	},
	{
		Operation:   GetProductDetails,
		Description: "Get detailed information about a specific jewelry product",
		Arguments: []ArgumentSpec{
			{Name: "product_id", Type: Integer, Required: true, Description: "ID of the product to look up"},
		},
		Apology: "Sorry, I couldn't find any information about this product.",
	},
	{
		Operation:   GetCategories,
		Description: "List the jewelry categories of the store",
		Apology:     "Sorry, I can't retrieve category information right now.",
	},
	{
		Operation:   GetProductsByCategory,
		Description: "List products in a category",
		Arguments: []ArgumentSpec{
			{Name: "category_id", Type: Integer, Required: true, Description: "ID of the category"},
		},
		Apology: "Sorry, I couldn't find any products in this category.",
	},
	{
		Operation:   GetCollections,
		Description: "List the jewelry collections of the store",
		Apology:     "Sorry, I can't retrieve collection information right now.",
	},
	{
		Operation:   GetProductsByCollection,
		Description: "List products in a collection",
		Arguments: []ArgumentSpec{
			{Name: "collection_id", Type: Integer, Required: true, Description: "ID of the collection"},
		},
		Apology: "Sorry, I couldn't find any products in this collection.",
	},
	{
		Operation:   GetBestsellingProducts,
		Description: "List the best-selling products",
		Apology:     "Sorry, I can't retrieve best-selling products right now.",
	},
	{
		Operation:   GetNewArrivals,
		Description: "List the newest products",
		Arguments: []ArgumentSpec{
			{Name: "limit", Type: Integer, Default: DefaultNewArrivalsLimit, Description: "Number of products to show (default: 4)"},
		},
		Apology: "Sorry, I can't retrieve new arrivals right now.",
	},
	{
		Operation:   FindProductsByPriceRange,
		Description: "Find products within a price range",
		Arguments: []ArgumentSpec{
			{Name: "min_price", Type: Number, Required: true, Description: "Lowest price (VND)"},
			{Name: "max_price", Type: Number, Required: true, Description: "Highest price (VND)"},
		},
		Apology: "Sorry, I couldn't find any products in that price range.",
	},
	{
		Operation:   FindProductsByMaterial,
		Description: "Find products by material such as gold, silver or diamond",
		Arguments: []ArgumentSpec{
			{Name: "category_id", Type: Integer, Required: true, Description: "ID of the product category"},
			{Name: "material", Type: String, Required: true, Description: "Material of the product (gold, silver, diamond...)"},
		},
		Apology: "Sorry, this feature is not available right now.",
	},
	{
		Operation:   RedirectToProduct,
		Description: "Redirect the customer to a specific product page",
		Arguments: []ArgumentSpec{
			{Name: "product_id", Type: Integer, Required: true, Description: "ID of the product to redirect to"},
		},
		Apology: "Sorry, I couldn't find this product.",
	},
}

var byName = func() map[Operation]Definition {
	m := make(map[Operation]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Operation] = d
	}
	return m
}()

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, bool) {
	d, ok := byName[Operation(name)]
	return d, ok
}

// Definitions returns every registered operation in declaration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// ToolDeclarations renders every definition as a model tool with a JSON
// Schema parameter object.
func ToolDeclarations() []llm.Tool {
	tools := make([]llm.Tool, 0, len(definitions))
	for _, d := range definitions {
		tools = append(tools, d.Tool())
	}
	return tools
}

// Tool renders d as a model tool declaration.
func (d Definition) Tool() llm.Tool {
	properties := make(map[string]any, len(d.Arguments))
	required := make([]string, 0, len(d.Arguments))
	for _, a := range d.Arguments {
		properties[a.Name] = map[string]any{
			"type":        string(a.Type),
			"description": a.Description,
		}
		if a.Required {
			required = append(required, a.Name)
		}
	}

	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}

	return llm.Tool{
		Name:        string(d.Operation),
		Description: d.Description,
		Parameters:  params,
	}
}
