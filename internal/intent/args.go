package intent

// Default list sizes when the model omits limit or asks for fewer than one.
const (
	DefaultProductsLimit    = 5
	DefaultNewArrivalsLimit = 4
)

// NoArgs is the record for operations without arguments.
type NoArgs struct{}

// LimitArgs bounds a list operation.
type LimitArgs struct {
	Limit int
}

// ProductArgs identifies one product.
type ProductArgs struct {
	ProductID int
}

// CategoryArgs identifies one category.
type CategoryArgs struct {
	CategoryID int
}

// PriceRangeArgs is an inclusive price window in VND.
type PriceRangeArgs struct {
	Min float64
	Max float64
}

// MaterialArgs filters a category by material.
type MaterialArgs struct {
	CategoryID int
	Material   string
}

// DecodeNone is the decoder for operations without arguments.
func DecodeNone(Values) NoArgs { return NoArgs{} }

// DecodeProductsLimit reads limit, defaulting to DefaultProductsLimit.
func DecodeProductsLimit(v Values) LimitArgs {
	return LimitArgs{Limit: limitOr(v, DefaultProductsLimit)}
}

// DecodeNewArrivalsLimit reads limit, defaulting to DefaultNewArrivalsLimit.
func DecodeNewArrivalsLimit(v Values) LimitArgs {
	return LimitArgs{Limit: limitOr(v, DefaultNewArrivalsLimit)}
}

// DecodeProduct reads product_id.
func DecodeProduct(v Values) ProductArgs {
	return ProductArgs{ProductID: v.Int("product_id")}
}

// DecodeCategory reads category_id.
func DecodeCategory(v Values) CategoryArgs {
	return CategoryArgs{CategoryID: v.Int("category_id")}
}

// DecodePriceRange reads min_price and max_price.
func DecodePriceRange(v Values) PriceRangeArgs {
	return PriceRangeArgs{Min: v.Float("min_price"), Max: v.Float("max_price")}
}

// DecodeMaterial reads category_id and material.
func DecodeMaterial(v Values) MaterialArgs {
	return MaterialArgs{CategoryID: v.Int("category_id"), Material: v.Str("material")}
}

func limitOr(v Values, fallback int) int {
	if l := v.Int("limit"); l >= 1 {
		return l
	}
	return fallback
}
