package dispatch

import (
	"context"
	"fmt"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/catalog"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/intent"
)

// browseCap bounds browse-style listings.
const browseCap = 5

func (r *Router) products(ctx context.Context, def intent.Definition, args intent.LimitArgs) Outcome {
	items, ok := r.catalog.Products(ctx)
	if !ok || len(items) == 0 {
		return unavailable(def)
	}
	items = capped(items, args.Limit)
	return grounded(def, render(items, productLine), map[string]any{ExtraCount: len(items)})
}

func (r *Router) productDetails(ctx context.Context, def intent.Definition, args intent.ProductArgs) Outcome {
	p, ok := r.catalog.Product(ctx, args.ProductID)
	if !ok || len(p) == 0 {
		return unavailable(def)
	}
	return grounded(def, detailLines(p), map[string]any{ExtraProductID: args.ProductID})
}

func (r *Router) categories(ctx context.Context, def intent.Definition, _ intent.NoArgs) Outcome {
	items, ok := r.catalog.Categories(ctx)
	if !ok || len(items) == 0 {
		return unavailable(def)
	}
	return grounded(def, render(items, groupLine), map[string]any{ExtraCount: len(items)})
}

func (r *Router) productsByCategory(ctx context.Context, def intent.Definition, args intent.CategoryArgs) Outcome {
	items, ok := r.catalog.ProductsByCategory(ctx, args.CategoryID)
	if !ok || len(items) == 0 {
		return unavailable(def)
	}
	category, ok := r.catalog.Category(ctx, args.CategoryID)
	if !ok || len(category) == 0 {
		return unavailable(def)
	}
	items = capped(items, browseCap)
	return grounded(def, render(items, browseLine), map[string]any{
		ExtraCount:        len(items),
		ExtraCategoryName: category.Field("name"),
	})
}

func (r *Router) bestselling(ctx context.Context, def intent.Definition, _ intent.NoArgs) Outcome {
	items, ok := r.catalog.Bestselling(ctx)
	if !ok || len(items) == 0 {
		return unavailable(def)
	}
	items = capped(items, browseCap)
	return grounded(def, render(items, browseLine), map[string]any{ExtraCount: len(items)})
}

func (r *Router) newArrivals(ctx context.Context, def intent.Definition, args intent.LimitArgs) Outcome {
	items, ok := r.catalog.NewArrivals(ctx, args.Limit)
	if !ok || len(items) == 0 {
		return unavailable(def)
	}
	// The backend is asked for limit items but is not trusted to honour it.
	items = capped(items, args.Limit)
	return grounded(def, render(items, browseLine), map[string]any{ExtraCount: len(items)})
}

func (r *Router) priceRange(ctx context.Context, def intent.Definition, args intent.PriceRangeArgs) Outcome {
	lo, hi := int64(args.Min), int64(args.Max)
	items, ok := r.catalog.ProductsByPriceRange(ctx, args.Min, args.Max)
	if !ok || len(items) == 0 {
		return Unavailable{
			Operation: def.Operation,
			Apology:   fmt.Sprintf("Sorry, I couldn't find any products priced between %d and %d VND.", lo, hi),
		}
	}
	items = capped(items, browseCap)
	return grounded(def, render(items, browseLine), map[string]any{
		ExtraCount:    len(items),
		ExtraMinPrice: lo,
		ExtraMaxPrice: hi,
	})
}

func (r *Router) redirect(ctx context.Context, def intent.Definition, args intent.ProductArgs) Outcome {
	p, ok := r.catalog.Product(ctx, args.ProductID)
	if !ok || len(p) == 0 {
		return unavailable(def)
	}
	return Reply{
		Text:     fmt.Sprintf("I found the product %s you're interested in. I'll take you to its page now.", p.Field("name")),
		Redirect: fmt.Sprintf("/catalog/product/%d", args.ProductID),
	}
}

func capped(items []catalog.Entity, n int) []catalog.Entity {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
