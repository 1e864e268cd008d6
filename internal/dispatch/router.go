// Package dispatch validates model-produced intents and runs them against the
// catalog backend.
package dispatch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/catalog"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/intent"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
)

// Catalog is the subset of the catalog client the handlers use.
type Catalog interface {
	Products(ctx context.Context) ([]catalog.Entity, bool)
	Product(ctx context.Context, id int) (catalog.Entity, bool)
	Categories(ctx context.Context) ([]catalog.Entity, bool)
	Category(ctx context.Context, id int) (catalog.Entity, bool)
	ProductsByCategory(ctx context.Context, categoryID int) ([]catalog.Entity, bool)
	Bestselling(ctx context.Context) ([]catalog.Entity, bool)
	NewArrivals(ctx context.Context, limit int) ([]catalog.Entity, bool)
	ProductsByPriceRange(ctx context.Context, min, max float64) ([]catalog.Entity, bool)
}

type handlerFunc func(ctx context.Context, def intent.Definition, v intent.Values) Outcome

// bind adapts a handler over a typed argument record.
func bind[T any](decode func(intent.Values) T, run func(context.Context, intent.Definition, T) Outcome) handlerFunc {
	return func(ctx context.Context, def intent.Definition, v intent.Values) Outcome {
		return run(ctx, def, decode(v))
	}
}

// Router maps operations to handlers.
type Router struct {
	catalog  Catalog
	logger   *zap.Logger
	tracer   trace.Tracer
	handlers map[intent.Operation]handlerFunc
}

// NewRouter creates a router over c.
func NewRouter(c Catalog, log *zap.Logger) *Router {
	r := &Router{
		catalog: c,
		logger:  logger.OrNop(log).Named("dispatch"),
		tracer:  otel.Tracer("dispatch"),
	}
	// find_products_by_material, get_collections and get_products_by_collection
	// are declared to the model but have no handler.
	r.handlers = map[intent.Operation]handlerFunc{
		intent.GetProducts:              bind(intent.DecodeProductsLimit, r.products),
		intent.GetProductDetails:        bind(intent.DecodeProduct, r.productDetails),
		intent.GetCategories:            bind(intent.DecodeNone, r.categories),
		intent.GetProductsByCategory:    bind(intent.DecodeCategory, r.productsByCategory),
		intent.GetBestsellingProducts:   bind(intent.DecodeNone, r.bestselling),
		intent.GetNewArrivals:           bind(intent.DecodeNewArrivalsLimit, r.newArrivals),
		intent.FindProductsByPriceRange: bind(intent.DecodePriceRange, r.priceRange),
		intent.RedirectToProduct:        bind(intent.DecodeProduct, r.redirect),
	}
	return r
}

// Handles reports whether op has a handler.
func (r *Router) Handles(op intent.Operation) bool {
	_, ok := r.handlers[op]
	return ok
}

// Dispatch validates in and runs its handler.
func (r *Router) Dispatch(ctx context.Context, in intent.Intent) Outcome {
	ctx, span := r.tracer.Start(ctx, "dispatch.intent")
	defer span.End()
	span.SetAttributes(attribute.String("intent.operation", in.Operation))

	def, known := intent.Lookup(in.Operation)
	handler, wired := r.handlers[def.Operation]
	if !known || !wired {
		r.logger.Warn("unrecognized operation",
			zap.String("operation", in.Operation),
			zap.Bool("declared", known))
		span.SetAttributes(attribute.String("dispatch.outcome", Unrecognized{}.Kind()))
		return Unrecognized{Name: in.Operation}
	}

	values, err := def.Bind(in.Arguments)
	if err != nil {
		r.logger.Warn("invalid intent arguments",
			zap.String("operation", in.Operation),
			zap.Any("arguments", in.Arguments),
			zap.Error(err))
		span.SetAttributes(attribute.String("dispatch.outcome", Invalid{}.Kind()))
		return Invalid{Operation: def.Operation, Err: err, Apology: def.Apology}
	}

	out := handler(ctx, def, values)
	if u, ok := out.(Unavailable); ok {
		r.logger.Error("catalog data unavailable",
			zap.String("operation", string(u.Operation)),
			zap.Any("arguments", map[string]any(values)))
	}
	span.SetAttributes(attribute.String("dispatch.outcome", out.Kind()))
	return out
}

func unavailable(def intent.Definition) Outcome {
	return Unavailable{Operation: def.Operation, Apology: def.Apology}
}

func grounded(def intent.Definition, lines []string, extra map[string]any) Outcome {
	if extra == nil {
		extra = map[string]any{}
	}
	return Grounded{Context: GroundingContext{
		Operation:     def.Operation,
		NarrativeData: joinLines(lines),
		Extra:         extra,
	}}
}
