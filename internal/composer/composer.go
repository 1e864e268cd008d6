// Package composer turns grounded catalog data into the customer-facing
// answer with a second, tool-less model call.
package composer

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/dispatch"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/intent"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/llm"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
)

const (
	styleNote = "Keep the language natural, professional and friendly, and write continuous prose rather than a bulleted list."
	idNote    = "For technical reasons, present the products to the customer by their ID rather than their code."
)

// Composer phrases grounded answers.
type Composer struct {
	model     llm.Model
	storeName string
	logger    *zap.Logger
	tracer    trace.Tracer
}

// New creates a composer that speaks for storeName.
func New(model llm.Model, storeName string, log *zap.Logger) *Composer {
	return &Composer{
		model:     model,
		storeName: storeName,
		logger:    logger.OrNop(log).Named("composer"),
		tracer:    otel.Tracer("composer"),
	}
}

// Compose calls the model once without tools and returns its text verbatim,
// including an empty text. Model errors are returned unchanged.
func (c *Composer) Compose(ctx context.Context, gc dispatch.GroundingContext) (string, error) {
	ctx, span := c.tracer.Start(ctx, "composer.compose")
	defer span.End()
	span.SetAttributes(attribute.String("intent.operation", string(gc.Operation)))

	prompt := c.BuildPrompt(gc)
	c.logger.Debug("composing grounded answer",
		zap.String("operation", string(gc.Operation)),
		zap.Int("prompt_len", len(prompt)))

	resp, err := c.model.Generate(ctx, prompt, nil)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return resp.Text, nil
}

// BuildPrompt renders the grounding prompt for gc. The same input always
// yields the same prompt.
func (c *Composer) BuildPrompt(gc dispatch.GroundingContext) string {
	header, instruction := c.framing(gc)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(gc.NarrativeData)
	b.WriteString("\n\n")
	b.WriteString(instruction)
	b.WriteString(" ")
	b.WriteString(styleNote)
	if gc.Operation == intent.GetProducts || gc.Operation == intent.GetNewArrivals {
		b.WriteString("\n\n")
		b.WriteString(idNote)
	}
	return b.String()
}

func (c *Composer) framing(gc dispatch.GroundingContext) (header, instruction string) {
	store := c.storeName
	switch gc.Operation {
	case intent.GetProducts:
		return fmt.Sprintf("Here are %v products from %s:", gc.Extra[dispatch.ExtraCount], store),
			"Introduce these products to the customer professionally, emphasising what makes them unique and their quality."
	case intent.GetProductDetails:
		return "Here are the details of the product the customer is interested in:",
			"Describe this product attractively and professionally, mention its standout features and tell the customer how to see more details or buy it."
	case intent.GetCategories:
		return fmt.Sprintf("Here are the product categories of %s:", store),
			"Introduce these categories attractively and invite the customer to explore the collections."
	case intent.GetProductsByCategory:
		return fmt.Sprintf("Here are products from the %q category of %s:", gc.Extra[dispatch.ExtraCategoryName], store),
			"Briefly introduce this category and its signature products in a professional and inspiring tone."
	case intent.GetBestsellingProducts:
		return fmt.Sprintf("Here are the best-selling products of %s:", store),
			"Introduce these best sellers attractively and highlight why so many customers love them."
	case intent.GetNewArrivals:
		return fmt.Sprintf("Here are the newest products of %s:", store),
			"Introduce these new products attractively and highlight what is fresh and on trend about them."
	case intent.FindProductsByPriceRange:
		return fmt.Sprintf("Here are products of %s priced between %v and %v VND:",
				store, gc.Extra[dispatch.ExtraMinPrice], gc.Extra[dispatch.ExtraMaxPrice]),
			"Introduce these products and emphasise the value and quality the customer receives."
	default:
		return fmt.Sprintf("Here is catalog information from %s:", store),
			"Answer the customer using only this information."
	}
}
