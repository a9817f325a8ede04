package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/spf13/pflag"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
)

const Usage = `usage: storefront [--config file] <command> [flags]

commands:
  products [--page N] [--category C]   list one page of products
  products-all                         list all products
  cart                                 show the cart
  cart-add --product-id ID --qty N     add a product to the cart
  cart-update --id ID --product-id ID --qty N
                                       change a cart line
  cart-delete --id ID                  remove a cart line
`

// Exec runs one command and writes its JSON result to out in the API wire
// format. Cart failures have already been alerted when Exec returns their
// error.
func (app *App) Exec(ctx context.Context, out io.Writer, args []string) error {
	const op = "App.Exec"

	if len(args) == 0 {
		return fmt.Errorf("%s: %w", op, ErrUsage)
	}

	name, args := args[0], args[1:]
	fs := newFlagSet(name)

	var result any
	var err error
	switch name {
	case "products":
		page := fs.Int("page", 0, "page number")
		category := fs.String("category", "", "category filter")
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrUsage, err)
		}
		q := app.catalog.ProductsQuery(domain.ProductsParams{
			Page:     *page,
			Category: *category,
		})
		var res domain.ProductsPage
		res, err = q.Fetch(ctx)
		result = httphandler.ProductsPageToSchema(res)

	case "products-all":
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrUsage, err)
		}
		var ps []domain.Product
		ps, err = app.catalog.AllProductsQuery().Fetch(ctx)
		result = httphandler.ProductsToSchema(ps)

	case "cart":
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrUsage, err)
		}
		err = app.cart.GetCart(ctx)
		result = httphandler.CartToSchema(app.cart.Cart())

	case "cart-add":
		productID := fs.String("product-id", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		if err := parseRequired(fs, args, "product-id"); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		err = app.cart.AddCartItem(ctx, domain.AddCartItem{
			ProductID: *productID,
			Qty:       *qty,
		})
		result = httphandler.CartToSchema(app.cart.Cart())

	case "cart-update":
		id := fs.String("id", "", "cart line id")
		productID := fs.String("product-id", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		if err := parseRequired(fs, args, "id", "product-id"); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		err = app.cart.UpdateCartItem(ctx, domain.UpdateCartItem{
			ID:        *id,
			ProductID: *productID,
			Qty:       *qty,
		})
		result = httphandler.CartToSchema(app.cart.Cart())

	case "cart-delete":
		id := fs.String("id", "", "cart line id")
		if err := parseRequired(fs, args, "id"); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		err = app.cart.DeleteCartItem(ctx, *id)
		result = httphandler.CartToSchema(app.cart.Cart())

	default:
		return fmt.Errorf("%s: %w %q", op, ErrUnknownCommand, name)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return writeResult(out, result)
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	// handled by the config loader
	fs.String("config", "", "config file")
	return fs
}

func parseRequired(fs *pflag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	for _, name := range required {
		if !fs.Changed(name) {
			return fmt.Errorf("%w: --%s is required", ErrUsage, name)
		}
	}
	return nil
}

func writeResult(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
