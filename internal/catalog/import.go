package catalog

import (
	"context"

	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// ProductWriter persists imported products.
type ProductWriter interface {
	CreateProducts(ctx context.Context, ps []model.Product) error
	CreateProduct(ctx context.Context, p *model.Product) error
}

// ImportSink inserts a batch in one statement. When the batch hits a
// uniqueness conflict it falls back to row-by-row inserts so one bad row
// does not discard the rest.
func ImportSink(w ProductWriter) func(ctx context.Context, ps []model.Product) error {
	return func(ctx context.Context, ps []model.Product) error {
		err := w.CreateProducts(ctx, ps)
		if err == nil || exception.KindOf(err) != exception.KindConflict {
			return err
		}
		var failed int
		for i := range ps {
			if err := w.CreateProduct(ctx, &ps[i]); err != nil {
				failed++
				logs.Warnf("import product %s (tenant %s, sku %s), err: %+v", ps[i].ID, ps[i].TenantID, ps[i].SKU, err)
			}
		}
		if failed > 0 {
			logs.Warnf("import batch of %d finished with %d rejected rows", len(ps), failed)
		}
		return nil
	}
}
