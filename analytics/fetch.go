// ABOUTME: Owner-scoped collection loading for aggregations
// ABOUTME: A failed list degrades to an empty slice so one bad source never blanks a report
package analytics

import (
	"context"

	"github.com/harperreed/agency/gateway"
	"go.uber.org/zap"
)

func list[R, T any](ctx context.Context, gw gateway.Gateway, c gateway.Collection, q gateway.Query, toView func(R) T, logger *zap.Logger) []T {
	rows, err := gw.List(ctx, c, q)
	if err != nil {
		logger.Warn("list failed, aggregating as empty",
			zap.String("collection", string(c)),
			zap.Error(err),
		)
		return []T{}
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, toView(gateway.DecodeOne[R](row)))
	}
	return out
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
