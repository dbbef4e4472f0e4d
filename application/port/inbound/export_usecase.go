package inbound

import (
	"context"

	"github.com/gudson/kpi/domain/entity"
)

// Export table names accepted by ExportUseCase.
const (
	ExportSuppliers = "suppliers"
	ExportBuyers    = "buyers"
	ExportOrders    = "orders"
)

type ExportFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

type PublishResult struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

type ExportUseCase interface {
	Download(ctx context.Context, principal *entity.Principal, table string) (*ExportFile, error)
	Publish(ctx context.Context, principal *entity.Principal, table string) (*PublishResult, error)
}
