package outbound

import (
	"io"

	"github.com/gudson/kpi/domain/entity"
)

// TableEncoder renders record tables in their durable column layout.
type TableEncoder interface {
	ContentType() string
	Extension() string
	EncodeSuppliers(w io.Writer, rows []entity.Supplier) error
	EncodeBuyers(w io.Writer, rows []entity.Buyer) error
	EncodeOrders(w io.Writer, rows []entity.Order) error
}
