package csvfile

import (
	"io"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
)

// Encoder renders tables with the same headers as the data files.
type Encoder struct{}

var _ outbound.TableEncoder = Encoder{}

func (Encoder) ContentType() string { return "text/csv" }

func (Encoder) Extension() string { return ".csv" }

func (Encoder) EncodeSuppliers(w io.Writer, rows []entity.Supplier) error {
	return supplierSchema.encode(w, rows)
}

func (Encoder) EncodeBuyers(w io.Writer, rows []entity.Buyer) error {
	return buyerSchema.encode(w, rows)
}

func (Encoder) EncodeOrders(w io.Writer, rows []entity.Order) error {
	return orderSchema.encode(w, rows)
}
