package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
)

const fileDateLayout = "20060102"

// file name stems, as offered by the original download buttons
var fileStems = map[string]string{
	inbound.ExportSuppliers: "fournisseurs",
	inbound.ExportBuyers:    "acheteurs",
	inbound.ExportOrders:    "commandes",
}

type ExportUseCase struct {
	store   *state.Store
	gate    *authorization.Gate
	encoder outbound.TableEncoder
	blobs   outbound.BlobStore
	prefix  string
	logger  logger.Logger
	now     func() time.Time
}

// NewExportUseCase builds the export use case. blobs may be nil, in which
// case Publish is unavailable.
func NewExportUseCase(
	store *state.Store,
	gate *authorization.Gate,
	encoder outbound.TableEncoder,
	blobs outbound.BlobStore,
	prefix string,
	log logger.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		store:   store,
		gate:    gate,
		encoder: encoder,
		blobs:   blobs,
		prefix:  prefix,
		logger:  log,
		now:     time.Now,
	}
}

var _ inbound.ExportUseCase = (*ExportUseCase)(nil)

func (uc *ExportUseCase) Download(ctx context.Context, principal *entity.Principal, table string) (*inbound.ExportFile, error) {
	if err := uc.gate.Require(ctx, principal, entity.PermissionRead); err != nil {
		return nil, err
	}
	stem, ok := fileStems[table]
	if !ok {
		return nil, apperr.ErrValidation(fmt.Sprintf("table %q cannot be exported", table))
	}

	var (
		buf    bytes.Buffer
		encErr error
	)
	uc.store.View(func(st *state.State) {
		switch table {
		case inbound.ExportSuppliers:
			encErr = uc.encoder.EncodeSuppliers(&buf, st.Suppliers.All())
		case inbound.ExportBuyers:
			encErr = uc.encoder.EncodeBuyers(&buf, st.Buyers.All())
		case inbound.ExportOrders:
			encErr = uc.encoder.EncodeOrders(&buf, st.Orders.All())
		}
	})
	if encErr != nil {
		return nil, apperr.ErrInternalServerError("failed to render export", encErr)
	}

	return &inbound.ExportFile{
		FileName:    stem + "_" + uc.now().Format(fileDateLayout) + uc.encoder.Extension(),
		ContentType: uc.encoder.ContentType(),
		Content:     buf.Bytes(),
	}, nil
}

// Publish renders the table and stores it in the configured blob store.
func (uc *ExportUseCase) Publish(ctx context.Context, principal *entity.Principal, table string) (*inbound.PublishResult, error) {
	file, err := uc.Download(ctx, principal, table)
	if err != nil {
		return nil, err
	}
	if uc.blobs == nil {
		return nil, apperr.ErrInternalServerError("export storage is not configured", nil)
	}

	key := path.Join(uc.prefix, file.FileName)
	if err := uc.blobs.Put(ctx, key, bytes.NewReader(file.Content), file.ContentType); err != nil {
		uc.logger.Error(ctx, "Failed to publish export", err, map[string]interface{}{"key": key})
		return nil, apperr.ErrPersistence("publish export", err)
	}

	uc.logger.Info(ctx, "Export published", map[string]interface{}{
		"key":      key,
		"size":     len(file.Content),
		"username": principal.Username,
	})
	return &inbound.PublishResult{Key: key, Size: len(file.Content)}, nil
}
