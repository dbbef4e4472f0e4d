package outbound

import (
	"context"
	"errors"

	"github.com/gudson/kpi/domain/entity"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
)

// CredentialStore is the read side of the user accounts file. Save exists for
// administrative tooling; request paths never write credentials.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*entity.Credential, error)
	List(ctx context.Context) ([]*entity.Credential, error)
	Save(ctx context.Context, credential *entity.Credential) error
}
