package inbound

import (
	"context"

	"github.com/gudson/kpi/domain/entity"
)

type AuditQuery struct {
	Actor string `json:"actor,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type AuditUseCase interface {
	Query(ctx context.Context, principal *entity.Principal, q AuditQuery) ([]entity.AuditEntry, error)
	Actors(ctx context.Context, principal *entity.Principal) ([]string, error)
}
