package gateways

import (
	"context"

	"github.com/ochairo/forgedroid/internal/domain/entities"
)

// SDKInstaller fetches an SDK archive and unpacks it under target
type SDKInstaller interface {
	FetchAndExtract(ctx context.Context, archive entities.SDKArchive, target string) error
}
