package contracts

import (
	"context"
)

type ISecurityScanner interface {
	Scan(ctx context.Context, targetDir string) (string, error)
}
