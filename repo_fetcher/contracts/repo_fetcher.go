package contracts

import (
	"context"

	"github.com/kaiyuhsu/cipherlift/repo_fetcher/models"
)

type IRepoFetcher interface {
	SearchCode(ctx context.Context, query string) ([]models.CodeSearchHit, error)
	DownloadRepository(ctx context.Context, fullName string, destDir string) (string, error)
	ExtractArchive(zipPath string, destDir string) (string, error)
}
