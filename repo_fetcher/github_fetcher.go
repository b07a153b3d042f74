package repo_fetcher

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/kaiyuhsu/cipherlift/repo_fetcher/contracts"
	"github.com/kaiyuhsu/cipherlift/repo_fetcher/models"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/oauth2"
)

// GitHubFetcher implements contracts.IRepoFetcher against the GitHub API.
type GitHubFetcher struct {
	client     *github.Client
	httpClient *http.Client
	config     *models.GitHubConfig
}

// NewGitHubFetcher builds a fetcher from an explicit config. A token is
// optional for public code search, but unauthenticated requests are rate
// limited hard, so hunts should run with one.
func NewGitHubFetcher(config *models.GitHubConfig) contracts.IRepoFetcher {
	httpClient := http.DefaultClient
	if config.Token != "" {
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token})
		httpClient = oauth2.NewClient(context.Background(), tokenSource)
	}

	client := github.NewClient(httpClient)
	if config.BaseURL != "" {
		if baseURL, err := url.Parse(strings.TrimSuffix(config.BaseURL, "/") + "/"); err == nil {
			client.BaseURL = baseURL
		}
	}

	return &GitHubFetcher{client: client, httpClient: httpClient, config: config}
}

// SearchCode runs a code search and returns up to MaxResults hits. A search
// that matches nothing returns an empty slice, not an error.
func (gf *GitHubFetcher) SearchCode(ctx context.Context, query string) ([]models.CodeSearchHit, error) {
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: gf.config.MaxResults},
	}

	result, _, err := gf.client.Search.Code(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("code search failed: %w", err)
	}

	hits := make([]models.CodeSearchHit, 0, len(result.CodeResults))
	for _, item := range result.CodeResults {
		hits = append(hits, models.CodeSearchHit{
			Repository: item.GetRepository().GetFullName(),
			Path:       item.GetPath(),
			HTMLURL:    item.GetHTMLURL(),
		})
		if gf.config.MaxResults > 0 && len(hits) >= gf.config.MaxResults {
			break
		}
	}

	return hits, nil
}

// DownloadRepository streams the repository zipball into destDir and returns
// the archive path. The archive is named after the repository with the slash
// flattened, e.g. owner_repo.zip.
func (gf *GitHubFetcher) DownloadRepository(ctx context.Context, fullName string, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	ref := gf.config.Ref
	if ref == "" {
		ref = "main"
	}

	downloadURL := fmt.Sprintf("%s/repos/%s/zipball/%s", gf.apiBase(), fullName, ref)
	fmt.Printf("⬇️ Downloading repository: %s\n", fullName)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	request.Header.Set("Accept", "application/vnd.github+json")

	response, err := gf.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to download repository %s: %w", fullName, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download repository %s: %s", fullName, response.Status)
	}

	zipPath := filepath.Join(destDir, strings.ReplaceAll(fullName, "/", "_")+".zip")
	archive, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archive.Close()

	bar := progressbar.DefaultBytes(response.ContentLength, "downloading")
	if _, err := io.Copy(io.MultiWriter(archive, bar), response.Body); err != nil {
		return "", fmt.Errorf("failed to save archive: %w", err)
	}

	fmt.Printf("📦 Repository saved as: %s\n", zipPath)
	return zipPath, nil
}

// ExtractArchive unpacks a downloaded zipball under destDir and returns the
// directory holding the repository contents. GitHub zipballs wrap everything
// in one top-level folder, which becomes the returned root.
func (gf *GitHubFetcher) ExtractArchive(zipPath string, destDir string) (string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}

	cleanDest := filepath.Clean(destDir)

	var topLevel string
	for _, file := range reader.File {
		targetPath := filepath.Join(destDir, file.Name)

		// Reject entries that would escape the extraction directory
		if !strings.HasPrefix(targetPath, cleanDest+string(os.PathSeparator)) {
			return "", fmt.Errorf("archive entry escapes extraction directory: %s", file.Name)
		}

		if topLevel == "" {
			topLevel = firstPathSegment(file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}

		if err := extractZipEntry(file, targetPath); err != nil {
			return "", err
		}
	}

	if topLevel == "" {
		return destDir, nil
	}

	return filepath.Join(destDir, topLevel), nil
}

func extractZipEntry(file *zip.File, targetPath string) error {
	source, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
	}
	defer source.Close()

	target, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", targetPath, err)
	}
	defer target.Close()

	if _, err := io.Copy(target, source); err != nil {
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}

	return nil
}

func (gf *GitHubFetcher) apiBase() string {
	if gf.config.BaseURL != "" {
		return strings.TrimSuffix(gf.config.BaseURL, "/")
	}

	return "https://api.github.com"
}

func firstPathSegment(name string) string {
	if i := strings.IndexAny(name, "/\\"); i >= 0 {
		return name[:i]
	}

	return name
}
