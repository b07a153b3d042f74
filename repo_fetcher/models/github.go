package models

// CodeSearchHit is one entry of a code search response, trimmed down to what
// the hunt loop presents and acts on.
type CodeSearchHit struct {
	Repository string `json:"repository"`
	Path       string `json:"path"`
	HTMLURL    string `json:"html_url,omitempty"`
}

// GitHubConfig carries everything the fetcher needs. It is passed in
// explicitly instead of living in process-wide state so tests can point a
// fetcher at a local server.
type GitHubConfig struct {
	Token       string `mapstructure:"token"`
	BaseURL     string `mapstructure:"base_url"`
	SearchQuery string `mapstructure:"search_query"`
	MaxResults  int    `mapstructure:"max_results"`
	DownloadDir string `mapstructure:"download_dir"`
	Ref         string `mapstructure:"ref"`
}
