package cache

// DOTKeyOpts holds the settings that change the DOT text for a document.
type DOTKeyOpts struct {
	RankDir     string `json:"rankdir"`
	FontSize    int    `json:"fontsize"`
	ClusterMode string `json:"cluster_mode"`
	Merge       bool   `json:"merge"`
}

// Keyer derives cache keys. Keys are stable across processes and versions
// of the same key scheme.
type Keyer interface {
	// DocumentKey is the key for a document fetched from url.
	DocumentKey(url string) string
	// DOTKey is the key for the DOT text of a document with the given
	// content hash, built with opts.
	DOTKey(docHash string, opts DOTKeyOpts) string
	// ArtifactKey is the key for dot text with the given hash rendered in
	// format.
	ArtifactKey(dotHash, format string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey returns "doc:<sha256(url)>".
func (DefaultKeyer) DocumentKey(url string) string {
	return hashKey("doc", url)
}

// DOTKey returns "dot:<sha256(docHash, opts)>".
func (DefaultKeyer) DOTKey(docHash string, opts DOTKeyOpts) string {
	return hashKey("dot", docHash, opts)
}

// ArtifactKey returns "artifact:<format>:<dotHash>".
func (DefaultKeyer) ArtifactKey(dotHash, format string) string {
	return "artifact:" + format + ":" + dotHash
}
