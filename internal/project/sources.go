// pattern: Functional Core

package project

import (
	"encoding/json"
	"net/url"
	"os"
	"strings"

	"codeprojects/internal/logging"
)

// savedProject is an element of projects.json.
type savedProject struct {
	Enabled  bool   `json:"enabled"`
	Name     string `json:"name"`
	RootPath string `json:"rootPath"`
}

func (p savedProject) resolvedPath(home string) string {
	return strings.ReplaceAll(p.RootPath, "$home", home)
}

// cachedProject is an element of projects_cache_git.json.
type cachedProject struct {
	FullPath string `json:"fullPath"`
	Name     string `json:"name"`
}

// storageFile is the subset of the editor's storage.json we read.
type storageFile struct {
	OpenedPathsList struct {
		Entries []json.RawMessage `json:"entries"`
	} `json:"openedPathsList"`
}

type recentEntry struct {
	FolderURI string `json:"folderUri"`
	FileURI   string `json:"fileUri"`
}

// readArray reads a JSON array of T from path. Elements that fail to decode
// become zero values so array positions stay stable. ok is false when the
// file is missing or is not a JSON array.
func readArray[T any](path string, logger *logging.ScopedLogger) ([]T, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("source unavailable", "path", path, "error", err)
		return nil, false
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Debug("source is not a JSON array", "path", path, "error", err)
		return nil, false
	}

	out := make([]T, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err == nil {
			out[i] = v
		}
	}
	return out, true
}

// parseRecentURIs returns the first non-empty of folderUri/fileUri for each
// openedPathsList entry.
func parseRecentURIs(data []byte) []string {
	var sf storageFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil
	}

	var uris []string
	for _, raw := range sf.OpenedPathsList.Entries {
		var e recentEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		uri := e.FolderURI
		if uri == "" {
			uri = e.FileURI
		}
		uris = append(uris, uri)
	}
	return uris
}

// localPath converts a file:// URI to a filesystem path. Remote schemes
// (vscode-remote://, vscode-vfs://) and unparsable URIs yield "".
func localPath(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil || !strings.EqualFold(u.Scheme, "file") || u.Path == "" {
		return ""
	}
	if u.Host != "" && u.Host != "localhost" {
		return "//" + u.Host + u.Path
	}
	return u.Path
}
