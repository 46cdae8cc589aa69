package memory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

type dirSource struct {
	root       string
	extensions []string
}

// NewDirSource creates a Source that reads every file under root whose
// suffix matches one of extensions. No extensions means every file. Hidden
// files and directories are skipped; documents are returned in key order.
func NewDirSource(root string, extensions ...string) Source {
	return &dirSource{root: root, extensions: extensions}
}

func (s *dirSource) Documents(ctx context.Context) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.root {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.HasPrefix(d.Name(), ".") && path != s.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.matches(d.Name()) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		docs = append(docs, Document{Key: filepath.ToSlash(rel), Body: string(data)})
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	slices.SortFunc(docs, func(a, b Document) int {
		return strings.Compare(a.Key, b.Key)
	})
	return docs, nil
}

func (s *dirSource) matches(name string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(s.extensions, ext)
}
