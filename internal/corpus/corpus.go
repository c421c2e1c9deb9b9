// Package corpus enumerates existing published documents from one or more
// storage roots. It reads raw text only; interpretation belongs to the
// similarity engine and the registry.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"postforge/internal/core"
	"postforge/internal/logger"
)

// ReadTree walks a content tree root and returns every markdown document
// under it. A missing root is not an error; it yields an empty slice so a
// fresh install starts with an empty corpus.
func ReadTree(root, treeName string) ([]core.RawDocument, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		logger.Debug("content tree does not exist, treating as empty", "root", root)
		return nil, nil
	}

	var docs []core.RawDocument
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			return nil
		}
		text, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		docs = append(docs, core.RawDocument{
			Filename: entry.Name(),
			Path:     path,
			Tree:     treeName,
			Text:     string(text),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk content tree %s: %w", root, err)
	}
	return docs, nil
}

// ReadTrees reads several roots in the given precedence order, tagging each
// document with its tree name.
func ReadTrees(trees []Tree) ([]core.RawDocument, error) {
	var all []core.RawDocument
	for _, tree := range trees {
		docs, err := ReadTree(tree.Root, tree.Name)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// Tree names one content storage root.
type Tree struct {
	Name string
	Root string
}
