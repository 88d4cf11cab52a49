package book2pdf

import (
	"errors"
	"fmt"
	"os"

	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/pdfgraph"
)

// SkippedFile is an input left out of a merge.
type SkippedFile struct {
	Path string
	Err  error
}

// MergeResult describes a written merged document.
type MergeResult struct {
	Output  string
	Pages   int
	Merged  []string // input paths, in merge order
	Skipped []SkippedFile
}

// MergeFiles merges the PDF files at paths, in the given order, into output.
// Files that cannot be read or parsed are skipped and reported. It returns
// ErrNothingToMerge when no input is usable; nothing is written then.
func MergeFiles(paths []string, output string) (*MergeResult, error) {
	res := &MergeResult{Output: output}

	inputs := make([]pdfgraph.Input, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- caller-selected input
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedFile{Path: path, Err: err})
			continue
		}
		inputs = append(inputs, pdfgraph.Input{Name: path, Data: data})
	}

	merged, err := pdfgraph.Merge(inputs)
	if merged != nil {
		for _, s := range merged.Skipped {
			res.Skipped = append(res.Skipped, SkippedFile{Path: s.Name, Err: s.Err})
		}
	}
	if err != nil {
		return res, err
	}

	if err := fileutil.WriteFile(output, merged.Data); err != nil {
		return res, fmt.Errorf("%w: %s: %v", ErrWriteArtifact, output, err)
	}
	res.Pages = merged.Pages
	res.Merged = merged.Merged
	return res, nil
}

// MergeDir merges every .pdf file of dir (extension matched in any case),
// sorted by file name, into output.
func MergeDir(dir, output string) (*MergeResult, error) {
	paths, err := fileutil.ListPDFs(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, fileutil.ErrNotDir) {
			return nil, fmt.Errorf("%w: %s", ErrMergeDirNotFound, dir)
		}
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPDFFiles, dir)
	}
	return MergeFiles(paths, output)
}
