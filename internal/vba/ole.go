// =============================================================================
// ExcelTools - VBA Project Container
// =============================================================================
//
// Macro workbooks embed their VBA project as an OLE compound file stored at
// xl/vbaProject.bin inside the xlsx zip container. This file opens that
// compound file and exposes its streams by name.
//
// =============================================================================

package vba

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"
)

const projectEntry = "xl/vbaProject.bin"

// project holds the streams of one VBA project, keyed by lowercased
// stream name.
type project struct {
	streams map[string][]byte
}

// openProject loads the VBA project of a workbook. Raw vbaProject.bin
// files are accepted directly.
func openProject(path string) (*project, error) {
	var raw []byte
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		raw = data
	} else {
		data, err := projectFromWorkbook(path)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	doc, err := mscfb.New(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse VBA project: %w", err)
	}

	p := &project{streams: make(map[string][]byte)}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Size == 0 {
			continue
		}
		data := make([]byte, entry.Size)
		if _, err := io.ReadFull(doc, data); err != nil {
			continue
		}
		p.streams[strings.ToLower(entry.Name)] = data
	}
	return p, nil
}

// projectFromWorkbook pulls xl/vbaProject.bin out of a workbook.
func projectFromWorkbook(path string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.EqualFold(f.Name, projectEntry) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", projectEntry, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", projectEntry, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s has no VBA project", path)
}

// stream returns a named stream of the project.
func (p *project) stream(name string) ([]byte, bool) {
	data, ok := p.streams[strings.ToLower(name)]
	return data, ok
}
