// =============================================================================
// ExcelTools - VBA Module Extraction
// =============================================================================
//
// This module pulls the VBA source out of macro workbooks for review and
// version control. The project's "dir" stream describes every module and
// the offset of its compressed source within its own stream; modules are
// classified as standard modules, class modules or user forms and written
// out with the matching extension.
//
// =============================================================================

package vba

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf16"
)

// Kind classifies a VBA module.
type Kind string

const (
	KindModule Kind = "Module"
	KindClass  Kind = "Class"
	KindForm   Kind = "Form"
)

// Ext returns the conventional file extension for the kind.
func (k Kind) Ext() string {
	switch k {
	case KindClass:
		return ".cls"
	case KindForm:
		return ".frm"
	}
	return ".bas"
}

// Module is one extracted VBA module.
type Module struct {
	Name string
	Kind Kind
	Code string
}

// Lines counts the code lines of the module.
func (m Module) Lines() int {
	if m.Code == "" {
		return 0
	}
	return strings.Count(m.Code, "\n") + 1
}

// dir stream record ids.
const (
	recModuleName       = 0x0019
	recModuleStreamName = 0x001A
	recModuleOffset     = 0x0031
	recModuleEnd        = 0x002B
	recDirEnd           = 0x0010
)

// Extract reads every VBA module of a macro workbook (or a raw
// vbaProject.bin file).
func Extract(path string) ([]Module, error) {
	p, err := openProject(path)
	if err != nil {
		return nil, err
	}

	dirRaw, ok := p.stream("dir")
	if !ok {
		return nil, fmt.Errorf("VBA project has no dir stream")
	}
	dir, err := Decompress(dirRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress dir stream: %w", err)
	}

	var modules []Module
	for _, rec := range parseDir(dir) {
		streamRaw, ok := p.stream(rec.streamName)
		if !ok {
			continue
		}
		if rec.offset > uint32(len(streamRaw)) {
			continue
		}
		code, err := Decompress(streamRaw[rec.offset:])
		if err != nil {
			continue
		}
		text := decodeModuleText(code)
		modules = append(modules, Module{
			Name: rec.name,
			Kind: Classify(rec.name, text),
			Code: text,
		})
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("no VBA modules found in %s", path)
	}
	return modules, nil
}

// moduleRecord is the per-module data gathered from the dir stream.
type moduleRecord struct {
	name       string
	streamName string
	offset     uint32
}

// parseDir walks the record sequence of the decompressed dir stream.
// Only the records naming modules and their stream offsets matter here.
func parseDir(dir []byte) []moduleRecord {
	var records []moduleRecord
	var cur moduleRecord

	pos := 0
	for pos+6 <= len(dir) {
		id := binary.LittleEndian.Uint16(dir[pos:])
		size := binary.LittleEndian.Uint32(dir[pos+2:])
		pos += 6
		if pos+int(size) > len(dir) {
			break
		}
		data := dir[pos : pos+int(size)]
		pos += int(size)

		switch id {
		case recModuleName:
			cur.name = string(data)
		case recModuleStreamName:
			cur.streamName = string(data)
		case recModuleOffset:
			if len(data) >= 4 {
				cur.offset = binary.LittleEndian.Uint32(data)
			}
		case recModuleEnd:
			if cur.name != "" || cur.streamName != "" {
				if cur.streamName == "" {
					cur.streamName = cur.name
				}
				records = append(records, cur)
			}
			cur = moduleRecord{}
		case recDirEnd:
			return records
		}
	}
	return records
}

// decodeModuleText converts module source bytes to a string. Sources are
// normally MBCS; a UTF-16 fallback handles the occasional wide stream.
func decodeModuleText(code []byte) string {
	if len(code) >= 2 && code[1] == 0 {
		u16 := make([]uint16, 0, len(code)/2)
		for i := 0; i+1 < len(code); i += 2 {
			u16 = append(u16, binary.LittleEndian.Uint16(code[i:]))
		}
		return string(utf16.Decode(u16))
	}
	return string(code)
}

// Classify derives the module kind from its name and source text.
func Classify(name, code string) Kind {
	trimmed := strings.TrimSpace(code)
	if strings.Contains(name, "Class") || strings.HasPrefix(strings.ToUpper(trimmed), "VERSION 1.0 CLASS") {
		if strings.Contains(name, "Form") || strings.Contains(code, "UserForm") {
			return KindForm
		}
		return KindClass
	}
	if strings.Contains(name, "Form") || strings.Contains(code, "UserForm") {
		return KindForm
	}
	return KindModule
}

// =============================================================================
// OUTPUT
// =============================================================================

// Stats summarizes an extraction.
type Stats struct {
	Modules int
	Classes int
	Forms   int
	Lines   int
}

// WriteModules saves each module under dir with its conventional
// extension, plus a combined listing of the whole project. It returns the
// extraction stats.
func WriteModules(modules []Module, dir, source string) (Stats, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Stats{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	var stats Stats
	var combined strings.Builder
	combined.WriteString(fmt.Sprintf("' VBA project of %s\n", filepath.Base(source)))
	combined.WriteString(fmt.Sprintf("' Extracted %s\n", time.Now().Format("2006-01-02 15:04:05")))

	for _, m := range modules {
		switch m.Kind {
		case KindClass:
			stats.Classes++
		case KindForm:
			stats.Forms++
		default:
			stats.Modules++
		}
		stats.Lines += m.Lines()

		path := filepath.Join(dir, m.Name+m.Kind.Ext())
		if err := os.WriteFile(path, []byte(m.Code), 0644); err != nil {
			return stats, fmt.Errorf("failed to write module %s: %w", m.Name, err)
		}

		combined.WriteString("\n' " + strings.Repeat("=", 70) + "\n")
		combined.WriteString(fmt.Sprintf("' %s (%s, %d lines)\n", m.Name, m.Kind, m.Lines()))
		combined.WriteString("' " + strings.Repeat("=", 70) + "\n")
		combined.WriteString(m.Code)
		if !strings.HasSuffix(m.Code, "\n") {
			combined.WriteString("\n")
		}
	}

	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	combinedPath := filepath.Join(dir, stem+"_all_modules.txt")
	if err := os.WriteFile(combinedPath, []byte(combined.String()), 0644); err != nil {
		return stats, fmt.Errorf("failed to write combined listing: %w", err)
	}
	return stats, nil
}
