// Package source discovers raw session documents and loads their extracted
// text for the normalization pipeline.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/grovetools/dialognorm/config"
)

// docNamePattern matches the raw document naming convention used by the
// study: "#18. Week1.docx", "#14. Week 4.pdf".
var docNamePattern = regexp.MustCompile(`#(\d+)\.\s*Week\s*(\d+)`)

var supportedSuffixes = map[string]bool{
	".docx": true,
	".pdf":  true,
	".txt":  true,
}

// DocumentInfo describes one discovered source document and the resolved
// per-document parameters attached from configuration.
type DocumentInfo struct {
	StudentID     int
	Week          int
	Path          string
	Suffix        string
	Locale        string
	ExpectedTasks int
	Notes         string
	ModTime       time.Time
}

// Scanner finds raw documents and attaches metadata from config.
type Scanner struct {
	rawDir string
	cfg    *config.Config
}

// NewScanner creates a scanner over the configured raw directory.
func NewScanner(cfg *config.Config) *Scanner {
	return &Scanner{rawDir: cfg.RawDir, cfg: cfg}
}

// Scan walks the raw directory for documents matching the naming convention.
// Duplicate (student, week) entries are resolved by preferring .docx over
// .pdf, then the most recently modified file. Results are ordered by student
// then week for deterministic processing.
func (s *Scanner) Scan() ([]DocumentInfo, error) {
	type key struct{ student, week int }
	found := make(map[key]DocumentInfo)

	err := filepath.WalkDir(s.rawDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		suffix := strings.ToLower(filepath.Ext(path))
		if !supportedSuffixes[suffix] {
			return nil
		}
		m := docNamePattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			return nil
		}
		student, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])

		stat, err := d.Info()
		if err != nil {
			return err
		}
		info := DocumentInfo{
			StudentID:     student,
			Week:          week,
			Path:          path,
			Suffix:        suffix,
			Locale:        s.cfg.LocaleFor(student),
			ExpectedTasks: s.cfg.ExpectedTasks(student, week),
			ModTime:       stat.ModTime(),
		}
		if sc, ok := s.cfg.Students[student]; ok {
			info.Notes = sc.Notes
			if wc, ok := sc.Weeks[week]; ok && wc.Notes != "" {
				info.Notes = wc.Notes
			}
		}

		k := key{student, week}
		existing, ok := found[k]
		switch {
		case !ok:
			found[k] = info
		case existing.Suffix == ".pdf" && info.Suffix == ".docx":
			found[k] = info
		case existing.Suffix == info.Suffix && info.ModTime.After(existing.ModTime):
			found[k] = info
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.rawDir, err)
	}

	docs := make([]DocumentInfo, 0, len(found))
	for _, info := range found {
		docs = append(docs, info)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].StudentID != docs[j].StudentID {
			return docs[i].StudentID < docs[j].StudentID
		}
		return docs[i].Week < docs[j].Week
	})
	return docs, nil
}

// Filter keeps only documents matching the requested students and weeks.
// Nil or empty selectors match everything.
func Filter(docs []DocumentInfo, students, weeks []int) []DocumentInfo {
	studentSet := toSet(students)
	weekSet := toSet(weeks)
	var out []DocumentInfo
	for _, d := range docs {
		if studentSet != nil && !studentSet[d.StudentID] {
			continue
		}
		if weekSet != nil && !weekSet[d.Week] {
			continue
		}
		out = append(out, d)
	}
	return out
}

func toSet(vals []int) map[int]bool {
	if len(vals) == 0 {
		return nil
	}
	set := make(map[int]bool, len(vals))
	for _, v := range vals {
		set[v] = true
	}
	return set
}
