package health

import (
	"fmt"
	"path"
	"strings"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// topicsSection is the overview section scanned for topic bullets when
// the header carries no explicit topics list.
const topicsSection = "Topics"

// AreaSyncValidator keeps context areas and their overviews honest in
// both directions: every topic document must appear in its area
// overview's topic list, and every listed topic must exist on disk.
// The list is read from the overview's `topics:` header key when
// present, otherwise from bullet items in its "Topics" section.
type AreaSyncValidator struct {
	conv doc.Conventions
}

// NewAreaSyncValidator creates the area-sync rule.
func NewAreaSyncValidator(conv doc.Conventions) *AreaSyncValidator {
	return &AreaSyncValidator{conv: conv}
}

// Name implements CorpusValidator.
func (v *AreaSyncValidator) Name() string {
	return "area-sync"
}

// CheckCorpus implements CorpusValidator.
func (v *AreaSyncValidator) CheckCorpus(docs []*doc.Document) []types.Issue {
	var issues []types.Issue
	for _, area := range doc.GroupAreas(docs, v.conv) {
		if !v.conv.InContextTree(area.Dir) {
			continue
		}
		issues = append(issues, v.checkArea(area)...)
	}
	return issues
}

func (v *AreaSyncValidator) checkArea(area doc.Area) []types.Issue {
	var issues []types.Issue

	for _, extra := range area.ExtraOverviews {
		issues = append(issues, types.Issue{
			File:       extra.Path,
			Message:    fmt.Sprintf("area %q has more than one overview document", area.Name()),
			Severity:   types.SeverityFail,
			Validator:  v.Name(),
			Suggestion: "merge the extra overview into the area's single overview file",
		})
	}

	if area.Overview == nil {
		if len(area.Topics) > 0 {
			issues = append(issues, types.Issue{
				File:       area.Dir,
				Message:    fmt.Sprintf("area %q has %d topic document(s) but no overview", area.Name(), len(area.Topics)),
				Severity:   types.SeverityFail,
				Validator:  v.Name(),
				Suggestion: fmt.Sprintf("create %s listing the area's topics", path.Join(area.Dir, v.conv.OverviewFile)),
			})
		}
		return issues
	}

	refs, section := overviewTopicRefs(area.Overview)

	for _, topic := range area.Topics {
		if !topicListed(topic, refs) {
			issues = append(issues, types.Issue{
				File:      area.Overview.Path,
				Message:   fmt.Sprintf("topic %q (%s) is not listed in the area overview", topic.Name, path.Base(topic.Path)),
				Severity:  types.SeverityFail,
				Validator: v.Name(),
				Section:   section,
				Suggestion: fmt.Sprintf("list %s in the overview's topic list",
					path.Base(topic.Path)),
			})
		}
	}

	for _, ref := range refs {
		if !refResolves(ref, area.Topics) {
			issues = append(issues, types.Issue{
				File:       area.Overview.Path,
				Message:    fmt.Sprintf("overview lists topic %q but no such document exists in %s", ref.Name, area.Dir),
				Severity:   types.SeverityFail,
				Validator:  v.Name(),
				Section:    section,
				Suggestion: "remove the stale entry or create the topic document",
			})
		}
	}

	return issues
}

// topicRef is one entry of an overview's topic list.
type topicRef struct {
	Name string // link text, or the entry verbatim for plain items
	File string // link target's base filename, "" for plain entries
}

// overviewTopicRefs extracts the overview's topic list and reports
// where it came from (the section name, or "" for the header key).
func overviewTopicRefs(overview *doc.Document) ([]topicRef, string) {
	if overview.Header.Has("topics") {
		items := overview.Header.List("topics")
		refs := make([]topicRef, 0, len(items))
		for _, item := range items {
			refs = append(refs, parseTopicRef(item))
		}
		return refs, ""
	}

	for i := range overview.Sections {
		s := &overview.Sections[i]
		if !strings.EqualFold(s.Name, topicsSection) {
			continue
		}
		var refs []topicRef
		for _, line := range strings.Split(s.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
				if item := strings.TrimSpace(trimmed[2:]); item != "" {
					refs = append(refs, parseTopicRef(item))
				}
			}
		}
		return refs, s.Name
	}

	return nil, ""
}

func parseTopicRef(item string) topicRef {
	if title, target, ok := doc.ParseLink(item); ok {
		return topicRef{Name: title, File: path.Base(target)}
	}
	return topicRef{Name: strings.TrimSpace(item)}
}

// topicListed reports whether any ref names the topic, by link target,
// by document name, or by bare filename.
func topicListed(topic *doc.Document, refs []topicRef) bool {
	base := path.Base(topic.Path)
	for _, ref := range refs {
		if ref.File != "" && ref.File == base {
			return true
		}
		if ref.Name == topic.Name || ref.Name == base {
			return true
		}
	}
	return false
}

// refResolves reports whether a listed entry matches any topic present.
func refResolves(ref topicRef, topics []*doc.Document) bool {
	for _, topic := range topics {
		base := path.Base(topic.Path)
		if ref.File != "" && ref.File == base {
			return true
		}
		if ref.Name == topic.Name || ref.Name == base {
			return true
		}
	}
	return false
}
