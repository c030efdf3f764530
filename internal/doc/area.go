package doc

import (
	"path"
	"sort"
)

// Area is a directory-scoped grouping of one overview document and its
// sibling topics. At most one overview is kept per area; any further
// overview documents in the same directory land in ExtraOverviews so a
// validator can fail them instead of silently dropping one.
type Area struct {
	Dir            string // directory path relative to the project root
	Overview       *Document
	Topics         []*Document
	Others         []*Document // plans, notes, research docs in the directory
	ExtraOverviews []*Document
}

// Name derives a human-readable area name from the directory.
func (a *Area) Name() string {
	return path.Base(filepathToSlash(a.Dir))
}

// Docs returns every document in the area, overview first.
func (a *Area) Docs() []*Document {
	out := make([]*Document, 0, 1+len(a.Topics)+len(a.Others)+len(a.ExtraOverviews))
	if a.Overview != nil {
		out = append(out, a.Overview)
	}
	out = append(out, a.ExtraOverviews...)
	out = append(out, a.Topics...)
	out = append(out, a.Others...)
	return out
}

// GroupAreas buckets documents by directory into Areas, sorted by
// directory path. Documents are assigned deterministically: within a
// directory the lexicographically first overview wins, and index files
// never participate.
func GroupAreas(docs []*Document, conv Conventions) []Area {
	byDir := make(map[string][]*Document)
	for _, d := range docs {
		if conv.IsIndex(d.Path) {
			continue
		}
		dir := path.Dir(filepathToSlash(d.Path))
		byDir[dir] = append(byDir[dir], d)
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	areas := make([]Area, 0, len(dirs))
	for _, dir := range dirs {
		members := byDir[dir]
		sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })

		area := Area{Dir: dir}
		for _, d := range members {
			switch {
			case d.Type == TypeOverview:
				if area.Overview == nil {
					area.Overview = d
				} else {
					area.ExtraOverviews = append(area.ExtraOverviews, d)
				}
			case d.Type == TypeTopic:
				area.Topics = append(area.Topics, d)
			default:
				area.Others = append(area.Others, d)
			}
		}
		areas = append(areas, area)
	}
	return areas
}
